package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTable is the mirrored sheet table read when none is configured.
const DefaultTable = "location_feed"

// feedColumns are selected in sheet order.
var feedColumns = []string{
	"id",
	"category",
	"name",
	"address",
	"city",
	"state",
	"postal_code",
	"latitude",
	"longitude",
	"website",
	"acceptance_policy",
}

// Repository reads the location sheet mirrored into PostgreSQL. It never writes.
type Repository struct {
	db    *pgxpool.Pool
	table string
}

// NewRepository creates a new PostgreSQL repository reading from table
func NewRepository(db *pgxpool.Pool, table string) *Repository {
	if strings.TrimSpace(table) == "" {
		table = DefaultTable
	}
	return &Repository{db: db, table: table}
}

// Fetch returns the mirrored sheet as raw cells, header row first, ordered by position
func (r *Repository) Fetch(ctx context.Context) ([][]string, error) {
	selects := make([]string, len(feedColumns))
	for i, col := range feedColumns {
		ident := pgx.Identifier{col}.Sanitize()
		selects[i] = fmt.Sprintf("COALESCE(%s::text, '') AS %s", ident, ident)
	}

	sql := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY position",
		strings.Join(selects, ", "),
		pgx.Identifier{r.table}.Sanitize(),
	)

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute feed query: %w", err)
	}
	defer rows.Close()

	header := make([]string, 0, len(feedColumns))
	for _, fd := range rows.FieldDescriptions() {
		header = append(header, fd.Name)
	}
	table := [][]string{header}

	for rows.Next() {
		cells := make([]string, len(feedColumns))
		dest := make([]any, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("repository: failed to scan feed row: %w", err)
		}
		table = append(table, cells)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return table, nil
}
