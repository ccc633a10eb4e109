// Package ingest turns the raw location sheet into a validated snapshot.
//
// Ingestion is best effort: rows that fail validation are left out and
// reported as diagnostics, they never abort the run.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"dropoff-locator/internal/models"
)

// Column positions in the published sheet.
const (
	colID = iota
	colCategory
	colName
	colAddress
	colCity
	colState
	colPostalCode
	colLatitude
	colLongitude
	colWebsite
	colAcceptancePolicy

	// ColumnCount is the full width of a sheet row.
	ColumnCount
)

// minColumns covers every mandatory field up to and including longitude.
const minColumns = colLongitude + 1

// Reasons attached to diagnostics.
const (
	ReasonTooFewColumns      = "too_few_columns"
	ReasonInvalidCoordinates = "invalid_coordinates"
	ReasonMissingRequired    = "missing_required_field"
)

// Result is the outcome of one ingestion run.
type Result struct {
	Snapshot    models.Snapshot
	Diagnostics []models.Diagnostic
}

// Accepted returns the number of rows admitted into the snapshot.
func (r Result) Accepted() int { return r.Snapshot.Len() }

// Dropped returns the number of rows left out of the snapshot.
func (r Result) Dropped() int { return len(r.Diagnostics) }

// ReadTable parses delimited text into rows of cells. Rows may have any width.
func ReadTable(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("ingest: failed to read table: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// Ingest validates a raw table and collects surviving rows in order.
// The first row is a header and is always skipped. Diagnostic row numbers
// are indexes into rows, so the header is row 0.
func Ingest(rows [][]string, loadedAt time.Time) Result {
	var (
		records     []models.LocationRecord
		diagnostics []models.Diagnostic
	)

	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}

		rec, diag, ok := parseRow(i, row)
		if !ok {
			diagnostics = append(diagnostics, diag)
			continue
		}
		records = append(records, rec)
	}

	return Result{
		Snapshot:    models.NewSnapshot(records, loadedAt),
		Diagnostics: diagnostics,
	}
}

func parseRow(index int, row []string) (models.LocationRecord, models.Diagnostic, bool) {
	cells := make([]string, ColumnCount)
	for i := 0; i < len(row) && i < ColumnCount; i++ {
		cells[i] = strings.TrimSpace(row[i])
	}

	if len(row) < minColumns {
		return models.LocationRecord{}, models.Diagnostic{
			Row:    index,
			Reason: ReasonTooFewColumns,
			Detail: fmt.Sprintf("got %d columns, need at least %d (%s)", len(row), minColumns, label(cells)),
		}, false
	}

	lat, latErr := parseCoordinate(cells[colLatitude], 90)
	lon, lonErr := parseCoordinate(cells[colLongitude], 180)
	if latErr != nil || lonErr != nil {
		return models.LocationRecord{}, models.Diagnostic{
			Row:    index,
			Reason: ReasonInvalidCoordinates,
			Detail: fmt.Sprintf("lat=%q lon=%q (%s)", cells[colLatitude], cells[colLongitude], label(cells)),
		}, false
	}

	var missing []string
	if cells[colID] == "" {
		missing = append(missing, "id")
	}
	if cells[colName] == "" {
		missing = append(missing, "name")
	}
	if cells[colAddress] == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return models.LocationRecord{}, models.Diagnostic{
			Row:    index,
			Reason: ReasonMissingRequired,
			Detail: fmt.Sprintf("missing %s (%s)", strings.Join(missing, ", "), label(cells)),
		}, false
	}

	return models.LocationRecord{
		ID:               cells[colID],
		Category:         models.ParseCategory(cells[colCategory]),
		Name:             cells[colName],
		Address:          cells[colAddress],
		City:             cells[colCity],
		State:            cells[colState],
		PostalCode:       cells[colPostalCode],
		Latitude:         lat,
		Longitude:        lon,
		Website:          cells[colWebsite],
		AcceptancePolicy: models.ParseAcceptancePolicy(cells[colAcceptancePolicy]),
	}, models.Diagnostic{}, true
}

// parseCoordinate accepts plain decimal notation only. ParseFloat would also take
// hex floats and digit underscores, which in a sheet cell are typos.
func parseCoordinate(s string, limit float64) (float64, error) {
	if strings.ContainsAny(s, "xX_") {
		return 0, fmt.Errorf("coordinate %q is not a decimal number", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
		return 0, fmt.Errorf("coordinate %v out of range", v)
	}
	return v, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// label names a row in diagnostics, falling back to its id.
func label(cells []string) string {
	if cells[colName] != "" {
		return cells[colName]
	}
	if cells[colID] != "" {
		return "id " + cells[colID]
	}
	return "unknown"
}
