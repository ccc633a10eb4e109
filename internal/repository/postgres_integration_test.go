//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"dropoff-locator/internal/ingest"
	"dropoff-locator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jackc/pgx/v5/pgxpool"
)

func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		postgresC.Terminate(ctx)
	})

	host, err := postgresC.Host(ctx)
	require.NoError(t, err)

	port, err := postgresC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := "postgres://testuser:testpass@" + host + ":" + port.Port() + "/testdb?sslmode=disable"

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
	})

	_, err = pool.Exec(ctx, `
		CREATE TABLE location_feed (
			position BIGSERIAL PRIMARY KEY,
			id TEXT,
			category TEXT,
			name TEXT,
			address TEXT,
			city TEXT,
			state TEXT,
			postal_code TEXT,
			latitude TEXT,
			longitude TEXT,
			website TEXT,
			acceptance_policy TEXT
		);

		INSERT INTO location_feed (id, category, name, address, city, state, postal_code, latitude, longitude, website, acceptance_policy) VALUES
		('1', 'Bin', 'Park Slope Bin', '123 7th Ave', 'Brooklyn', 'NY', '11215', '40.6710', '-73.9814', NULL, 'Donation Only'),
		('2', 'goodwill', 'Goodwill Atlantic', '', 'Brooklyn', 'NY', '11217', '40.6840', '-73.9780', '', 'both'),
		('3', 'thrift', 'Beacon''s Closet', '74 Guernsey St', 'Brooklyn', 'NY', '11222', '40.7206', '-73.9530', 'https://beaconscloset.com', 'buy only');
	`)
	require.NoError(t, err)

	return pool
}

func TestRepository_Fetch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	repo := NewRepository(pool, "")
	ctx := context.Background()

	rows, err := repo.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, feedColumns, rows[0])
	assert.Equal(t, "", rows[1][9], "NULL website is read as empty text")

	result := ingest.Ingest(rows, time.Now())
	require.Equal(t, 2, result.Accepted())
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, 2, result.Diagnostics[0].Row)
	assert.Equal(t, ingest.ReasonMissingRequired, result.Diagnostics[0].Reason)

	first := result.Snapshot.At(0)
	assert.Equal(t, models.CategoryBin, first.Category)
	assert.Equal(t, models.PolicyDonationOnly, first.AcceptancePolicy)
	assert.InDelta(t, 40.6710, first.Latitude, 1e-9)

	second := result.Snapshot.At(1)
	assert.Equal(t, "Beacon's Closet", second.Name)
	assert.Equal(t, models.PolicyBuyOnly, second.AcceptancePolicy)
}

func TestRepository_Fetch_MissingTable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	repo := NewRepository(pool, "no_such_table")

	_, err := repo.Fetch(context.Background())
	assert.Error(t, err)
}
