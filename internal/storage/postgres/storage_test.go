package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/hamsterrace/raceboard/internal/storage"
	"github.com/hamsterrace/raceboard/internal/storage/storagetest"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/races?sslmode=disable", "pgx5://u:p@localhost:5432/races?sslmode=disable"},
		{"postgresql://localhost/races", "pgx5://localhost/races"},
		{"pgx5://localhost/races", "pgx5://localhost/races"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, migrationURL(tt.in))
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// TestRaceStoreSuite runs against a live database named by RACEBOARD_TEST_DATABASE_URL
func TestRaceStoreSuite(t *testing.T) {
	dbURL := os.Getenv("RACEBOARD_TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("RACEBOARD_TEST_DATABASE_URL not set")
	}
	require.NoError(t, RunMigrations(dbURL))

	ctx := context.Background()
	suite.Run(t, &storagetest.RaceStoreSuite{
		NewStore: func() storage.RaceStore {
			pool, err := pgxpool.New(ctx, dbURL)
			require.NoError(t, err)
			_, err = pool.Exec(ctx, "TRUNCATE races RESTART IDENTITY")
			require.NoError(t, err)
			return NewWithPool(pool)
		},
	})
}
