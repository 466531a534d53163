package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneytrack/internal/ledger"
	"moneytrack/internal/storage/storetest"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{"postgresql://localhost/db", "pgx5://localhost/db"},
		{"pgx5://localhost/db", "pgx5://localhost/db"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, migrateURL(tt.in))
	}
}

// Runs only when MONEYTRACK_TEST_DATABASE_URL points at a disposable database.
func TestStoreContract(t *testing.T) {
	dsn := os.Getenv("MONEYTRACK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("MONEYTRACK_TEST_DATABASE_URL not set")
	}
	storetest.Run(t, func(t *testing.T) ledger.Store {
		ctx := context.Background()
		s, err := Open(ctx, dsn)
		require.NoError(t, err)
		_, err = s.pool.Exec(ctx, `TRUNCATE documents`)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}
