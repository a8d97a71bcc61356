package testdb

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ayo6706/banking-core/internal/db"
	"github.com/ayo6706/banking-core/internal/testutil/dblock"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Connect returns a pool against DATABASE_URL with the schema applied
// and all tables truncated, or skips the test when no database is
// configured. Packages sharing the database serialize through dblock.
func Connect(t *testing.T) *pgxpool.Pool {
	t.Helper()

	_ = godotenv.Load(rootPath(".env"))
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	release := dblock.Acquire()
	t.Cleanup(release)

	pool, err := db.Connect(context.Background(), url)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	t.Cleanup(pool.Close)

	applySchema(t, pool)
	truncate(t, pool)
	return pool
}

func applySchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ddl, err := os.ReadFile(rootPath("migrations/001_init.sql"))
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := pool.Exec(context.Background(), string(ddl)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
}

func truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE audit_log, idempotency_keys, transactions, accounts, users CASCADE`)
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// rootPath resolves a path relative to the repository root regardless
// of which package the test runs from.
func rootPath(rel string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", rel)
}
