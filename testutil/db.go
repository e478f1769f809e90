package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/joho/godotenv"

	"go-task-list/backend/internal/database"
)

// SetupTestDB はTEST_DB_*環境変数のデータベースに接続し、テーブルを空の状態で用意します。
// 環境変数が無い場合はテストをスキップします。
func SetupTestDB(t *testing.T) (*sql.DB, database.Dialect) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbUser := os.Getenv("TEST_DB_USER")
	dbPass := os.Getenv("TEST_DB_PASS")
	dbHost := os.Getenv("TEST_DB_HOST")
	dbPort := os.Getenv("TEST_DB_PORT")
	dbName := os.Getenv("TEST_DB_NAME")
	if dbUser == "" || dbHost == "" || dbName == "" {
		t.Skip("TEST_DB_* not set; skipping database integration test")
	}

	driver := os.Getenv("TEST_DB_DRIVER")
	if driver == "" {
		driver = "mysql"
	}
	dialect, err := database.ParseDialect(driver)
	if err != nil {
		t.Fatalf("Invalid TEST_DB_DRIVER: %v", err)
	}

	var dsn string
	if dialect == database.Postgres {
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s", dbUser, dbPass, dbHost, dbPort, dbName)
	} else {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&clientFoundRows=true", dbUser, dbPass, dbHost, dbPort, dbName)
	}

	ctx := context.Background()
	db, err := database.Open(ctx, dialect, dsn)
	if err != nil {
		t.Fatalf("Failed to connect test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// テストのたびにクリーンな状態にする (外部キーのため sessions, tasks -> users の順)
	for _, table := range []string{"sessions", "tasks", "users"} {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			t.Fatalf("Failed to drop %s: %v", table, err)
		}
	}
	if err := database.Migrate(ctx, db, dialect); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db, dialect
}
