// Package database はRecord Store (MySQL/PostgreSQL) への接続を扱います。
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"go-task-list/backend/internal/logger"
)

// Open は指定ドライバでDBを開き、接続プールを設定して疎通確認を行います。
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// InitDB はデータベース接続を初期化します。失敗した場合は終了します。
func InitDB(dialect Dialect, dsn string) *sql.DB {
	db, err := Open(context.Background(), dialect, dsn)
	if err != nil {
		logger.Fatal("failed to initialize database", "driver", string(dialect), "error", err)
	}
	logger.Info("database connected", "driver", string(dialect))
	return db
}
