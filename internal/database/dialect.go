package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// Dialect はSQL方言の差異 (プレースホルダ、採番、エラーコード) を吸収します。
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

const (
	mysqlDuplicateEntry   = 1062
	postgresUniqueViolate = "23505"
)

// ParseDialect は設定値からDialectを返します。
func ParseDialect(name string) (Dialect, error) {
	switch Dialect(strings.ToLower(name)) {
	case MySQL:
		return MySQL, nil
	case Postgres:
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", name)
}

// DriverName はdatabase/sqlに登録されたドライバ名です。
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "mysql"
}

// Rebind は ? プレースホルダを方言に合わせて書き換えます。
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// InsertReturningID はINSERTを実行し、採番されたIDを返します。
// MySQLはLastInsertId、PostgreSQLはRETURNING idを使います。
func (d Dialect) InsertReturningID(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	if d == Postgres {
		var id int64
		err := db.QueryRowContext(ctx, d.Rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("could not get last insert ID: %w", err)
	}
	return id, nil
}

// IsUniqueViolation は一意制約違反のエラーかどうかを判定します。
func IsUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresUniqueViolate
	}
	return false
}
