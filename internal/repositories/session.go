package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-task-list/backend/internal/database"
	"go-task-list/backend/internal/logger"
	"go-task-list/backend/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository はサーバー側セッションの保存先を抽象化します。
type SessionRepository interface {
	Save(ctx context.Context, s *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Revoke(ctx context.Context, id string) error
	CleanupExpired(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// SQLSessionRepo はsessionsテーブルにセッションを保存します。
type SQLSessionRepo struct {
	DB      *sql.DB
	Dialect database.Dialect
}

func NewSQLSessionRepo(db *sql.DB, dialect database.Dialect) *SQLSessionRepo {
	return &SQLSessionRepo{DB: db, Dialect: dialect}
}

func (r *SQLSessionRepo) Save(ctx context.Context, s *models.Session) error {
	_, err := r.DB.ExecContext(ctx,
		r.Dialect.Rebind("INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)"),
		s.ID, s.UserID, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		logger.Error("failed to insert session", "user_id", s.UserID, "error", err)
		return fmt.Errorf("could not insert session: %w", err)
	}
	return nil
}

func (r *SQLSessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := r.Dialect.Rebind("SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = ?")

	var s models.Session
	var revokedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		logger.Error("failed to query session", "error", err)
		return nil, fmt.Errorf("could not query session: %w", err)
	}
	if revokedAt.Valid {
		s.RevokedAt = &revokedAt.Time
	}
	return &s, nil
}

// Revoke はセッションを失効済みにします。既に失効していても成功扱いです。
func (r *SQLSessionRepo) Revoke(ctx context.Context, id string) error {
	now := time.Now().UTC().Truncate(time.Second)
	_, err := r.DB.ExecContext(ctx,
		r.Dialect.Rebind("UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL"),
		now, id,
	)
	if err != nil {
		return fmt.Errorf("could not revoke session: %w", err)
	}
	return nil
}

// CleanupExpired は失効済みまたは期限切れのセッションを削除し、削除件数を返します。
func (r *SQLSessionRepo) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		r.Dialect.Rebind("DELETE FROM sessions WHERE revoked_at IS NOT NULL OR expires_at < ?"),
		time.Now().UTC(),
	)
	if err != nil {
		logger.Error("failed to cleanup sessions", "error", err)
		return 0, fmt.Errorf("could not cleanup sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLSessionRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}
