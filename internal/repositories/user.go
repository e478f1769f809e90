package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt" // パスワードのハッシュ化用

	"go-task-list/backend/internal/database"
	"go-task-list/backend/internal/logger"
	"go-task-list/backend/internal/models"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrUserNotFound      = errors.New("user not found")
)

// HashPassword は与えられたパスワードをbcryptでハッシュ化します。
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// VerifyPassword はハッシュ化されたパスワードと平文のパスワードを比較します。
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// UserRepository はユーザーの永続化を抽象化します。
type UserRepository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// SQLUserRepo はdatabase/sqlを使ったUserRepositoryの実装です。
type SQLUserRepo struct {
	DB      *sql.DB
	Dialect database.Dialect
}

// NewSQLUserRepo は新しいSQLUserRepoインスタンスを作成します。
func NewSQLUserRepo(db *sql.DB, dialect database.Dialect) *SQLUserRepo {
	return &SQLUserRepo{DB: db, Dialect: dialect}
}

// Create は新しいユーザーを挿入します。ユーザー名が重複していればErrDuplicateUsernameを返します。
func (r *SQLUserRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC().Truncate(time.Second)
	u.CreatedAt = now
	u.UpdatedAt = now

	query := "INSERT INTO users (username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?)"
	id, err := r.Dialect.InsertReturningID(ctx, r.DB, query, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		logger.Error("failed to insert user", "username", u.Username, "error", err)
		return nil, fmt.Errorf("could not insert user: %w", err)
	}
	u.ID = id
	return u, nil
}

// FindByID はIDでユーザーを検索します。
func (r *SQLUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUsername はユーザー名でユーザーを検索します。
func (r *SQLUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *SQLUserRepo) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := r.Dialect.Rebind("SELECT id, username, password_hash, created_at, updated_at FROM users WHERE " + where)
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.Error("failed to query user", "where", where, "error", err)
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	return &u, nil
}
