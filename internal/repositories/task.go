// Package repositories はデータベース操作を行うリポジトリを提供します。
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

// ErrTaskNotFound はタスクが見つからない場合のエラーです。
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository はタスクの永続化を抽象化します。
type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindByUserID(ctx context.Context, userID int64) ([]*models.Task, error)
	Update(ctx context.Context, t *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

// SQLTaskRepo はdatabase/sqlを使ったTaskRepositoryの実装です。
type SQLTaskRepo struct {
	DB      *sql.DB
	Dialect database.Dialect
}

// NewSQLTaskRepo は新しいSQLTaskRepoを作成します。
func NewSQLTaskRepo(db *sql.DB, dialect database.Dialect) *SQLTaskRepo {
	return &SQLTaskRepo{DB: db, Dialect: dialect}
}

const taskColumns = "id, user_id, title, description, complete, created_at, updated_at"

// Create は新しいタスクを挿入し、IDとタイムスタンプをセットして返します。
func (r *SQLTaskRepo) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	now := time.Now().UTC().Truncate(time.Second)
	t.CreatedAt = now
	t.UpdatedAt = now

	query := "INSERT INTO tasks (user_id, title, description, complete, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
	id, err := r.Dialect.InsertReturningID(ctx, r.DB, query, t.UserID, t.Title, t.Description, t.Complete, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		logger.Error("failed to insert task", "user_id", t.UserID, "error", err)
		return nil, fmt.Errorf("could not insert task: %w", err)
	}
	t.ID = id
	return t, nil
}

// FindByID は指定されたIDのタスクを取得します。
func (r *SQLTaskRepo) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := r.Dialect.Rebind("SELECT " + taskColumns + " FROM tasks WHERE id = ?")

	t, err := scanTask(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		logger.Error("failed to query task by ID", "id", id, "error", err)
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return t, nil
}

// FindByUserID は所有者のタスクを作成順に取得します。
func (r *SQLTaskRepo) FindByUserID(ctx context.Context, userID int64) ([]*models.Task, error) {
	query := r.Dialect.Rebind("SELECT " + taskColumns + " FROM tasks WHERE user_id = ? ORDER BY created_at ASC, id ASC")

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		logger.Error("failed to query tasks", "user_id", userID, "error", err)
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// Update はタイトル・説明・完了状態のみを上書きします。所有者は更新しません。
func (r *SQLTaskRepo) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	t.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	query := r.Dialect.Rebind("UPDATE tasks SET title = ?, description = ?, complete = ?, updated_at = ? WHERE id = ?")

	result, err := r.DB.ExecContext(ctx, query, t.Title, t.Description, t.Complete, t.UpdatedAt, t.ID)
	if err != nil {
		logger.Error("failed to update task", "id", t.ID, "error", err)
		return nil, fmt.Errorf("could not update task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	return r.FindByID(ctx, t.ID)
}

// Delete は指定されたIDのタスクを削除します。
func (r *SQLTaskRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, r.Dialect.Rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		logger.Error("failed to delete task", "id", id, "error", err)
		return fmt.Errorf("could not delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var description sql.NullString
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &description, &t.Complete, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Description = description.String
	return &t, nil
}
