package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go-task-list/backend/internal/models"
	"go-task-list/backend/internal/repositories"
)

const maxTitleLength = 200

// TaskService はTask関連のビジネスロジックを扱います。
// 所有者による絞り込みは常にこの層で行い、呼び出し側からは受け取りません。
type TaskService struct {
	taskRepo repositories.TaskRepository
}

// NewTaskService は新しいTaskServiceを作成します。
func NewTaskService(taskRepo repositories.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// ListTasks はユーザーのタスク一覧と未完了数を返します。
// searchが空白のみでなければ、タイトルがsearchで始まるタスクだけに絞り込みます (大文字小文字を区別)。
// 未完了数は絞り込み後のタスクから数えます。
func (s *TaskService) ListTasks(ctx context.Context, userID int64, search string) (*models.TaskList, error) {
	tasks, err := s.taskRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(search) != "" {
		filtered := make([]*models.Task, 0, len(tasks))
		for _, t := range tasks {
			if strings.HasPrefix(t.Title, search) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	count := 0
	for _, t := range tasks {
		if !t.Complete {
			count++
		}
	}

	return &models.TaskList{Tasks: tasks, Count: count, SearchInput: search}, nil
}

// GetTask は指定IDのTaskを取得し、認可チェックを行います。
func (s *TaskService) GetTask(ctx context.Context, userID, id int64) (*models.Task, error) {
	return s.ownedTask(ctx, userID, id)
}

// CreateTask は新しいTaskを作成します。所有者は常にuserIDです。
func (s *TaskService) CreateTask(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	return s.taskRepo.Create(ctx, &models.Task{
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		Complete:    in.Complete,
	})
}

// UpdateTask はタイトル・説明・完了状態を上書きします。所有者は変わりません。
// 値が現在と同じなら書き込みを行いません。
func (s *TaskService) UpdateTask(ctx context.Context, userID, id int64, in models.TaskInput) (*models.Task, error) {
	existing, err := s.ownedTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}

	if existing.Title == title && existing.Description == in.Description && existing.Complete == in.Complete {
		return existing, nil
	}

	existing.Title = title
	existing.Description = in.Description
	existing.Complete = in.Complete
	return s.taskRepo.Update(ctx, existing)
}

// DeleteTask はTaskを削除し、認可チェックを行います。
func (s *TaskService) DeleteTask(ctx context.Context, userID, id int64) error {
	if _, err := s.ownedTask(ctx, userID, id); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, id)
}

func (s *TaskService) ownedTask(ctx context.Context, userID, id int64) (*models.Task, error) {
	t, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrTaskForbidden
	}
	return t, nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title", "This field is required.")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", invalid("title", "Ensure this value has at most 200 characters.")
	}
	return title, nil
}
