package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-task-list/backend/internal/models"
	"go-task-list/backend/internal/repositories"
	"go-task-list/backend/internal/services"
	"go-task-list/backend/testutil"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

func newTaskService(t *testing.T) (*services.TaskService, *testutil.MemoryTaskRepo) {
	t.Helper()
	repo := testutil.NewMemoryTaskRepo()
	return services.NewTaskService(repo), repo
}

func mustCreate(t *testing.T, s *services.TaskService, userID int64, title string, complete bool) *models.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), userID, models.TaskInput{Title: title, Complete: complete})
	require.NoError(t, err)
	return task
}

func titles(tasks []*models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestListTasks_EmptyForNewUser(t *testing.T) {
	s, _ := newTaskService(t)

	list, err := s.ListTasks(context.Background(), alice, "")
	require.NoError(t, err)
	assert.Empty(t, list.Tasks)
	assert.NotNil(t, list.Tasks)
	assert.Equal(t, 0, list.Count)
}

func TestListTasks_OwnerScopedAndOrdered(t *testing.T) {
	s, _ := newTaskService(t)
	ctx := context.Background()

	mustCreate(t, s, alice, "Buy milk", false)
	mustCreate(t, s, bob, "Bob's secret", false)
	mustCreate(t, s, alice, "Buy eggs", true)
	mustCreate(t, s, alice, "Call mom", false)

	list, err := s.ListTasks(ctx, alice, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Buy milk", "Buy eggs", "Call mom"}, titles(list.Tasks))
	assert.Equal(t, 2, list.Count)
	for _, task := range list.Tasks {
		assert.Equal(t, alice, task.UserID)
	}

	bobList, err := s.ListTasks(ctx, bob, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob's secret"}, titles(bobList.Tasks))
}

func TestListTasks_PrefixSearch(t *testing.T) {
	s, _ := newTaskService(t)
	ctx := context.Background()

	mustCreate(t, s, alice, "Buy milk", false)
	mustCreate(t, s, alice, "Buy eggs", true)
	mustCreate(t, s, alice, "buy bread", false)
	mustCreate(t, s, alice, "Go to Buy market", false)

	tests := []struct {
		name      string
		search    string
		want      []string
		wantCount int
	}{
		{"exact prefix", "Buy m", []string{"Buy milk"}, 1},
		{"shared prefix", "Buy", []string{"Buy milk", "Buy eggs"}, 1},
		{"case sensitive", "buy", []string{"buy bread"}, 1},
		{"prefix only, not substring", "market", []string{}, 0},
		{"no match", "Zzz", []string{}, 0},
		{"empty is no filter", "", []string{"Buy milk", "Buy eggs", "buy bread", "Go to Buy market"}, 3},
		{"whitespace is no filter", "   ", []string{"Buy milk", "Buy eggs", "buy bread", "Go to Buy market"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := s.ListTasks(ctx, alice, tt.search)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(list.Tasks))
			assert.Equal(t, tt.wantCount, list.Count)
			assert.Equal(t, tt.search, list.SearchInput)
		})
	}
}

func TestListTasks_CountMatchesReturnedIncomplete(t *testing.T) {
	s, _ := newTaskService(t)
	ctx := context.Background()

	mustCreate(t, s, alice, "a1", false)
	mustCreate(t, s, alice, "a2", true)
	mustCreate(t, s, alice, "b1", false)
	mustCreate(t, s, alice, "ab", true)
	mustCreate(t, s, alice, "c", false)

	for _, search := range []string{"", " ", "a", "ab", "b", "c", "x"} {
		list, err := s.ListTasks(ctx, alice, search)
		require.NoError(t, err)

		incomplete := 0
		for _, task := range list.Tasks {
			if !task.Complete {
				incomplete++
			}
		}
		assert.Equal(t, incomplete, list.Count, "search=%q", search)
	}
}

func TestCreateTask_OwnerIsCaller(t *testing.T) {
	s, repo := newTaskService(t)

	task, err := s.CreateTask(context.Background(), alice, models.TaskInput{Title: "  Buy milk  ", Description: "2 litres"})
	require.NoError(t, err)
	assert.NotZero(t, task.ID)
	assert.Equal(t, alice, task.UserID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2 litres", task.Description)
	assert.False(t, task.Complete)
	assert.False(t, task.CreatedAt.IsZero())

	stored, err := repo.FindByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, stored.UserID)
}

func TestCreateTask_Validation(t *testing.T) {
	s, repo := newTaskService(t)

	tests := []struct {
		name  string
		title string
	}{
		{"empty", ""},
		{"whitespace only", " \t "},
		{"too long", strings.Repeat("x", 201)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateTask(context.Background(), alice, models.TaskInput{Title: tt.title})
			var validationErr *services.ValidationError
			require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
			assert.Equal(t, "title", validationErr.Field)
		})
	}
	assert.Zero(t, repo.Writes)

	_, err := s.CreateTask(context.Background(), alice, models.TaskInput{Title: strings.Repeat("x", 200)})
	assert.NoError(t, err)
}

func TestGetTask_Authorization(t *testing.T) {
	s, _ := newTaskService(t)
	ctx := context.Background()
	task := mustCreate(t, s, alice, "Buy milk", false)

	got, err := s.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = s.GetTask(ctx, bob, task.ID)
	assert.ErrorIs(t, err, services.ErrTaskForbidden)

	_, err = s.GetTask(ctx, alice, 9999)
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
}

func TestUpdateTask(t *testing.T) {
	s, repo := newTaskService(t)
	ctx := context.Background()
	task := mustCreate(t, s, alice, "Buy milk", false)

	t.Run("owner can update, owner unchanged", func(t *testing.T) {
		updated, err := s.UpdateTask(ctx, alice, task.ID, models.TaskInput{Title: "Buy oat milk", Description: "brand X", Complete: true})
		require.NoError(t, err)
		assert.Equal(t, "Buy oat milk", updated.Title)
		assert.Equal(t, "brand X", updated.Description)
		assert.True(t, updated.Complete)
		assert.Equal(t, alice, updated.UserID)
		assert.Equal(t, task.CreatedAt, updated.CreatedAt)
	})

	t.Run("other user is forbidden and nothing changes", func(t *testing.T) {
		writes := repo.Writes
		_, err := s.UpdateTask(ctx, bob, task.ID, models.TaskInput{Title: "hijacked"})
		assert.ErrorIs(t, err, services.ErrTaskForbidden)
		assert.Equal(t, writes, repo.Writes)

		stored, err := repo.FindByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Buy oat milk", stored.Title)
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := s.UpdateTask(ctx, alice, 9999, models.TaskInput{Title: "x"})
		assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
	})

	t.Run("empty title", func(t *testing.T) {
		_, err := s.UpdateTask(ctx, alice, task.ID, models.TaskInput{Title: ""})
		var validationErr *services.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	})
}

func TestUpdateTask_Idempotent(t *testing.T) {
	s, repo := newTaskService(t)
	ctx := context.Background()
	task := mustCreate(t, s, alice, "Buy milk", false)
	in := models.TaskInput{Title: "Buy milk", Description: "skimmed", Complete: true}

	first, err := s.UpdateTask(ctx, alice, task.ID, in)
	require.NoError(t, err)
	writes := repo.Writes

	second, err := s.UpdateTask(ctx, alice, task.ID, in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, writes, repo.Writes, "identical update must not write again")
}

func TestDeleteTask(t *testing.T) {
	s, repo := newTaskService(t)
	ctx := context.Background()
	task := mustCreate(t, s, alice, "Buy milk", false)

	err := s.DeleteTask(ctx, bob, task.ID)
	assert.ErrorIs(t, err, services.ErrTaskForbidden)
	_, err = repo.FindByID(ctx, task.ID)
	require.NoError(t, err, "task must survive a forbidden delete")

	require.NoError(t, s.DeleteTask(ctx, alice, task.ID))
	_, err = repo.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)

	err = s.DeleteTask(ctx, alice, task.ID)
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
}
