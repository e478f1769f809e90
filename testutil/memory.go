// Package testutil はテスト用のインメモリリポジトリとルーター、ヘルパーを提供します。
package testutil

import (
	"context"
	"sync"
	"time"

	"go-task-list/backend/internal/models"
	"go-task-list/backend/internal/repositories"
)

// MemoryTaskRepo はテスト用のTaskRepository実装です。挿入順に並びます。
type MemoryTaskRepo struct {
	mu     sync.Mutex
	nextID int64
	tasks  []*models.Task
	// Writes はCreate/Update/Deleteの呼び出し回数です。
	Writes int
}

func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{}
}

func (r *MemoryTaskRepo) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC().Truncate(time.Second)
	t.ID = r.nextID
	t.CreatedAt = now
	t.UpdatedAt = now
	stored := *t
	r.tasks = append(r.tasks, &stored)
	r.Writes++
	return t, nil
}

func (r *MemoryTaskRepo) FindByID(_ context.Context, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id {
			found := *t
			return &found, nil
		}
	}
	return nil, repositories.ErrTaskNotFound
}

func (r *MemoryTaskRepo) FindByUserID(_ context.Context, userID int64) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := []*models.Task{}
	for _, t := range r.tasks {
		if t.UserID == userID {
			found := *t
			tasks = append(tasks, &found)
		}
	}
	return tasks, nil
}

func (r *MemoryTaskRepo) Update(_ context.Context, t *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.tasks {
		if stored.ID == t.ID {
			stored.Title = t.Title
			stored.Description = t.Description
			stored.Complete = t.Complete
			stored.UpdatedAt = time.Now().UTC().Truncate(time.Second)
			r.Writes++
			updated := *stored
			return &updated, nil
		}
	}
	return nil, repositories.ErrTaskNotFound
}

func (r *MemoryTaskRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			r.Writes++
			return nil
		}
	}
	return repositories.ErrTaskNotFound
}

// MemoryUserRepo はテスト用のUserRepository実装です。
type MemoryUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: map[int64]*models.User{}}
}

func (r *MemoryUserRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return nil, repositories.ErrDuplicateUsername
		}
	}
	r.nextID++
	now := time.Now().UTC().Truncate(time.Second)
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	stored := *u
	r.users[u.ID] = &stored
	return u, nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	found := *u
	return &found, nil
}

func (r *MemoryUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			found := *u
			return &found, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

// MemorySessionRepo はテスト用のSessionRepository実装です。
type MemorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: map[string]*models.Session{}}
}

func (r *MemorySessionRepo) Save(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *s
	r.sessions[s.ID] = &stored
	return nil
}

func (r *MemorySessionRepo) FindByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	found := *s
	return &found, nil
}

func (r *MemorySessionRepo) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok && s.RevokedAt == nil {
		now := time.Now().UTC()
		s.RevokedAt = &now
	}
	return nil
}

func (r *MemorySessionRepo) CleanupExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	now := time.Now()
	for id, s := range r.sessions {
		if !s.Active(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *MemorySessionRepo) Ping(context.Context) error { return nil }

// Len は保存されているセッション数を返します。
func (r *MemorySessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
