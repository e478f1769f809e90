package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"go-task-list/backend/internal/models"
)

const redisSessionPrefix = "session:"

// RedisSessionRepo はRedisにセッションを保存します。期限はキーのTTLで管理します。
type RedisSessionRepo struct {
	client *redis.Client
}

func NewRedisSessionRepo(client *redis.Client) *RedisSessionRepo {
	return &RedisSessionRepo{client: client}
}

// NewRedisClient はRedisクライアントを作成し、疎通確認を行います。
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisSessionRepo) Save(ctx context.Context, s *models.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("could not save session: already expired")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("could not encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisSessionPrefix+s.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	payload, err := r.client.Get(ctx, redisSessionPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("could not load session: %w", err)
	}
	var s models.Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("could not decode session: %w", err)
	}
	return &s, nil
}

// Revoke はキーを削除します。
func (r *RedisSessionRepo) Revoke(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisSessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("could not revoke session: %w", err)
	}
	return nil
}

// CleanupExpired はTTLで自動的に消えるため何もしません。
func (r *RedisSessionRepo) CleanupExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (r *RedisSessionRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
