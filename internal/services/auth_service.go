package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-task-list/backend/internal/models"
	"go-task-list/backend/internal/repositories"
)

// AuthService はセッションの開始・検証・終了を扱います。
type AuthService struct {
	jwtService  *JWTService
	sessionRepo repositories.SessionRepository
	ttl         time.Duration
	now         func() time.Time
}

// NewAuthService は新しいAuthServiceを作成します。
func NewAuthService(jwtService *JWTService, sessionRepo repositories.SessionRepository, ttl time.Duration) *AuthService {
	return &AuthService{jwtService: jwtService, sessionRepo: sessionRepo, ttl: ttl, now: time.Now}
}

// OpenSession はユーザーのセッションを保存し、対応するトークンを返します。
func (s *AuthService) OpenSession(ctx context.Context, user *models.User) (string, *models.Session, error) {
	now := s.now().UTC().Truncate(time.Second)
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return "", nil, err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username, session.ID, session.ExpiresAt)
	if err != nil {
		return "", nil, err
	}
	return token, session, nil
}

// Authenticate はトークンを検証し、サーバー側のセッションが有効であることを確認します。
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.SessionClaims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	session, err := s.sessionRepo.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	if !session.Active(s.now()) || session.UserID != claims.UserID {
		return nil, ErrSessionInvalid
	}
	return claims, nil
}

// CloseSession はセッションを失効させます。以後このセッションのトークンは使えません。
func (s *AuthService) CloseSession(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Revoke(ctx, sessionID)
}

// CleanupExpired は期限切れのセッションを削除します。
func (s *AuthService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.sessionRepo.CleanupExpired(ctx)
}

// Ping はセッションストアの疎通確認を行います。
func (s *AuthService) Ping(ctx context.Context) error {
	return s.sessionRepo.Ping(ctx)
}
