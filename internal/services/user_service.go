package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-task-list/backend/internal/logger"
	"go-task-list/backend/internal/models"
	"go-task-list/backend/internal/repositories"
)

// UserService はユーザー関連のビジネスロジックを扱います。
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService は新しいUserServiceを作成します。
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// RegisterUser はユーザーを登録します。セッションの作成は行いません (AuthService.OpenSession を使う)。
func (s *UserService) RegisterUser(ctx context.Context, req models.UserRegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if req.Password != req.PasswordConfirm {
		return nil, invalid("password_confirm", "The two password fields didn't match.")
	}
	if err := ValidatePassword(req.Password, username); err != nil {
		return nil, err
	}

	hashedPassword, err := repositories.HashPassword(req.Password)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	createdUser, err := s.userRepo.Create(ctx, &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		return nil, err
	}
	createdUser.PasswordHash = "" // レスポンスにパスワードを含めない
	return createdUser, nil
}

// AuthenticateUser はユーザーを認証し、成功したらユーザーを返します。
// ユーザーが存在しない場合もパスワード不一致の場合もErrInvalidCredentialsを返します。
func (s *UserService) AuthenticateUser(ctx context.Context, req models.UserLoginRequest) (*models.User, error) {
	foundUser, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("could not authenticate user: %w", err)
	}

	if err := repositories.VerifyPassword(foundUser.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	foundUser.PasswordHash = ""
	return foundUser, nil
}

// GetUser はIDでユーザーを取得します。
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}
