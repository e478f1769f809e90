package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-task-list/backend/internal/logger"
	"go-task-list/backend/internal/metrics"
	"go-task-list/backend/internal/models"
	"go-task-list/backend/internal/repositories"
	"go-task-list/backend/internal/services"
)

// UserHandler はユーザー関連のハンドラーを管理します。
type UserHandler struct {
	userService  *services.UserService
	authService  *services.AuthService
	cookieSecure bool
}

// NewUserHandler は新しいUserHandlerを作成します。
func NewUserHandler(userService *services.UserService, authService *services.AuthService, cookieSecure bool) *UserHandler {
	return &UserHandler{userService: userService, authService: authService, cookieSecure: cookieSecure}
}

// RegisterHandler はユーザー登録を処理し、そのままログイン状態にします。
// 既にログインしている場合はタスク一覧へリダイレクトします。
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	if isAuthenticated(c) {
		c.Redirect(http.StatusSeeOther, TaskListPath)
		return
	}

	var req models.UserRegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	user, err := h.userService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		metrics.AuthEvents.WithLabelValues("register", "error").Inc()
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration", "field": validationErr.Field, "details": validationErr.Message})
		case errors.Is(err, repositories.ErrDuplicateUsername):
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		default:
			logger.Error("failed to register user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		}
		return
	}

	// ユーザー作成とセッション開始は別の操作として行う
	token, session, err := h.authService.OpenSession(c.Request.Context(), user)
	if err != nil {
		logger.Error("failed to open session after registration", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}
	metrics.AuthEvents.WithLabelValues("register", "ok").Inc()

	h.setSessionCookie(c, token, session.ExpiresAt)
	respond(c, http.StatusCreated, gin.H{
		"user":       user,
		"token":      token,
		"expires_at": session.ExpiresAt,
	}, TaskListPath)
}

// LoginHandler はユーザーログインを処理します。
// 失敗理由 (ユーザー名かパスワードか) は返しません。
func (h *UserHandler) LoginHandler(c *gin.Context) {
	if isAuthenticated(c) {
		c.Redirect(http.StatusSeeOther, TaskListPath)
		return
	}

	var req models.UserLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req)
	if err != nil {
		metrics.AuthEvents.WithLabelValues("login", "error").Inc()
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		logger.Error("failed to authenticate user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	token, session, err := h.authService.OpenSession(c.Request.Context(), user)
	if err != nil {
		logger.Error("failed to open session", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	metrics.AuthEvents.WithLabelValues("login", "ok").Inc()

	h.setSessionCookie(c, token, session.ExpiresAt)
	respond(c, http.StatusOK, gin.H{
		"token":      token,
		"user_id":    user.ID,
		"username":   user.Username,
		"expires_at": session.ExpiresAt,
	}, TaskListPath)
}

// LogoutHandler はセッションを失効させ、ログイン画面へ戻します。
func (h *UserHandler) LogoutHandler(c *gin.Context) {
	sessionID := c.GetString(ContextSessionID)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session not found in context"})
		return
	}

	err := h.authService.CloseSession(c.Request.Context(), sessionID)
	metrics.AuthEvents.WithLabelValues("logout", metrics.Result(err)).Inc()
	if err != nil {
		logger.Error("failed to close session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}

	h.clearSessionCookie(c)
	respond(c, http.StatusOK, gin.H{"message": "Logged out"}, LoginPath)
}

// MeHandler はログイン中のユーザー情報を返します。
func (h *UserHandler) MeHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logger.Error("failed to fetch user", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":       user,
		"session_id": c.GetString(ContextSessionID),
	})
}

func (h *UserHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", h.cookieSecure, true)
}

func (h *UserHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", h.cookieSecure, true)
}
