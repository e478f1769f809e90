package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go-task-list/backend/internal/handlers"
	"go-task-list/backend/internal/logger"
	"go-task-list/backend/internal/metrics"
	"go-task-list/backend/internal/services"
)

var errInvalidTokenFormat = errors.New("invalid token format")

// extractToken はAuthorizationヘッダー、なければセッションCookieからトークンを取り出します。
func extractToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		// "Bearer " プレフィックスを削除
		if !strings.HasPrefix(header, "Bearer ") {
			return "", errInvalidTokenFormat
		}
		return header[len("Bearer "):], nil
	}
	if cookie, err := c.Cookie(handlers.SessionCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", nil
}

// AuthMiddleware はトークンとサーバー側セッションを検証し、ユーザー情報をコンテキストに設定するミドルウェアです。
// 未認証のリクエストはログイン画面へ誘導します。
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err != nil {
			rejectUnauthenticated(c, "Invalid token format")
			return
		}
		if token == "" {
			rejectUnauthenticated(c, "Authorization required")
			return
		}

		claims, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, services.ErrSessionInvalid) {
				logger.Error("failed to verify session", "error", err)
			}
			rejectUnauthenticated(c, "Invalid or expired token")
			return
		}

		c.Set(handlers.ContextUserID, claims.UserID)
		c.Set(handlers.ContextUsername, claims.Username)
		c.Set(handlers.ContextSessionID, claims.SessionID)
		c.Next()
	}
}

// OptionalAuth は有効なセッションがあればユーザー情報を設定し、なければそのまま通します。
// ログイン・登録画面で「ログイン済み」を判定するために使います。
func OptionalAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err == nil && token != "" {
			if claims, err := authService.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(handlers.ContextUserID, claims.UserID)
				c.Set(handlers.ContextUsername, claims.Username)
				c.Set(handlers.ContextSessionID, claims.SessionID)
			}
		}
		c.Next()
	}
}

func rejectUnauthenticated(c *gin.Context, message string) {
	if handlers.WantsHTML(c) {
		c.Redirect(http.StatusSeeOther, handlers.LoginPath)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message, "login_url": handlers.LoginPath})
}

// MetricsMiddleware はリクエスト数とレイテンシを記録します。
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
