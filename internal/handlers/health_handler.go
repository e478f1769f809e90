package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck は依存先の疎通確認関数です。
type HealthCheck func(ctx context.Context) error

// HealthHandler はヘルスチェックエンドポイントを扱います。
type HealthHandler struct {
	checks    map[string]HealthCheck
	startTime time.Time
}

// NewHealthHandler は新しいHealthHandlerを作成します。
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, startTime: time.Now()}
}

// Liveness はプロセスが動いていることだけを返します。
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness はデータベースとセッションストアの疎通を確認します。
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = "unhealthy: " + err.Error()
			healthy = false
			continue
		}
		results[name] = "healthy"
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "error", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
		"checks": results,
	})
}
