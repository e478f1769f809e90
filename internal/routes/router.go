// Package routesはroutingを行います。
package routes

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-task-list/backend/internal/config"
	"go-task-list/backend/internal/database"
	"go-task-list/backend/internal/handlers"
	"go-task-list/backend/internal/repositories"
	"go-task-list/backend/internal/services"
)

// Dependencies はルーターが必要とするリポジトリと設定です。
type Dependencies struct {
	TaskRepo    repositories.TaskRepository
	UserRepo    repositories.UserRepository
	SessionRepo repositories.SessionRepository

	// DBPing はreadinessチェックで使うDBの疎通確認です。nilなら省略します。
	DBPing func(ctx context.Context) error

	JWTSecret        []byte
	SessionTTL       time.Duration
	CookieSecure     bool
	CORSAllowOrigins []string
}

// SetupRouter は設定とDB接続からSQLリポジトリを組み立て、ルーターを返します。
func SetupRouter(cfg *config.Config, db *sql.DB, dialect database.Dialect, sessionRepo repositories.SessionRepository) *gin.Engine {
	return NewRouter(Dependencies{
		TaskRepo:         repositories.NewSQLTaskRepo(db, dialect),
		UserRepo:         repositories.NewSQLUserRepo(db, dialect),
		SessionRepo:      sessionRepo,
		DBPing:           db.PingContext,
		JWTSecret:        []byte(cfg.JWTSecret),
		SessionTTL:       cfg.SessionTTL,
		CookieSecure:     cfg.CookieSecure,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})
}

// NewRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	// CORS対策
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = deps.CORSAllowOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))
	r.Use(MetricsMiddleware())

	// サービス
	jwtService := services.NewJWTService(deps.JWTSecret)
	authService := services.NewAuthService(jwtService, deps.SessionRepo, deps.SessionTTL)
	taskService := services.NewTaskService(deps.TaskRepo)
	userService := services.NewUserService(deps.UserRepo)

	// ハンドラー
	userHandler := handlers.NewUserHandler(userService, authService, deps.CookieSecure)
	taskHandler := handlers.NewTaskHandler(taskService)
	checks := map[string]handlers.HealthCheck{"sessions": authService.Ping}
	if deps.DBPing != nil {
		checks["database"] = deps.DBPing
	}
	healthHandler := handlers.NewHealthHandler(checks)

	// ルーティング
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api/health", healthHandler.Liveness)
	r.GET("/api/readyz", healthHandler.Readiness)

	guest := r.Group("/api")
	guest.Use(OptionalAuth(authService))
	{
		guest.POST("/register", userHandler.RegisterHandler)
		guest.POST("/login", userHandler.LoginHandler)
	}

	authorized := r.Group("/api")
	authorized.Use(AuthMiddleware(authService))
	{
		authorized.POST("/logout", userHandler.LogoutHandler)
		authorized.GET("/me", userHandler.MeHandler)
		authorized.GET("/tasks", taskHandler.GetTasksHandler)
		authorized.GET("/tasks/:id", taskHandler.GetTaskByIDHandler)
		authorized.POST("/tasks", taskHandler.CreateTaskHandler)
		authorized.PUT("/tasks/:id", taskHandler.UpdateTaskHandler)
		authorized.DELETE("/tasks/:id", taskHandler.DeleteTaskHandler)

		// HTMLフォームはPUT/DELETEを送れないためPOSTでも受け付ける
		authorized.POST("/tasks/:id/update", taskHandler.UpdateTaskHandler)
		authorized.POST("/tasks/:id/delete", taskHandler.DeleteTaskHandler)
	}

	return r
}
