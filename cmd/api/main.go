package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"go-task-list/backend/internal/config"
	"go-task-list/backend/internal/database"
	"go-task-list/backend/internal/logger"
	"go-task-list/backend/internal/repositories"
	"go-task-list/backend/internal/routes"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	dialect, err := database.ParseDialect(cfg.DBDriver)
	if err != nil {
		logger.Fatal("invalid database driver", "error", err)
	}
	db := database.InitDB(dialect, cfg.DSN())
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(context.Background(), db, dialect); err != nil {
			logger.Fatal("failed to migrate database", "error", err)
		}
	}

	sessionRepo := newSessionRepository(cfg, db, dialect)
	if n, err := sessionRepo.CleanupExpired(context.Background()); err != nil {
		logger.Warn("failed to cleanup expired sessions", "error", err)
	} else if n > 0 {
		logger.Info("expired sessions removed", "count", n)
	}

	r := routes.SetupRouter(cfg, db, dialect, sessionRepo)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server listening", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited")
}

// newSessionRepository はREDIS_ADDRが設定されていればRedis、なければsessionsテーブルを使います。
func newSessionRepository(cfg *config.Config, db *sql.DB, dialect database.Dialect) repositories.SessionRepository {
	if cfg.RedisAddr == "" {
		return repositories.NewSQLSessionRepo(db, dialect)
	}
	log := logger.With("addr", cfg.RedisAddr, "db", cfg.RedisDB)
	client, err := repositories.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Info("using redis session store")
	return repositories.NewRedisSessionRepo(client)
}
