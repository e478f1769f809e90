// Package logger はアプリケーション全体で使うslogロガーを提供します。
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	defaultLogger atomic.Pointer[slog.Logger]
	lazyInit      sync.Once
)

// Init はグローバルロガーを初期化します。jsonがtrueならJSON形式で出力します。
func Init(level string, json bool) {
	l := newLogger(level, json)
	defaultLogger.Store(l)
	slog.SetDefault(l)
}

func newLogger(level string, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get は初期化済みのロガーを返します。未初期化ならinfoレベルで初期化します。
func Get() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	lazyInit.Do(func() {
		l := newLogger("info", false)
		if defaultLogger.CompareAndSwap(nil, l) {
			slog.SetDefault(l)
		}
	})
	return defaultLogger.Load()
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }

func Info(msg string, args ...any) { Get().Info(msg, args...) }

func Warn(msg string, args ...any) { Get().Warn(msg, args...) }

func Error(msg string, args ...any) { Get().Error(msg, args...) }

// Fatal はエラーを出力してプロセスを終了します。
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}

// With は属性付きのロガーを返します。
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}
