// Package log はslogをラップした構造化ログを提供します。
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logger *slog.Logger
	once   sync.Once
)

// Init は指定されたレベルでグローバルロガーを初期化する
// 有効なレベル: "debug", "info", "warn", "error"
func Init(level string) {
	once.Do(func() {
		logger = New(os.Stdout, level, os.Getenv("GO_ENV") == "production")
		slog.SetDefault(logger)
	})
}

// New は出力先とレベルを指定してロガーを作成する
func New(w io.Writer, level string, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	// 本番ではJSON、開発ではテキスト
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel はレベル文字列をslog.Levelに変換する
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L はグローバルロガーを返す
func L() *slog.Logger {
	if logger == nil {
		Init("info")
	}
	return logger
}

// Debug はdebugレベルで出力する
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info はinfoレベルで出力する
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn はwarnレベルで出力する
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error はerrorレベルで出力する
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With は属性を付与したロガーを返す
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
