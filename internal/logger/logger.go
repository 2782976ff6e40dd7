package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

var log *slog.Logger

// Options - настройки операционного лога.
// Пустой File означает вывод только в stdout, пустой Level - уровень по env.
type Options struct {
	Env        string
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Init инициализирует глобальный логгер
func Init(opts Options) {
	var out io.Writer = os.Stdout
	if opts.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		})
	}

	log = slog.New(NewHandler(out, opts.Env, opts.Level))
	slog.SetDefault(log)
}

// NewHandler: текст в development, JSON в остальных окружениях.
func NewHandler(w io.Writer, env, level string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(level, env),
		AddSource: true,
	}
	if env == "development" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ParseLevel понимает debug/info/warn/error; иначе debug в development и info в остальных.
func ParseLevel(level, env string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if env == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// SetLogger подменяет глобальный логгер (тесты).
func SetLogger(l *slog.Logger) {
	log = l
}

// GetLogger возвращает глобальный логгер
func GetLogger() *slog.Logger {
	if log == nil {
		Init(Options{Env: "development"})
	}
	return log
}

// ============================================
// Convenience функции
// ============================================

func Debug(msg string, args ...any) { GetLogger().Debug(msg, args...) }
func Info(msg string, args ...any)  { GetLogger().Info(msg, args...) }
func Warn(msg string, args ...any)  { GetLogger().Warn(msg, args...) }
func Error(msg string, args ...any) { GetLogger().Error(msg, args...) }

// Fatal логирует ошибку и завершает программу
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// With создает логгер с дополнительными полями
// Пример: logger.With("task", "daily_analytics").Info("task started")
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}

// WorkerLog - итог операции фоновой задачи планировщика
func WorkerLog(task, operation string, err error) {
	l := GetLogger().With("task", task, "operation", operation)
	if err != nil {
		l.Error("task operation failed", "error", err.Error())
		return
	}
	l.Info("task operation completed")
}
