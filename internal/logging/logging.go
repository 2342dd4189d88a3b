// Package logging создает структурированный логгер для сервера и утилит.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// EnvProduction это значение APP_ENV, переключающее вывод в JSON.
const EnvProduction = "production"

// New возвращает логгер, пишущий в w.
// В production используется JSON, в остальных окружениях текстовый формат.
func New(env, level string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if env == EnvProduction {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel преобразует debug/info/warn/error в уровень slog. Неизвестные значения означают info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Component помечает l именем подсистемы, которая его использует.
func Component(l *slog.Logger, name string) *slog.Logger {
	return l.With(slog.String("component", name))
}

// Discard возвращает логгер, отбрасывающий все записи. Используется в тестах.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
