// file: internals/configs/logger.go
package configs

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger membangun slog.Logger: stdout + file rotasi (lumberjack) kalau LOG_FILE diisi.
func NewLogger(ls LogSettings) *slog.Logger {
	writers := []io.Writer{os.Stdout}
	if strings.TrimSpace(ls.File) != "" {
		maxMB := ls.FileMaxMB
		if maxMB <= 0 {
			maxMB = 50
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   ls.File,
			MaxSize:    maxMB,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}

	w := io.MultiWriter(writers...)
	opts := &slog.HandlerOptions{Level: ParseLevel(ls.Level)}

	var h slog.Handler
	if strings.EqualFold(ls.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With(slog.String("service", "schoolfee_backend"))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
