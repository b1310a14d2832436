package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"mongoutils/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs the logger described by cfg as the slog default. The
// returned closer releases the log file, if any.
func Setup(cfg config.LoggingConfig) io.Closer {
	w := Writer(cfg)
	slog.SetDefault(New(cfg, w))
	if lj, ok := w.(*lumberjack.Logger); ok {
		return lj
	}
	return nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Writer returns stdout, or a rotating file when output is "file".
func Writer(cfg config.LoggingConfig) io.Writer {
	if strings.ToLower(cfg.Output) == "file" && cfg.FilePath != "" {
		return &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // days
			Compress:   cfg.Compress,
		}
	}
	return os.Stdout
}

// New builds a JSON or text logger writing to w.
func New(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
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
