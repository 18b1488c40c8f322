package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mitchelldurbincs/tactician/internal/config"
)

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// setupLogging builds the process logger. Console format is for humans; json
// is also used when APP_ENV=production. A configured file gets JSON lines and
// is rotated by size. The returned closer flushes the file, if any.
func setupLogging(cfg config.LoggingConfig, stdout io.Writer) (zerolog.Logger, io.Closer) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var console io.Writer = stdout
	if cfg.Format != "json" && os.Getenv("APP_ENV") != "production" {
		console = zerolog.ConsoleWriter{
			Out:        stdout,
			TimeFormat: time.RFC3339,
		}
	}

	if cfg.File == "" {
		return zerolog.New(console).With().Timestamp().Logger(), nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	out := zerolog.MultiLevelWriter(console, file)
	return zerolog.New(out).With().Timestamp().Logger(), file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
