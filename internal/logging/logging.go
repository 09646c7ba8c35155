// Package logging configures the process logger: human-readable output on
// stderr, plus an optional rotating JSON file.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/NazarLozynskyi/ll-protocol/internal/config"
)

// New builds a logger from cfg. Console output goes to stderr so encoded
// and decoded bytes can flow through stdout untouched.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Level))
	if name == "" {
		name = "info"
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log.level %q is not a valid level", cfg.Level)
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if cfg.File != "" {
		w = io.MultiWriter(w, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
