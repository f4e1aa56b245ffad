package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tgienger/taskflow/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	fallbackMaxSizeMB = 10
	fallbackMaxFiles  = 5
)

// New builds the process logger. Records go to stderr unless cfg.File is
// set, in which case they go to a size-rotated file. The returned closer
// releases the file and is safe to call when logging to stderr.
func New(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if cfg.File != "" {
		file, err := openLogFile(cfg)
		if err != nil {
			return nil, nil, err
		}
		out, closer = file, file
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}

// openLogFile sizes the rotation from cfg; zero limits fall back to 10 MB
// per file and five kept backups.
func openLogFile(cfg config.LoggingConfig) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxFiles,
	}
	if file.MaxSize <= 0 {
		file.MaxSize = fallbackMaxSizeMB
	}
	if file.MaxBackups <= 0 {
		file.MaxBackups = fallbackMaxFiles
	}
	return file, nil
}
