package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/config"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "logs", "taskflow.log")
	logger, closer, err := New(config.LoggingConfig{Level: "debug", File: file})
	require.NoError(t, err)

	logger.Debug("store opened", "path", ":memory:")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), "store opened")
	require.Contains(t, string(data), "path=:memory:")
}

func TestNewFiltersBelowLevel(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "taskflow.log")
	logger, closer, err := New(config.LoggingConfig{Level: "warn", File: file})
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.NotContains(t, string(data), "quiet")
	require.Contains(t, string(data), "loud")
}

func TestOpenLogFileSizing(t *testing.T) {
	t.Parallel()

	file, err := openLogFile(config.LoggingConfig{File: filepath.Join(t.TempDir(), "a.log")})
	require.NoError(t, err)
	require.Equal(t, 10, file.MaxSize)
	require.Equal(t, 5, file.MaxBackups)

	file, err = openLogFile(config.LoggingConfig{
		File:      filepath.Join(t.TempDir(), "b.log"),
		MaxSizeMB: 2,
		MaxFiles:  7,
	})
	require.NoError(t, err)
	require.Equal(t, 2, file.MaxSize)
	require.Equal(t, 7, file.MaxBackups)
}

func TestNewAcceptsWarningLevel(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "taskflow.log")
	logger, closer, err := New(config.LoggingConfig{Level: "warning", File: file})
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.NotContains(t, string(data), "quiet")
	require.Contains(t, string(data), "loud")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, _, err := New(config.LoggingConfig{Level: "loud"})
	require.Error(t, err)
}
