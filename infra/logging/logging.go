// Package logging builds the process logger. The overlay owns the terminal, so
// logs go to a rotating file or nowhere.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger that writes JSON to a rotating file. If file is empty,
// logs are discarded.
//
// The level parameter can be one of: trace, debug, info, warn, error, fatal.
func New(level string, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	var writer io.Writer = io.Discard
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // MiB
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		}
		closer = func() { _ = rotating.Close() }
		writer = rotating
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, closer, nil
}

// DefaultFile returns the log path under the user's state directory.
func DefaultFile() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "boardhud", "boardhud.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "boardhud", "boardhud.log")
}
