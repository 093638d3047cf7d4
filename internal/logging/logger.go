package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger. level is one of debug, info, warn,
// error; an empty level falls back to AUSMALBAR_LOG_LEVEL, then info.
func Init(level string, out io.Writer) {
	if level == "" {
		level = os.Getenv("AUSMALBAR_LOG_LEVEL")
	}
	zerolog.SetGlobalLevel(ParseLevel(level))

	if out == nil {
		out = os.Stderr
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, NoColor: out != os.Stderr})
}

// InitFile sends logs to a file in dir, for when the TUI owns the terminal.
// The returned closer must be called on shutdown.
func InitFile(level, dir string) (io.Closer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "ausmalbar.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	Init(level, f)
	return f, nil
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
