package mcpinspect

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLogLevel overrides the configured log level when set.
const EnvLogLevel = "MCPINSPECT_LOG_LEVEL"

// NewLogger creates a console logger at level, MCPINSPECT_LOG_LEVEL takes precedence.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	if value, ok := os.LookupEnv(EnvLogLevel); ok && value != "" {
		level = value
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(parseLevel(level)).With().Timestamp().Str("app", "mcpinspect").Logger()
}

func parseLevel(level string) zerolog.Level {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.InfoLevel
	}
	return parsed
}
