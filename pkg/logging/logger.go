package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	EnvLogLevel = "LOGVIZ_LOG_LEVEL"
	EnvJSONLog  = "LOGVIZ_JSON_LOG"

	DefaultLevel = "warn"
	LinePrefix   = "📈 "
)

// NewLogger creates a new hclog logger with standard settings. Text output
// is prefixed through a PrefixWriter; a caller that wants to Flush it can pass
// its own. JSON output bypasses the prefix.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv(EnvJSONLog) == "1"
	pw, prefixed := output.(*PrefixWriter)
	switch {
	case jsonFormat && prefixed:
		output = pw.writer
	case !jsonFormat && !prefixed:
		output = NewPrefixWriter(LinePrefix, output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(ResolveLevel(level)),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// ResolveLevel picks the explicit level when set, else the environment, else
// DefaultLevel. Unknown names fall back to DefaultLevel.
func ResolveLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = GetLogLevel()
	}
	if hclog.LevelFromString(level) == hclog.NoLevel {
		return DefaultLevel
	}
	return level
}

// GetLogLevel returns the configured log level from environment
func GetLogLevel() string {
	level := os.Getenv(EnvLogLevel)
	if level == "" {
		level = DefaultLevel
	}
	return level
}
