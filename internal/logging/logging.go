package logging

import (
	"io"
	stdLog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	// logWriter is where Configure sends log output
	logWriter io.Writer = os.Stderr
)

// stdLogWriter forwards lines written through the standard log package to zerolog
type stdLogWriter struct {
	logger zerolog.Logger
}

func (w *stdLogWriter) Write(p []byte) (int, error) {
	w.logger.Info().Msg(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Configure sets the global zerolog logger. Unknown levels fall back to info,
// unknown formats to console.
func Configure(levelStr, format string) zerolog.Level {

	level := ParseLevel(levelStr)
	zerolog.SetGlobalLevel(level)

	var w io.Writer = logWriter
	if strings.ToLower(format) != FormatJSON {
		w = zerolog.ConsoleWriter{
			Out:        logWriter,
			TimeFormat: time.RFC3339,
		}
	}

	logContext := zerolog.New(w).With().Timestamp()
	if level <= zerolog.DebugLevel {
		logContext = logContext.Caller()
	}

	log.Logger = logContext.Logger().Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	stdLog.SetFlags(0)
	stdLog.SetOutput(&stdLogWriter{logger: log.Logger})

	return level
}

// ParseLevel converts a level name to a zerolog level, defaulting to info.
func ParseLevel(levelStr string) zerolog.Level {

	if levelStr == "" {
		return zerolog.InfoLevel
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return level
}

// SetLogWriter changes where Configure writes. Call it before Configure.
func SetLogWriter(w io.Writer) {
	logWriter = w
}
