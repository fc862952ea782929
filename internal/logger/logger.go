package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger so packages share one set of field names
type Logger struct {
	*zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string    // zerolog level name; empty or unknown means info
	Pretty     bool      // human-readable console output instead of JSON lines
	OutputFile string    // also append to this file when set
	Out        io.Writer // defaults to os.Stdout
}

// New creates a logger; the level is per logger, never global
func New(cfg Config) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	zl := zerolog.New(writer(cfg)).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()

	return wrap(zl)
}

func writer(cfg Config) io.Writer {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	if cfg.OutputFile == "" {
		return out
	}
	file, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return out
	}
	return io.MultiWriter(out, file)
}

func wrap(zl zerolog.Logger) *Logger {
	return &Logger{Logger: &zl}
}

// NewDefault is an info-level console logger, used before configuration is known
func NewDefault() *Logger {
	return New(Config{Level: "info", Pretty: true})
}

// Nop discards everything
func Nop() *Logger {
	return wrap(zerolog.Nop())
}

// WithComponent tags every line with the emitting component
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// WithRequestID tags every line with chi's request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.with("request_id", requestID)
}

// WithIP tags every line with the looked-up IP text
func (l *Logger) WithIP(ip string) *Logger {
	return l.with("ip", ip)
}

func (l *Logger) with(key, value string) *Logger {
	return wrap(l.With().Str(key, value).Logger())
}
