package logger

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrUnsupportedFormat is returned for log formats other than json and console.
var ErrUnsupportedFormat = errors.New("unsupported log format")

// New constructs a zerolog logger based on level and format configuration.
func New(out io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, err
	}

	var writer zerolog.Logger
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		writer = zerolog.New(out).With().Timestamp().Logger()
	case "console":
		consoleWriter := zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
		writer = zerolog.New(consoleWriter).With().Timestamp().Logger()
	default:
		return zerolog.Logger{}, ErrUnsupportedFormat
	}

	return writer.Level(lvl), nil
}

// Init replaces the global zerolog logger used across the service.
func Init(level, format string) error {
	l, err := New(os.Stdout, level, format)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(l.GetLevel())
	log.Logger = l.With().Str("service", "jina-tools").Logger()
	return nil
}
