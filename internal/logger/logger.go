package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogConfig configures the global logger
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" yaml:"level"`
	Format     string `envconfig:"LOG_FORMAT" yaml:"format"`
	Output     string `envconfig:"LOG_OUTPUT" yaml:"output"`
	FilePath   string `envconfig:"LOG_FILE_PATH" yaml:"file_path"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" yaml:"time_format"`
}

// Logger is usable before InitLogger runs; it writes warnings and above to stderr
var Logger = zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

// InitLogger replaces Logger according to config
func InitLogger(config LogConfig) error {
	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", config.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = timeFormat(config.TimeFormat)

	output, err := openOutput(config)
	if err != nil {
		return err
	}
	if strings.EqualFold(config.Format, "console") {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(output).Level(level).With().Timestamp().Caller().Logger()
	Logger.Debug().
		Str("level", config.Level).
		Str("format", config.Format).
		Str("output", config.Output).
		Msg("Logger initialized")
	return nil
}

func timeFormat(name string) string {
	switch strings.ToLower(name) {
	case "unix":
		return zerolog.TimeFormatUnix
	case "iso8601":
		return "2006-01-02T15:04:05.000Z07:00"
	}
	return time.RFC3339
}

// openOutput defaults to stderr: stdout carries the CLI report
func openOutput(config LogConfig) (io.Writer, error) {
	switch strings.ToLower(config.Output) {
	case "stdout":
		return os.Stdout, nil
	case "file":
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
		file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file '%s': %w", config.FilePath, err)
		}
		return file, nil
	}
	return os.Stderr, nil
}

func Info() *zerolog.Event  { return Logger.Info() }
func Debug() *zerolog.Event { return Logger.Debug() }
func Warn() *zerolog.Event  { return Logger.Warn() }
func Error() *zerolog.Event { return Logger.Error() }
