package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// Options controls how the logrus logger is set up
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

type LogrusLogger struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

func NewLogrus() *LogrusLogger {
	logger := logrus.New()
	return &LogrusLogger{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

// New builds a logrus backed Logger from options
func New(opts Options) (*LogrusLogger, error) {
	l := NewLogrus()

	if opts.Output != nil {
		l.logger.SetOutput(opts.Output)
	} else {
		l.logger.SetOutput(os.Stderr)
	}

	level := opts.Level
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	l.logger.SetLevel(parsed)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	case "json":
		l.logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unsupported log format %q", opts.Format)
	}

	return l, nil
}

// Discard returns a logger that drops everything
func Discard() Logger {
	l := NewLogrus()
	l.logger.SetOutput(io.Discard)
	return l
}

func (l *LogrusLogger) Debug(msg string) {
	l.entry.Debug(msg)
}

func (l *LogrusLogger) Info(msg string) {
	l.entry.Info(msg)
}

func (l *LogrusLogger) Warn(msg string) {
	l.entry.Warn(msg)
}

func (l *LogrusLogger) Error(msg string, err error) {
	l.entry.WithError(err).Error(msg)
}

func (l *LogrusLogger) WithField(key string, value interface{}) Logger {
	return &LogrusLogger{
		logger: l.logger,
		entry:  l.entry.WithField(key, value),
	}
}

func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{
		logger: l.logger,
		entry:  l.entry.WithFields(logrus.Fields(fields)),
	}
}
