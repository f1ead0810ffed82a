package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured key/value pairs attached to a log line
type Fields map[string]interface{}

// Logger is the logging surface used across hiretrack
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
}

type entry struct {
	e *logrus.Entry
}

var base = logrus.New()

func init() {
	base.SetOutput(os.Stderr)
	base.SetLevel(logrus.WarnLevel)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Configure sets the global level and output format.
// Unknown levels fall back to warn, unknown formats to text.
func Configure(level, format string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.WarnLevel
	}
	base.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// SetVerbosity maps the CLI flags onto a level: --verbose wins over --debug
func SetVerbosity(debug, verbose bool) {
	switch {
	case verbose:
		base.SetLevel(logrus.DebugLevel)
	case debug:
		base.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects all log output, mostly for tests
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// Level returns the current level name
func Level() string {
	return base.GetLevel().String()
}

func root() Logger {
	return &entry{e: logrus.NewEntry(base)}
}

func (l *entry) Debug(args ...interface{}) { l.e.Debug(args...) }
func (l *entry) Info(args ...interface{})  { l.e.Info(args...) }
func (l *entry) Warn(args ...interface{})  { l.e.Warn(args...) }
func (l *entry) Error(args ...interface{}) { l.e.Error(args...) }

func (l *entry) Debugf(format string, args ...interface{}) { l.e.Debugf(format, args...) }
func (l *entry) Infof(format string, args ...interface{})  { l.e.Infof(format, args...) }
func (l *entry) Warnf(format string, args ...interface{})  { l.e.Warnf(format, args...) }
func (l *entry) Errorf(format string, args ...interface{}) { l.e.Errorf(format, args...) }

func (l *entry) WithField(key string, value interface{}) Logger {
	return &entry{e: l.e.WithField(key, value)}
}

func (l *entry) WithFields(fields Fields) Logger {
	return &entry{e: l.e.WithFields(logrus.Fields(fields))}
}

func (l *entry) WithError(err error) Logger {
	return &entry{e: l.e.WithError(err)}
}

// Package-level helpers

func Debug(args ...interface{}) { root().Debug(args...) }
func Info(args ...interface{})  { root().Info(args...) }
func Warn(args ...interface{})  { root().Warn(args...) }
func Error(args ...interface{}) { root().Error(args...) }

func Debugf(format string, args ...interface{}) { root().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { root().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { root().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { root().Errorf(format, args...) }

// WithField returns a logger carrying a single field
func WithField(key string, value interface{}) Logger {
	return root().WithField(key, value)
}

// WithFields returns a logger carrying the given fields
func WithFields(fields Fields) Logger {
	return root().WithFields(fields)
}

// WithError returns a logger carrying err under the "error" key
func WithError(err error) Logger {
	return root().WithError(err)
}
