// Package log provides category-scoped structured logging.
package log

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Category tags a log line with the subsystem that produced it.
type Category string

const (
	CatAudio  Category = "audio"
	CatLoader Category = "loader"
	CatConfig Category = "config"
	CatClips  Category = "clips"
	CatCLI    Category = "cli"
)

var logger atomic.Pointer[logrus.Logger]

func init() {
	logger.Store(newLogger(os.Stderr, logrus.WarnLevel, "text"))
}

// Setup replaces the process logger. format is "text" or "json".
func Setup(w io.Writer, level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	switch format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	logger.Store(newLogger(w, lvl, format))
	return nil
}

// SetOutput sends all levels to w as text. Intended for tests.
func SetOutput(w io.Writer) {
	logger.Store(newLogger(w, logrus.DebugLevel, "text"))
}

// ParseLevel accepts debug, info, warn or error (case-insensitive). An
// empty string means info.
func ParseLevel(s string) (logrus.Level, error) {
	if s == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

func newLogger(w io.Writer, lvl logrus.Level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	return l
}

func Debug(cat Category, msg string, args ...any) { entry(cat, args).Debug(msg) }
func Info(cat Category, msg string, args ...any)  { entry(cat, args).Info(msg) }
func Warn(cat Category, msg string, args ...any)  { entry(cat, args).Warn(msg) }
func Error(cat Category, msg string, args ...any) { entry(cat, args).Error(msg) }

// entry turns alternating key/value args into fields. A trailing key
// without a value is kept under "!BADKEY".
func entry(cat Category, args []any) *logrus.Entry {
	fields := logrus.Fields{"cat": string(cat)}
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			fields["!BADKEY"] = args[i]
			break
		}
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	return logger.Load().WithFields(fields)
}
