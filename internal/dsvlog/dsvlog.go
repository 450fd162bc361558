// Package dsvlog wraps a process-wide logrus logger the way skeema wraps
// its own logger: one configured instance, cheap accessors, no per-row
// logging on the hot path.
package dsvlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// SetLevel parses and applies --log-level. An invalid level leaves the
// current level unchanged and returns the parse error.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

// L returns the shared logger.
func L() *logrus.Logger { return log }
