package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger configured for the given level name.
// Unknown level names fall back to info.
func New(level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
