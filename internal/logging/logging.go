// Package logging sets up the process-wide structured logger. The teacher
// CLI (cmd/sqlparser) logs with bare fmt.Println; relstore replaces that
// with a configurable structured logger so the REPL, executor, and stats
// recorder can all emit consistent, parseable diagnostics.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logger at the given level, writing to w (os.Stderr if nil).
// Unrecognized level strings fall back to info, matching the teacher's
// tolerant flag parsing in cmd/sqlparser/main.go.
func New(level string, w io.Writer) *logrus.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
