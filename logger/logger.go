// Package logger configures the process-wide logrus logger.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup applies level and format ("text" or "json") to the standard logger.
// An unknown level falls back to info.
func Setup(level, format string) *logrus.Logger {
	log := logrus.StandardLogger()
	configure(log, level, format)
	return log
}

// New returns an independent logger, mainly for the CLI and tests.
func New(level, format string) *logrus.Logger {
	log := logrus.New()
	configure(log, level, format)
	return log
}

func configure(log *logrus.Logger, level, format string) {
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
