package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process wide logger. It is usable before Setup is called.
var Log = logrus.New()

// Setup configures the process logger from the LOG_LEVEL / LOG_FORMAT values.
func Setup(level, format string) *logrus.Logger {
	Log.SetOutput(os.Stdout)

	switch strings.ToLower(format) {
	case "json":
		Log.SetFormatter(&logrus.JSONFormatter{})
	default:
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		Log.WithField("level", level).Warn("unknown log level, falling back to info")
	}
	Log.SetLevel(lvl)

	return Log
}
