package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	Logger *logrus.Logger
	once   sync.Once
)

// GetLogger returns the singleton logger. Logs go to stderr so the CLI can
// keep stdout for its table. LOG_LEVEL and LOG_FORMAT=text override the
// JSON info-level default.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		Logger = logrus.New()
		Logger.SetOutput(os.Stderr)
		Logger.SetLevel(logrus.InfoLevel)
		if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
			Logger.SetLevel(lvl)
		}
		if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
			Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			return
		}
		Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	})
	return Logger
}
