package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. format "json" selects the JSON
// formatter, anything else the text formatter. Unknown levels fall back to info.
func NewLogger(level, format string) *logrus.Logger {
	logg := logrus.New()
	if strings.EqualFold(format, "json") {
		logg.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logg.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logg.SetLevel(lvl)
	logg.SetOutput(os.Stdout)
	return logg
}

// LogError logs err with the module and function it came from.
func LogError(logger logrus.FieldLogger, moduleName, funcName string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
