// Package log configures the process-wide logrus logger.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

// InitializeLogger sets the output format and level of the standard logrus
// logger. Developer mode logs human readable text, otherwise JSON. An empty
// level keeps debug in developer mode and info otherwise.
func InitializeLogger(developerMode bool, level string) error {
	return configure(logrus.StandardLogger(), os.Stdout, developerMode, level)
}

func configure(l *logrus.Logger, out io.Writer, developerMode bool, level string) error {
	lv := logrus.InfoLevel
	if developerMode {
		lv = logrus.DebugLevel
	}
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return err
		}
		lv = parsed
	}

	if developerMode {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
		})
	}
	l.SetLevel(lv)
	l.SetOutput(out)
	return nil
}
