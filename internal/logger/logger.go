package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// InfoLogger and ErrorLogger are the two process-wide loggers.
// Info output goes to stdout and a rotating app log; error output
// goes to stderr and a rotating error log so failures survive log
// rotation on busy days. Both are ready to use at import time.
var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func init() {
	level := logrus.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := logrus.ParseLevel(raw); err == nil {
			level = parsed
		}
	}

	InfoLogger = newLogger(level, os.Stdout, "logs/app.log")
	ErrorLogger = newLogger(level, os.Stderr, "logs/error.log")
}

func newLogger(level logrus.Level, console io.Writer, file string) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetOutput(io.MultiWriter(console, &lumberjack.Logger{
		Filename:   file,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}))
	return l
}
