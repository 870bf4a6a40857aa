package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Package-level loggers. They write text to stderr until InitLoggers is called,
// so packages and tests can log without any setup.
var (
	InfoLogger  = logrus.New()
	WarnLogger  = logrus.New()
	ErrorLogger = logrus.New()
	DebugLogger = logrus.New()
)

func init() {
	DebugLogger.SetLevel(logrus.DebugLevel)
}

// InitLoggers configures level, format and rotating file output from the environment.
//
//	LOG_LEVEL  debug|info|warn|error (default info)
//	LOG_FORMAT json|text (default text)
//	LOG_DIR    directory for rotated files; empty keeps stdout only
func InitLoggers() {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}

	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		formatter = &logrus.JSONFormatter{}
	}

	dir := os.Getenv("LOG_DIR")

	setup(InfoLogger, level, formatter, dir, "info.log")
	setup(WarnLogger, level, formatter, dir, "warn.log")
	setup(ErrorLogger, level, formatter, dir, "error.log")
	setup(DebugLogger, logrus.DebugLevel, formatter, dir, "debug.log")

	if level < logrus.DebugLevel {
		DebugLogger.SetOutput(io.Discard)
	}
}

func setup(l *logrus.Logger, level logrus.Level, formatter logrus.Formatter, dir, file string) {
	l.SetLevel(level)
	l.SetFormatter(formatter)

	if dir == "" {
		l.SetOutput(os.Stdout)
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(dir, file),
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}
	l.SetOutput(io.MultiWriter(os.Stdout, rotator))
}
