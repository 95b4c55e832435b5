// Package logging centralizes logger setup and provides package-level
// logging helpers so callers can import it as a drop-in `log` alias.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogDir      = "logs"
	defaultLogFile     = "caseflow.log"
	defaultMaxSizeMB   = 50
	defaultMaxBackups  = 5
	defaultMaxAgeDays  = 14
	defaultCompressOld = true
)

var baseLogger = logrus.StandardLogger()

// SetupBaseLogger configures the process-wide logger with sane defaults.
// Safe to call more than once.
func SetupBaseLogger() {
	baseLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	baseLogger.SetOutput(os.Stderr)
	baseLogger.SetLevel(logrus.InfoLevel)
}

// ConfigureLogOutput switches logging to a rotated file when toFile is true.
// Console output is kept alongside the file so interactive runs stay readable.
func ConfigureLogOutput(toFile bool) error {
	if !toFile {
		baseLogger.SetOutput(os.Stderr)
		return nil
	}
	if err := os.MkdirAll(defaultLogDir, 0o755); err != nil {
		return err
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(defaultLogDir, defaultLogFile),
		MaxSize:    defaultMaxSizeMB,
		MaxBackups: defaultMaxBackups,
		MaxAge:     defaultMaxAgeDays,
		Compress:   defaultCompressOld,
	}
	baseLogger.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return nil
}

// SetLevel adjusts the process-wide log level.
func SetLevel(level logrus.Level) {
	baseLogger.SetLevel(level)
}

// GetLevel returns the current process-wide log level.
func GetLevel() logrus.Level {
	return baseLogger.GetLevel()
}

// WithError returns an entry with the error attached as a field.
func WithError(err error) *logrus.Entry {
	return baseLogger.WithError(err)
}

// WithField returns an entry with a single field attached.
func WithField(key string, value any) *logrus.Entry {
	return baseLogger.WithField(key, value)
}

func Debugf(format string, args ...any) { baseLogger.Debugf(format, args...) }
func Infof(format string, args ...any)  { baseLogger.Infof(format, args...) }
func Warnf(format string, args ...any)  { baseLogger.Warnf(format, args...) }
func Errorf(format string, args ...any) { baseLogger.Errorf(format, args...) }
func Fatalf(format string, args ...any) { baseLogger.Fatalf(format, args...) }

func Debug(args ...any) { baseLogger.Debug(args...) }
func Info(args ...any)  { baseLogger.Info(args...) }
func Warn(args ...any)  { baseLogger.Warn(args...) }
func Error(args ...any) { baseLogger.Error(args...) }
