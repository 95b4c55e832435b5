// Package util provides small helpers shared across the caseflow server:
// log level wiring and path resolution.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ridgeline/caseflow/internal/config"
	log "github.com/ridgeline/caseflow/internal/logging"
)

// SetLogLevel configures the log level based on the configuration.
// Debug mode enables DebugLevel, otherwise InfoLevel.
func SetLogLevel(cfg *config.Config) {
	currentLevel := log.GetLevel()
	var newLevel logrus.Level
	if cfg.Debug {
		newLevel = logrus.DebugLevel
	} else {
		newLevel = logrus.InfoLevel
	}

	if currentLevel != newLevel {
		log.SetLevel(newLevel)
		log.Infof("log level changed from %s to %s (debug=%t)", currentLevel, newLevel, cfg.Debug)
	}
}

// ResolveDataDir normalizes a data directory path: "~" expands to the
// user's home directory, and the result is cleaned.
func ResolveDataDir(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}

	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve data dir: %w", err)
		}
		remainder := strings.TrimPrefix(dir, "~")
		remainder = strings.TrimLeft(remainder, "/\\")
		if remainder == "" {
			return filepath.Clean(home), nil
		}
		normalized := strings.ReplaceAll(remainder, "\\", "/")
		return filepath.Clean(filepath.Join(home, filepath.FromSlash(normalized))), nil
	}
	return filepath.Clean(dir), nil
}

// WritablePath returns the cleaned WRITABLE_PATH environment variable when it
// is set. It accepts both uppercase and lowercase variants for compatibility
// with existing deployment conventions.
func WritablePath() string {
	for _, key := range []string{"WRITABLE_PATH", "writable_path"} {
		if value, ok := os.LookupEnv(key); ok {
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				return filepath.Clean(trimmed)
			}
		}
	}
	return ""
}
