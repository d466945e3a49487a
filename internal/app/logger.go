package app

import (
	"strings"

	"github.com/nursultanq/gymapp/pkg/logger"
)

// ConfigureLogging initialises the global logger from the server settings,
// defaulting to info-level json output.
func ConfigureLogging(level, format string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	format = strings.TrimSpace(format)
	if format == "" {
		format = "json"
	}
	return logger.Init(level, format)
}
