package config

import (
	"fmt"
	"strings"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	if c.Match.RegexTimeout <= 0 {
		return fmt.Errorf("match.regex_timeout must be > 0 (got %v)", c.Match.RegexTimeout)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must be >= 0 (got %d)", c.Batch.Workers)
	}
	if !oneOf(c.Log.Level, logLevels) {
		return fmt.Errorf("log.level must be one of %s (got %q)", strings.Join(logLevels, ", "), c.Log.Level)
	}
	if !oneOf(c.Log.Format, logFormats) {
		return fmt.Errorf("log.format must be one of %s (got %q)", strings.Join(logFormats, ", "), c.Log.Format)
	}
	return nil
}

func oneOf(s string, allowed []string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
