// Package config loads sotd-match settings from a YAML file and SOTD_*
// environment variables.
package config

import (
	"path/filepath"
	"time"
)

// Config is the root configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Match   MatchConfig   `yaml:"match"`
	Batch   BatchConfig   `yaml:"batch"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
}

// CatalogConfig locates the data files. Empty values select the builtin data.
type CatalogConfig struct {
	Dir            string `yaml:"dir"             env:"SOTD_CATALOG_DIR"`
	CorrectMatches string `yaml:"correct_matches" env:"SOTD_CORRECT_MATCHES"`
	Filtered       string `yaml:"filtered"        env:"SOTD_FILTERED"`
}

// MatchConfig holds regex settings. SkipProbe disables the load-time
// backtracking probe.
type MatchConfig struct {
	RegexTimeout time.Duration `yaml:"regex_timeout" env:"SOTD_REGEX_TIMEOUT" env-default:"100ms"`
	SkipProbe    bool          `yaml:"skip_probe"    env:"SOTD_SKIP_PROBE"`
}

// BatchConfig holds batch matching settings. Zero workers means one per CPU.
type BatchConfig struct {
	Workers int `yaml:"workers" env:"SOTD_BATCH_WORKERS" env-default:"0"`
}

// StoreConfig selects the result store. An empty path or ":memory:" keeps
// results in memory.
type StoreConfig struct {
	Path string `yaml:"path" env:"SOTD_STORE_PATH"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"SOTD_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"SOTD_LOG_FORMAT" env-default:"text"`
}

// CatalogPath returns the file for a catalog kind, or "" for the builtin.
func (c CatalogConfig) CatalogPath(kind string) string {
	if c.Dir == "" {
		return ""
	}
	return filepath.Join(c.Dir, kind+".yaml")
}
