package config

import (
	"os"
	"strings"
	"time"
)

// ServerConfig is the listen-side configuration (spec.md §6).
type ServerConfig struct {
	Bind string `yaml:"bind" mapstructure:"bind"`
}

// UpstreamConfig is the forwarder's target resolver (spec.md §4.7, §5).
type UpstreamConfig struct {
	Address string        `yaml:"address" mapstructure:"address"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// FilteringConfig points at the blocklist source (spec.md §6).
type FilteringConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// LoggingConfig controls the ambient slog setup (SPEC_FULL §4.10).
type LoggingConfig struct {
	Level      string `yaml:"level"      mapstructure:"level"`
	Structured bool   `yaml:"structured" mapstructure:"structured"`
	Format     string `yaml:"format"     mapstructure:"format"` // "text" or "json"
}

// QueryLogConfig controls the optional SQLite event log (SPEC_FULL §4.14).
type QueryLogConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path"    mapstructure:"path"`
}

// AdminConfig controls the optional read-only HTTP API (SPEC_FULL §4.15).
type AdminConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Bind    string `yaml:"bind"    mapstructure:"bind"`
}

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"     mapstructure:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"   mapstructure:"upstream"`
	Filtering FilteringConfig `yaml:"filtering"  mapstructure:"filtering"`
	Logging   LoggingConfig   `yaml:"logging"    mapstructure:"logging"`
	QueryLog  QueryLogConfig  `yaml:"query_log"  mapstructure:"query_log"`
	Admin     AdminConfig     `yaml:"admin"      mapstructure:"admin"`
}

// ResolveConfigPath prefers an explicit flag value, then NOXDNS_CONFIG.
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv("NOXDNS_CONFIG")); v != "" {
		return v
	}
	return ""
}
