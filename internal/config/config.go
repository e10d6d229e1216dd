// Package config loads noxdns configuration from CLI flags, NOXDNS_*
// environment variables, a YAML file, and hardcoded defaults, in that
// priority order (highest first; viper ranks environment variables above
// the config file). Grounded on the teacher's internal/config: a
// viper.Viper set up with defaults and env binding, then read into a typed
// struct and validated once at startup.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// initConfig sets up the viper loader with defaults, env binding, and an
// optional config file, mirroring the teacher's initConfig.
func initConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NOXDNS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.bind", "0.0.0.0:53")
	v.SetDefault("upstream.address", "8.8.8.8:53")
	v.SetDefault("upstream.timeout", "5s")
	v.SetDefault("filtering.file", "blocklist.txt")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.structured", true)
	v.SetDefault("logging.format", "text")
	v.SetDefault("query_log.enabled", false)
	v.SetDefault("query_log.path", "noxdns-query.db")
	v.SetDefault("admin.enabled", false)
	v.SetDefault("admin.bind", "127.0.0.1:8080")
}

// Overrides carries the CLI flag values (SPEC_FULL §6). A zero value means
// "flag not set", so it never masks a file/env/default value; Load applies
// these last, so they always win.
type Overrides struct {
	ConfigPath string
	Bind       string
	Upstream   string
	File       string
	QueryLog   string
	AdminBind  string
	LogLevel   string
	LogJSON    bool
}

// Load builds a Config from NOXDNS_* environment variables, then
// o.ConfigPath (if set), then defaults, each consulted only where the one
// before it has no value, and then applies o's CLI flags on top.
func Load(o Overrides) (*Config, error) {
	v, err := initConfig(o.ConfigPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	loadServerConfig(v, cfg)
	loadUpstreamConfig(v, cfg)
	loadFilteringConfig(v, cfg)
	loadLoggingConfig(v, cfg)
	loadQueryLogConfig(v, cfg)
	loadAdminConfig(v, cfg)

	applyOverrides(cfg, o)

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadServerConfig(v *viper.Viper, cfg *Config) {
	cfg.Server.Bind = v.GetString("server.bind")
}

func loadUpstreamConfig(v *viper.Viper, cfg *Config) {
	cfg.Upstream.Address = v.GetString("upstream.address")
	cfg.Upstream.Timeout = v.GetDuration("upstream.timeout")
}

func loadFilteringConfig(v *viper.Viper, cfg *Config) {
	cfg.Filtering.File = v.GetString("filtering.file")
}

func loadLoggingConfig(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = strings.ToLower(v.GetString("logging.level"))
	cfg.Logging.Structured = v.GetBool("logging.structured")
	cfg.Logging.Format = v.GetString("logging.format")
}

func loadQueryLogConfig(v *viper.Viper, cfg *Config) {
	cfg.QueryLog.Enabled = v.GetBool("query_log.enabled")
	cfg.QueryLog.Path = v.GetString("query_log.path")
}

func loadAdminConfig(v *viper.Viper, cfg *Config) {
	cfg.Admin.Enabled = v.GetBool("admin.enabled")
	cfg.Admin.Bind = v.GetString("admin.bind")
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.Bind != "" {
		cfg.Server.Bind = o.Bind
	}
	if o.Upstream != "" {
		cfg.Upstream.Address = o.Upstream
	}
	if o.File != "" {
		cfg.Filtering.File = o.File
	}
	if o.QueryLog != "" {
		cfg.QueryLog.Enabled = true
		cfg.QueryLog.Path = o.QueryLog
	}
	if o.AdminBind != "" {
		cfg.Admin.Enabled = true
		cfg.Admin.Bind = o.AdminBind
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogJSON {
		cfg.Logging.Format = "json"
	}
}

// normalizeConfig validates the loaded configuration, mirroring the
// teacher's fail-fast-at-load-time contract.
func normalizeConfig(cfg *Config) error {
	if err := validateHostPort("server.bind", cfg.Server.Bind); err != nil {
		return err
	}
	if err := validateHostPort("upstream.address", cfg.Upstream.Address); err != nil {
		return err
	}
	if cfg.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive, got %s", cfg.Upstream.Timeout)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Admin.Enabled {
		if err := validateHostPort("admin.bind", cfg.Admin.Bind); err != nil {
			return err
		}
	}
	return nil
}

func validateHostPort(field, addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s must be host:port, got %q: %w", field, addr, err)
	}
	return nil
}
