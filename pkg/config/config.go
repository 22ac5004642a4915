// Package config loads the service-level configuration for a recordcache
// deployment: where the Badger data directory lives, whether it runs
// in-memory, and the maintenance cadence. Loaded with viper rather than
// the teacher's own plain encoding/json config loader (pkg/config/config.go
// in the teacher), following the idiom the wider example pack uses for
// CLI-fronted services.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything needed to open and operate a MainEnvironment.
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	InMemory bool   `mapstructure:"in_memory"`

	LogLevel string `mapstructure:"log_level"`

	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// MaintenanceConfig mirrors storage.MaintenanceConfig in a form viper can
// populate from YAML/env, since time.Duration needs string parsing there.
type MaintenanceConfig struct {
	EnableAutoGC       bool    `mapstructure:"enable_auto_gc"`
	GCIntervalSeconds  int     `mapstructure:"gc_interval_seconds"`
	GCDiscardRatio     float64 `mapstructure:"gc_discard_ratio"`
	EnableAutoCompact  bool    `mapstructure:"enable_auto_compaction"`
	CompactIntervalSec int     `mapstructure:"compaction_interval_seconds"`
}

// GCInterval returns the configured GC cadence as a time.Duration.
func (m MaintenanceConfig) GCInterval() time.Duration {
	return time.Duration(m.GCIntervalSeconds) * time.Second
}

// CompactionInterval returns the configured compaction cadence as a
// time.Duration.
func (m MaintenanceConfig) CompactionInterval() time.Duration {
	return time.Duration(m.CompactIntervalSec) * time.Second
}

// Default returns the default configuration: an in-memory environment with
// GC every 5 minutes and compaction every hour, matching the teacher's own
// MaintenanceManager defaults.
func Default() Config {
	return Config{
		InMemory: true,
		LogLevel: "info",
		Maintenance: MaintenanceConfig{
			EnableAutoGC:       true,
			GCIntervalSeconds:  300,
			GCDiscardRatio:     0.5,
			EnableAutoCompact:  true,
			CompactIntervalSec: 3600,
		},
	}
}

// Load starts from the defaults in Default, overrides them with configPath
// (if non-empty), and overrides both with environment variables prefixed
// RECORDCACHE_ (viper gives environment variables precedence over a config
// file).
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("recordcache")
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("in_memory", def.InMemory)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("maintenance.enable_auto_gc", def.Maintenance.EnableAutoGC)
	v.SetDefault("maintenance.gc_interval_seconds", def.Maintenance.GCIntervalSeconds)
	v.SetDefault("maintenance.gc_discard_ratio", def.Maintenance.GCDiscardRatio)
	v.SetDefault("maintenance.enable_auto_compaction", def.Maintenance.EnableAutoCompact)
	v.SetDefault("maintenance.compaction_interval_seconds", def.Maintenance.CompactIntervalSec)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshaling: %w", err)
	}
	if !cfg.InMemory && cfg.DataDir == "" {
		return Config{}, fmt.Errorf("config: data_dir is required when in_memory is false")
	}
	return cfg, nil
}
