package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "mediastore"

type Config struct {
	// Manifest is the path of the storage manifest (YAML).
	Manifest string `koanf:"manifest"`

	Log    LogConfig    `koanf:"log"`
	SDCard SDCardConfig `koanf:"sd_card"`
	Player PlayerConfig `koanf:"player"`

	// MQTT state publishing (enabled when a broker is configured)
	MQTT MQTTConfig `koanf:"mqtt"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error" (default: "info")
	Format string `koanf:"format"` // "console" or "json" (default: "console")
}

// SDCardConfig describes where the card is mounted.
type SDCardConfig struct {
	MountPoint   string `koanf:"mount_point"`
	MaxOpenFiles int    `koanf:"max_open_files"` // concurrent streams (default: 5)

	// Card telemetry, published over MQTT when a broker is configured.
	WatchFiles        []string `koanf:"watch_files"`     // card paths whose size is reported
	ReportIntervalSec int      `koanf:"report_interval"` // seconds (default: 60)
}

type PlayerConfig struct {
	BufferMS int     `koanf:"buffer_ms"` // speaker buffer (default: 100)
	Volume   float64 `koanf:"volume"`    // 0.0-1.0 (default: 1.0)
}

// MQTTConfig holds the broker connection for playback state publishing.
type MQTTConfig struct {
	Broker      string `koanf:"broker"` // e.g., "tcp://localhost:1883"
	ClientID    string `koanf:"client_id"`
	Username    string `koanf:"username"`
	Password    string `koanf:"password"`
	TopicPrefix string `koanf:"topic_prefix"` // default: "mediastore"
	QoS         *int   `koanf:"qos"`          // 0, 1 or 2 (default: 1)
	Retain      *bool  `koanf:"retain"`       // default: true
}

// Load reads configuration. With no arguments the standard locations are
// searched (last wins); otherwise only the given files are read and each
// must exist.
func Load(paths ...string) (*Config, error) {
	k := koanf.New(".")

	explicit := len(paths) > 0
	if !explicit {
		paths = getConfigPaths()
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if explicit {
				return nil, fmt.Errorf("config %s: %w", path, err)
			}
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Manifest: "storage.yaml",
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Manifest = expandPath(cfg.Manifest)
	cfg.SDCard.MountPoint = expandPath(cfg.SDCard.MountPoint)
	cfg.MQTT.Broker = strings.TrimSuffix(cfg.MQTT.Broker, "/")
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/mediastore/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasSDCard returns true if a card mount point is configured.
func (c *Config) HasSDCard() bool {
	return c.SDCard.MountPoint != ""
}

// HasMQTT returns true if state publishing is configured.
func (c *Config) HasMQTT() bool {
	return c.MQTT.Broker != ""
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	switch cfg.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		cfg.Level = "info"
	}
	if cfg.Format != "json" {
		cfg.Format = "console"
	}
	return cfg
}

// GetSDCardConfig returns the card configuration with defaults applied.
func (c *Config) GetSDCardConfig() SDCardConfig {
	cfg := c.SDCard
	if cfg.MaxOpenFiles <= 0 {
		cfg.MaxOpenFiles = 5
	}
	if cfg.ReportIntervalSec <= 0 {
		cfg.ReportIntervalSec = 60
	}
	return cfg
}

// ReportInterval returns the card telemetry period as a duration.
func (s SDCardConfig) ReportInterval() time.Duration {
	return time.Duration(s.ReportIntervalSec) * time.Second
}

// GetPlayerConfig returns the player configuration with defaults applied.
func (c *Config) GetPlayerConfig() PlayerConfig {
	cfg := c.Player
	if cfg.BufferMS <= 0 {
		cfg.BufferMS = 100
	}
	if cfg.Volume <= 0 || cfg.Volume > 1 {
		cfg.Volume = 1
	}
	return cfg
}

// Buffer returns the speaker buffer as a duration.
func (p PlayerConfig) Buffer() time.Duration {
	return time.Duration(p.BufferMS) * time.Millisecond
}

// GetMQTTConfig returns the MQTT configuration with defaults applied.
func (c *Config) GetMQTTConfig() MQTTConfig {
	cfg := c.MQTT
	if cfg.ClientID == "" {
		cfg.ClientID = appName
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = appName
	}
	cfg.TopicPrefix = strings.Trim(cfg.TopicPrefix, "/")
	if cfg.QoS == nil || *cfg.QoS < 0 || *cfg.QoS > 2 {
		qos := 1
		cfg.QoS = &qos
	}
	if cfg.Retain == nil {
		retain := true
		cfg.Retain = &retain
	}
	return cfg
}
