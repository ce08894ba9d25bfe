//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/sounds",
			expected: filepath.Join(home, "sounds"),
		},
		{
			name:     "tilde with nested path",
			input:    "~/device/storage.yaml",
			expected: filepath.Join(home, "device", "storage.yaml"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/media/sdcard",
			expected: "/media/sdcard",
		},
		{
			name:     "relative path unchanged",
			input:    "storage.yaml",
			expected: "storage.yaml",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) != 2 {
		t.Fatalf("getConfigPaths() = %v, want 2 paths", paths)
	}
	if want := filepath.Join(xdg.ConfigHome, "mediastore", "config.toml"); paths[0] != want {
		t.Errorf("first config path = %q, want %q", paths[0], want)
	}
	if paths[1] != "config.toml" {
		t.Errorf("last config path = %q, want %q", paths[1], "config.toml")
	}
}

func TestGetLogConfig(t *testing.T) {
	tests := []struct {
		name string
		in   LogConfig
		want LogConfig
	}{
		{"defaults", LogConfig{}, LogConfig{Level: "info", Format: "console"}},
		{"json debug", LogConfig{Level: "debug", Format: "json"}, LogConfig{Level: "debug", Format: "json"}},
		{"unknown level", LogConfig{Level: "loud", Format: "xml"}, LogConfig{Level: "info", Format: "console"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Log: tt.in}
			if got := cfg.GetLogConfig(); got != tt.want {
				t.Errorf("GetLogConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetPlayerConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	got := cfg.GetPlayerConfig()
	if got.BufferMS != 100 {
		t.Errorf("BufferMS = %d, want 100", got.BufferMS)
	}
	if got.Volume != 1 {
		t.Errorf("Volume = %v, want 1", got.Volume)
	}
	if got.Buffer().Milliseconds() != 100 {
		t.Errorf("Buffer() = %v, want 100ms", got.Buffer())
	}

	cfg.Player = PlayerConfig{BufferMS: 250, Volume: 0.5}
	got = cfg.GetPlayerConfig()
	if got.BufferMS != 250 || got.Volume != 0.5 {
		t.Errorf("GetPlayerConfig() = %+v, want custom values kept", got)
	}

	cfg.Player = PlayerConfig{Volume: 3}
	if got := cfg.GetPlayerConfig(); got.Volume != 1 {
		t.Errorf("Volume = %v, want 1 for out-of-range input", got.Volume)
	}
}

func TestGetSDCardConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetSDCardConfig().MaxOpenFiles; got != 5 {
		t.Errorf("MaxOpenFiles = %d, want 5", got)
	}
	if got := cfg.GetSDCardConfig().ReportInterval(); got != time.Minute {
		t.Errorf("ReportInterval() = %v, want 1m", got)
	}
	if cfg.HasSDCard() {
		t.Error("HasSDCard() = true with no mount point")
	}
}

func TestGetMQTTConfig(t *testing.T) {
	cfg := &Config{}
	if cfg.HasMQTT() {
		t.Error("HasMQTT() = true with no broker")
	}

	got := cfg.GetMQTTConfig()
	if got.ClientID != "mediastore" || got.TopicPrefix != "mediastore" {
		t.Errorf("defaults = %+v", got)
	}
	if *got.QoS != 1 || !*got.Retain {
		t.Errorf("QoS = %d, Retain = %v, want 1, true", *got.QoS, *got.Retain)
	}

	qos, retain := 0, false
	cfg.MQTT = MQTTConfig{TopicPrefix: "/home/kitchen/", QoS: &qos, Retain: &retain}
	got = cfg.GetMQTTConfig()
	if got.TopicPrefix != "home/kitchen" {
		t.Errorf("TopicPrefix = %q, want home/kitchen", got.TopicPrefix)
	}
	if *got.QoS != 0 || *got.Retain {
		t.Errorf("explicit zero values should be kept, got QoS=%d Retain=%v", *got.QoS, *got.Retain)
	}
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	return tmpDir
}

func TestLoad_EmptyConfig(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile("config.toml", []byte(""), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	// Values may be inherited from the user's config file if it exists.
}

func TestLoad_BasicConfig(t *testing.T) {
	chdirTemp(t)

	configContent := `
manifest = "~/device/storage.yaml"

[log]
level = "DEBUG"
format = "json"

[sd_card]
mount_point = "/media/card"
max_open_files = 3
watch_files = ["/logs/events.csv", "/music/playlist.m3u"]
report_interval = 15

[player]
buffer_ms = 200

[mqtt]
broker = "tcp://localhost:1883/"
topic_prefix = "kitchen"
`
	if err := os.WriteFile("config.toml", []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "device", "storage.yaml"); cfg.Manifest != want {
		t.Errorf("Manifest = %q, want %q", cfg.Manifest, want)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.SDCard.MountPoint != "/media/card" || cfg.GetSDCardConfig().MaxOpenFiles != 3 {
		t.Errorf("SDCard = %+v", cfg.SDCard)
	}
	sd := cfg.GetSDCardConfig()
	if len(sd.WatchFiles) != 2 || sd.WatchFiles[0] != "/logs/events.csv" {
		t.Errorf("SDCard.WatchFiles = %v", sd.WatchFiles)
	}
	if sd.ReportInterval() != 15*time.Second {
		t.Errorf("ReportInterval() = %v, want 15s", sd.ReportInterval())
	}
	if cfg.GetPlayerConfig().BufferMS != 200 {
		t.Errorf("Player.BufferMS = %d, want 200", cfg.Player.BufferMS)
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT.Broker = %q, want trailing slash removed", cfg.MQTT.Broker)
	}
	if !cfg.HasMQTT() || !cfg.HasSDCard() {
		t.Error("HasMQTT/HasSDCard should be true")
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "device.toml")
	if err := os.WriteFile(path, []byte(`manifest = "/etc/device/storage.yaml"`), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error = %v", path, err)
	}
	if cfg.Manifest != "/etc/device/storage.yaml" {
		t.Errorf("Manifest = %q", cfg.Manifest)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Load() with a missing explicit file should fail")
	}
}

func TestLoad_DefaultManifest(t *testing.T) {
	dir := chdirTemp(t)
	cfg, err := Load(writeFile(t, dir, "empty.toml", ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Manifest != "storage.yaml" {
		t.Errorf("Manifest = %q, want storage.yaml", cfg.Manifest)
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile("config.toml", []byte("invalid = [[["), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("could not write %s: %v", name, err)
	}
	return p
}
