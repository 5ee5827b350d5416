package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
city:
  preset: eco
  name: "Springfield"
  timezone: "Europe/London"
  thresholds:
    max_traffic: 120
access:
  users:
    - username: chief
      password: s3cret
      role: admin
proxies:
  transport:
    log: true
    cache: true
    status_ttl: 2s
database:
  path: "/tmp/test.db"
mqtt:
  broker:
    host: "localhost"
    port: 1883
  qos: 1
api:
  port: 9090
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.City.Name != "Springfield" {
		t.Errorf("City.Name = %q, want %q", cfg.City.Name, "Springfield")
	}
	if cfg.City.Preset != "eco" {
		t.Errorf("City.Preset = %q, want %q", cfg.City.Preset, "eco")
	}
	if cfg.City.Thresholds.MaxTraffic != 120 {
		t.Errorf("City.Thresholds.MaxTraffic = %v, want 120", cfg.City.Thresholds.MaxTraffic)
	}
	if len(cfg.Access.Users) != 1 || cfg.Access.Users[0].Username != "chief" {
		t.Errorf("Access.Users = %+v, want single chief user", cfg.Access.Users)
	}
	if got := cfg.Proxies["transport"].StatusTTL; got != 2*time.Second {
		t.Errorf("Proxies[transport].StatusTTL = %v, want 2s", got)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	// Untouched sections keep their defaults.
	if cfg.External.Weather.Kind != "legacy" {
		t.Errorf("External.Weather.Kind = %q, want legacy", cfg.External.Weather.Kind)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
city:
  preset: "gigantic"
mqtt:
  qos: 7
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	// Every problem is reported, not just the first.
	if !strings.Contains(err.Error(), "city.preset") || !strings.Contains(err.Error(), "mqtt.qos") {
		t.Errorf("Load() error = %v, want both city.preset and mqtt.qos", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "unknown preset", mutate: func(c *Config) { c.City.Preset = "mega" }, wantErr: true},
		{
			name:    "unknown custom subsystem",
			mutate:  func(c *Config) { c.City.Subsystems = map[string]map[string]any{"water": {}} },
			wantErr: true,
		},
		{
			name:    "user without name",
			mutate:  func(c *Config) { c.Access.Users = []UserConfig{{Role: "viewer"}} },
			wantErr: true,
		},
		{
			name: "duplicate user",
			mutate: func(c *Config) {
				c.Access.Users = []UserConfig{{Username: "a", Role: "viewer"}, {Username: "a", Role: "admin"}}
			},
			wantErr: true,
		},
		{
			name:    "unknown role",
			mutate:  func(c *Config) { c.Access.Users = []UserConfig{{Username: "a", Role: "mayor"}} },
			wantErr: true,
		},
		{
			name:    "proxy for unknown subsystem",
			mutate:  func(c *Config) { c.Proxies = ProxiesConfig{"water": {Log: true}} },
			wantErr: true,
		},
		{
			name:    "negative ttl",
			mutate:  func(c *Config) { c.Proxies = ProxiesConfig{"energy": {Cache: true, StatusTTL: -time.Second}} },
			wantErr: true,
		},
		{name: "unknown weather kind", mutate: func(c *Config) { c.External.Weather.Kind = "psychic" }, wantErr: true},
		{
			name:    "audit enabled without path",
			mutate:  func(c *Config) { c.Database.Enabled = true; c.Database.Path = "" },
			wantErr: true,
		},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: true},
		{
			name:    "influx enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: true,
		},
		{
			name:    "api port out of range",
			mutate:  func(c *Config) { c.API.Enabled = true; c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "api enabled without jwt secret",
			mutate:  func(c *Config) { c.API.Enabled = true },
			wantErr: true,
		},
		{
			name:    "api jwt secret too short",
			mutate:  func(c *Config) { c.API.Enabled = true; c.API.JWT.Secret = "short" },
			wantErr: true,
		},
		{
			name: "api enabled with jwt secret",
			mutate: func(c *Config) {
				c.API.Enabled = true
				c.API.JWT.Secret = "0123456789abcdef0123456789abcdef"
			},
			wantErr: false,
		},
		{
			name:    "negative token ttl",
			mutate:  func(c *Config) { c.API.JWT.AccessTokenTTL = -1 },
			wantErr: true,
		},
		{
			name:    "api port ignored when disabled",
			mutate:  func(c *Config) { c.API.Enabled = false; c.API.Port = 0 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := APIConfig{
		Timeouts: APITimeoutConfig{
			Read:  30,
			Write: 45,
			Idle:  60,
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}

	cfg.JWT.AccessTokenTTL = 15
	if got := cfg.GetAccessTokenTTL().Minutes(); got != 15 {
		t.Errorf("GetAccessTokenTTL() = %v, want 15m", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	t.Setenv("SMARTCITY_CITY_NAME", "Shelbyville")
	t.Setenv("SMARTCITY_CITY_PRESET", "security")
	t.Setenv("SMARTCITY_LOG_LEVEL", "debug")
	t.Setenv("SMARTCITY_DATABASE_PATH", "/custom/path.db")
	t.Setenv("SMARTCITY_MQTT_HOST", "mqtt.example.com")
	t.Setenv("SMARTCITY_MQTT_USERNAME", "testuser")
	t.Setenv("SMARTCITY_MQTT_PASSWORD", "testpass")
	t.Setenv("SMARTCITY_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("SMARTCITY_API_PORT", "9999")
	t.Setenv("SMARTCITY_API_JWT_SECRET", "env-secret-env-secret-env-secret-0")

	applyEnvOverrides(cfg)

	if cfg.API.JWT.Secret != "env-secret-env-secret-env-secret-0" {
		t.Errorf("API.JWT.Secret = %q, want env value", cfg.API.JWT.Secret)
	}

	if cfg.City.Name != "Shelbyville" {
		t.Errorf("City.Name = %q, want %q", cfg.City.Name, "Shelbyville")
	}
	if cfg.City.Preset != "security" {
		t.Errorf("City.Preset = %q, want %q", cfg.City.Preset, "security")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.API.Port != 9999 {
		t.Errorf("API.Port = %d, want 9999", cfg.API.Port)
	}
}

func TestApplyEnvOverrides_BadPortIgnored(t *testing.T) {
	cfg := Default()
	t.Setenv("SMARTCITY_API_PORT", "not-a-port")

	applyEnvOverrides(cfg)

	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want default 8080", cfg.API.Port)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.City.Name != "SmartCity" {
		t.Errorf("Default City.Name = %q, want SmartCity", cfg.City.Name)
	}
	if len(cfg.Access.Users) != 3 {
		t.Errorf("Default Access.Users = %d entries, want 3", len(cfg.Access.Users))
	}
	if !cfg.Proxies["security"].Protect {
		t.Error("Default should protect the security subsystem")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("Default MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Default API.Port = %d, want 8080", cfg.API.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}
