package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Smart City core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	City     CityConfig     `yaml:"city"`
	Access   AccessConfig   `yaml:"access"`
	Proxies  ProxiesConfig  `yaml:"proxies"`
	External ExternalConfig `yaml:"external"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CityConfig describes the municipal system configuration handed to the
// SystemConfig director at startup.
type CityConfig struct {
	// Preset selects a director recipe: minimal, full, eco, security or custom.
	Preset       string                    `yaml:"preset"`
	Name         string                    `yaml:"name"`
	Timezone     string                    `yaml:"timezone"`
	EnergySaving bool                      `yaml:"energy_saving"`
	Subsystems   map[string]map[string]any `yaml:"subsystems"` // only honoured by the custom preset
	Thresholds   ThresholdsConfig          `yaml:"thresholds"`
}

// ThresholdsConfig contains alert thresholds. Zero values keep the builder defaults.
type ThresholdsConfig struct {
	TemperatureMin *float64 `yaml:"temperature_min"`
	TemperatureMax *float64 `yaml:"temperature_max"`
	MaxEnergy      float64  `yaml:"max_energy"`
	MaxTraffic     float64  `yaml:"max_traffic"`
}

// AccessConfig contains the in-memory users seeded into access control.
type AccessConfig struct {
	Users []UserConfig `yaml:"users"`
}

// UserConfig is one seeded account. Passwords are hashed on load and never kept.
type UserConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// ProxiesConfig maps a subsystem category to the decorators wrapped around it.
type ProxiesConfig map[string]ProxyConfig

// ProxyConfig selects the decorators for one subsystem.
type ProxyConfig struct {
	Protect    bool          `yaml:"protect"`
	Log        bool          `yaml:"log"`
	Cache      bool          `yaml:"cache"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
	StatusTTL  time.Duration `yaml:"status_ttl"`
	DevicesTTL time.Duration `yaml:"devices_ttl"`
}

// ExternalConfig contains settings for the simulated external services.
type ExternalConfig struct {
	Weather   WeatherConfig   `yaml:"weather"`
	Traffic   TrafficConfig   `yaml:"traffic"`
	Emergency EmergencyConfig `yaml:"emergency"`
}

// WeatherConfig selects the weather adapter.
type WeatherConfig struct {
	Kind     string `yaml:"kind"` // legacy or modern
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
}

// TrafficConfig contains the traffic feed address.
type TrafficConfig struct {
	URL string `yaml:"url"`
}

// EmergencyConfig identifies the emergency dispatch system.
type EmergencyConfig struct {
	SystemID string `yaml:"system_id"`
}

// DatabaseConfig contains SQLite settings for the audit export.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool                 `yaml:"enabled"`
	Embedded    EmbeddedBrokerConfig `yaml:"embedded"`
	Broker      MQTTBrokerConfig     `yaml:"broker"`
	Auth        MQTTAuthConfig       `yaml:"auth"`
	QoS         int                  `yaml:"qos"`
	TopicPrefix string               `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig  `yaml:"reconnect"`
}

// EmbeddedBrokerConfig runs an in-process broker so the alert bus works
// without external infrastructure.
type EmbeddedBrokerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings for sensor telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains HTTP status API settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	JWT      JWTConfig        `yaml:"jwt"`
}

// JWTConfig contains bearer token settings for the mutating API routes.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"` // minutes
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SMARTCITY_SECTION_KEY
// For example: SMARTCITY_CITY_NAME, SMARTCITY_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults. It is also used when the
// binary runs without a config file.
func Default() *Config {
	return &Config{
		City: CityConfig{
			Preset:   "full",
			Name:     "SmartCity",
			Timezone: "UTC",
		},
		Access: AccessConfig{
			Users: []UserConfig{
				{Username: "admin", Password: "admin123", Role: "admin"},
				{Username: "operator", Password: "oper123", Role: "operator"},
				{Username: "viewer", Password: "view123", Role: "viewer"},
			},
		},
		Proxies: ProxiesConfig{
			"security": {Protect: true, Log: true, Cache: true},
		},
		External: ExternalConfig{
			Weather:   WeatherConfig{Kind: "legacy", APIKey: "API-KEY-12345"},
			Traffic:   TrafficConfig{URL: "https://traffic.api.example.com"},
			Emergency: EmergencyConfig{SystemID: "EMS-01"},
		},
		Database: DatabaseConfig{
			Path:        "./data/smartcity.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Embedded: EmbeddedBrokerConfig{Address: "127.0.0.1:1883"},
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "smartcity-core",
			},
			QoS:         1,
			TopicPrefix: "smartcity",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			JWT: JWTConfig{AccessTokenTTL: 15},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SMARTCITY_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// City
	if v := os.Getenv("SMARTCITY_CITY_NAME"); v != "" {
		cfg.City.Name = v
	}
	if v := os.Getenv("SMARTCITY_CITY_PRESET"); v != "" {
		cfg.City.Preset = v
	}

	// Logging
	if v := os.Getenv("SMARTCITY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Database
	if v := os.Getenv("SMARTCITY_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("SMARTCITY_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SMARTCITY_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SMARTCITY_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("SMARTCITY_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// API
	if v := os.Getenv("SMARTCITY_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}
	// API - JWT secret (always override in production)
	if v := os.Getenv("SMARTCITY_API_JWT_SECRET"); v != "" {
		cfg.API.JWT.Secret = v
	}
}

// minJWTSecretLength is the shortest accepted HS256 signing secret.
const minJWTSecretLength = 32

// validRoles mirrors auth.Role without importing the domain package.
var validRoles = map[string]bool{"admin": true, "operator": true, "viewer": true}

// validCategories mirrors subsystem.Category without importing the domain package.
var validCategories = map[string]bool{"transport": true, "lighting": true, "security": true, "energy": true}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	switch c.City.Preset {
	case "minimal", "full", "eco", "security", "custom":
	default:
		errs = append(errs, fmt.Sprintf("city.preset %q must be minimal, full, eco, security or custom", c.City.Preset))
	}
	for name := range c.City.Subsystems {
		if !validCategories[name] {
			errs = append(errs, fmt.Sprintf("city.subsystems: unknown subsystem %q", name))
		}
	}

	seen := make(map[string]bool, len(c.Access.Users))
	for i, u := range c.Access.Users {
		if u.Username == "" {
			errs = append(errs, fmt.Sprintf("access.users[%d].username is required", i))
		}
		if seen[u.Username] {
			errs = append(errs, fmt.Sprintf("access.users[%d]: duplicate username %q", i, u.Username))
		}
		seen[u.Username] = true
		if !validRoles[u.Role] {
			errs = append(errs, fmt.Sprintf("access.users[%d].role %q must be admin, operator or viewer", i, u.Role))
		}
	}

	for name, p := range c.Proxies {
		if !validCategories[name] {
			errs = append(errs, fmt.Sprintf("proxies: unknown subsystem %q", name))
		}
		if p.DefaultTTL < 0 || p.StatusTTL < 0 || p.DevicesTTL < 0 {
			errs = append(errs, fmt.Sprintf("proxies.%s: ttl values must not be negative", name))
		}
	}

	switch c.External.Weather.Kind {
	case "legacy", "modern":
	default:
		errs = append(errs, "external.weather.kind must be legacy or modern")
	}

	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when the audit export is enabled")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.API.Enabled {
		if c.API.JWT.Secret == "" {
			errs = append(errs, "api.jwt.secret is required when the api is enabled (set SMARTCITY_API_JWT_SECRET)")
		} else if len(c.API.JWT.Secret) < minJWTSecretLength {
			errs = append(errs, fmt.Sprintf("api.jwt.secret must be at least %d characters", minJWTSecretLength))
		}
	}
	if c.API.JWT.AccessTokenTTL < 0 {
		errs = append(errs, "api.jwt.access_token_ttl must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetAccessTokenTTL returns the bearer token lifetime as a Duration.
func (c APIConfig) GetAccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenTTL) * time.Minute
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}
