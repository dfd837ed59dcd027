package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Server        ServerConfig `yaml:"server"`
	MQTT          MQTTConfig   `yaml:"mqtt,omitempty"`
	HomeAssistant HAConfig     `yaml:"home_assistant,omitempty"`
	Import        ImportConfig `yaml:"import,omitempty"`
	Debug         bool         `yaml:"debug,omitempty" env:"CARBONFORM_DEBUG"`
}

// ServerConfig holds the web form server settings
type ServerConfig struct {
	ListenAddr   string        `yaml:"listen_addr,omitempty" env:"CARBONFORM_LISTEN_ADDR"`     // e.g., ":8080"
	ComputeDelay time.Duration `yaml:"compute_delay,omitempty" env:"CARBONFORM_COMPUTE_DELAY"` // Loading state shown before results
	PublicURL    string        `yaml:"public_url,omitempty" env:"CARBONFORM_PUBLIC_URL"`       // Base URL used by snapshot
	AssetsHost   string        `yaml:"assets_host,omitempty" env:"CARBONFORM_ASSETS_HOST"`     // Where echarts.min.js is served from
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled" env:"CARBONFORM_MQTT_ENABLED"`
	Broker      string `yaml:"broker" env:"CARBONFORM_MQTT_BROKER"` // host:port
	Username    string `yaml:"username,omitempty" env:"CARBONFORM_MQTT_USERNAME"`
	Password    string `yaml:"password,omitempty" env:"CARBONFORM_MQTT_PASSWORD"`
	TopicPrefix string `yaml:"topic_prefix,omitempty" env:"CARBONFORM_MQTT_TOPIC_PREFIX"`
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled" env:"CARBONFORM_HA_ENABLED"`
	URL      string `yaml:"url" env:"CARBONFORM_HA_URL"`             // e.g., "http://homeassistant.local:8123"
	Token    string `yaml:"token" env:"CARBONFORM_HA_TOKEN"`         // Long-lived access token
	EntityID string `yaml:"entity_id" env:"CARBONFORM_HA_ENTITY_ID"` // e.g., "sensor.business_annual_emissions"
}

// ImportConfig controls conversion of daily usage databases into monthly entries
type ImportConfig struct {
	Service string  `yaml:"service,omitempty" env:"CARBONFORM_IMPORT_SERVICE"` // e.g., "nyseg"
	Rate    float64 `yaml:"rate,omitempty" env:"CARBONFORM_IMPORT_RATE"`       // Cost per kWh
}

// Load reads the config file, then applies CARBONFORM_* environment overrides.
// A missing file yields a config built from the environment alone.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("reading environment: %w", err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetListenAddr returns the server listen address with a default of :8080
func (c *Config) GetListenAddr() string {
	if c.Server.ListenAddr == "" {
		return ":8080"
	}
	return c.Server.ListenAddr
}

// GetComputeDelay returns the loading delay before results, default 1s.
// A negative value disables the delay.
func (c *Config) GetComputeDelay() time.Duration {
	switch {
	case c.Server.ComputeDelay < 0:
		return 0
	case c.Server.ComputeDelay == 0:
		return time.Second
	default:
		return c.Server.ComputeDelay
	}
}

// GetPublicURL returns the base URL of the running server
func (c *Config) GetPublicURL() string {
	if c.Server.PublicURL != "" {
		return c.Server.PublicURL
	}
	addr := c.GetListenAddr()
	if addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// GetAssetsHost returns where chart scripts are loaded from, or "" for the default
func (c *Config) GetAssetsHost() string {
	return c.Server.AssetsHost
}

// GetTopicPrefix returns the MQTT topic prefix, default "carbonform"
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "carbonform"
	}
	return c.MQTT.TopicPrefix
}

// GetImportService returns the usage service to import, default "nyseg"
func (c *Config) GetImportService() string {
	if c.Import.Service == "" {
		return "nyseg"
	}
	return c.Import.Service
}

// GetImportRate returns the cost per kWh for imported usage, default 0.15
func (c *Config) GetImportRate() float64 {
	if c.Import.Rate <= 0 {
		return 0.15
	}
	return c.Import.Rate
}
