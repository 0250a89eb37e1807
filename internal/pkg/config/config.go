package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Overpass  OverpassConfig  `mapstructure:"overpass"`
	News      NewsConfig      `mapstructure:"news"`
	Location  LocationConfig  `mapstructure:"location"`
	Tracking  TrackingConfig  `mapstructure:"tracking"`
	Map       MapConfig       `mapstructure:"map"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type OverpassConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type NewsConfig struct {
	URL            string `mapstructure:"url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RefreshMinutes int    `mapstructure:"refresh_minutes"`
}

type LocationConfig struct {
	URL            string  `mapstructure:"url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	DefaultLat     float64 `mapstructure:"default_lat"`
	DefaultLon     float64 `mapstructure:"default_lon"`
}

type TrackingConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

type MapConfig struct {
	DefaultZoom   int     `mapstructure:"default_zoom"`
	ServiceRadius float64 `mapstructure:"service_radius_meters"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("overpass.url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_seconds", 10)
	v.SetDefault("news.url", "https://newsapi.org/v2/everything")
	v.SetDefault("news.api_key", "")
	v.SetDefault("news.timeout_seconds", 10)
	v.SetDefault("news.refresh_minutes", 0) // 0 disables auto-refresh
	v.SetDefault("location.url", "http://ip-api.com/json/")
	v.SetDefault("location.timeout_seconds", 5)
	// Johannesburg, the default map view.
	v.SetDefault("location.default_lat", -26.2041)
	v.SetDefault("location.default_lon", 28.0473)
	v.SetDefault("tracking.interval_seconds", 5)
	v.SetDefault("map.default_zoom", 12)
	v.SetDefault("map.service_radius_meters", 5000)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SAFETY_NEWS_API_KEY → news.api_key
	v.SetEnvPrefix("SAFETY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Overpass.URL == "" {
		errs = append(errs, "overpass.url is required")
	}
	if c.News.URL == "" {
		errs = append(errs, "news.url is required")
	}
	if c.Location.URL == "" {
		errs = append(errs, "location.url is required")
	}
	if lat := c.Location.DefaultLat; lat < -90 || lat > 90 {
		errs = append(errs, fmt.Sprintf("location.default_lat out of range: %f", lat))
	}
	if lon := c.Location.DefaultLon; lon < -180 || lon > 180 {
		errs = append(errs, fmt.Sprintf("location.default_lon out of range: %f", lon))
	}
	if c.Tracking.IntervalSeconds <= 0 {
		errs = append(errs, "tracking.interval_seconds must be positive")
	}
	if c.Map.ServiceRadius <= 0 {
		errs = append(errs, "map.service_radius_meters must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
