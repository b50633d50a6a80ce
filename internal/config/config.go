// Package config assembles the acquisition settings from the environment.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"climate/internal/env"
	"climate/pkg/thermal"
	"climate/pkg/transfer"
	"climate/pkg/weather"
)

// MaxGridBudget caps GRID_BUDGET; each unit is one weather request.
const MaxGridBudget = 10000

type Config struct {
	Gazetteer GazetteerConfig
	Thermal   ThermalConfig
	Weather   WeatherConfig
	Transfer  TransferConfig
	Kafka     KafkaConfig

	// MetricsAddr, when set, is where the watcher serves /metrics.
	MetricsAddr string

	// GeocoderFallback enables the Nominatim lookup for names missing from
	// the gazetteer.
	GeocoderFallback bool
}

type GazetteerConfig struct {
	Path string
	// Bucket and Object locate a copy in object storage used when Path is
	// missing locally.
	Bucket, Object string
	MinIO          MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

type ThermalConfig struct {
	Path     string
	Endpoint string
	Layer    string
	Width    int
	Height   int
	Radius   int
}

type WeatherConfig struct {
	Path       string
	Endpoint   string
	GridBudget int
	// GridStep of zero derives the step from GridBudget.
	GridStep float64
}

type TransferConfig struct {
	MaxInFlight    int
	PollInterval   time.Duration
	RequestTimeout time.Duration
	UserAgent      string
}

type KafkaConfig struct {
	Broker       string
	Topic        string
	RequestTopic string
	GroupID      string
}

// Enabled reports whether events should be published.
func (k KafkaConfig) Enabled() bool { return k.Broker != "" && k.Topic != "" }

// Load reads the configuration from environment variables, applying
// defaults for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		Gazetteer: GazetteerConfig{
			Path:   env.Get("GAZETTEER_PATH", "data/worldcities.csv"),
			Bucket: env.Get("GAZETTEER_BUCKET", ""),
			Object: env.Get("GAZETTEER_OBJECT", "worldcities.csv"),
			MinIO: MinIOConfig{
				Endpoint:  env.Get("MINIO_ENDPOINT", ""),
				AccessKey: env.Get("MINIO_ACCESS_KEY", ""),
				SecretKey: env.Get("MINIO_SECRET_KEY", ""),
				UseSSL:    env.Bool("MINIO_USE_SSL", false),
			},
		},
		Thermal: ThermalConfig{
			Path:     env.Get("THERMAL_PATH", "thermalImage.png"),
			Endpoint: env.Get("THERMAL_ENDPOINT", thermal.DefaultEndpoint),
			Layer:    env.Get("THERMAL_LAYER", thermal.DefaultLayer),
			Width:    env.Int("THERMAL_WIDTH", thermal.DefaultWidth),
			Height:   env.Int("THERMAL_HEIGHT", thermal.DefaultHeight),
			Radius:   env.Int("CORRELATION_RADIUS", thermal.DefaultRadius),
		},
		Weather: WeatherConfig{
			Path:       env.Get("WEATHER_PATH", "weatherData.ndjson"),
			Endpoint:   env.Get("WEATHER_ENDPOINT", weather.DefaultEndpoint),
			GridBudget: env.Int("GRID_BUDGET", 400),
			GridStep:   env.Float("GRID_STEP", 0),
		},
		Transfer: TransferConfig{
			MaxInFlight:    env.Int("MAX_IN_FLIGHT", transfer.DefaultMaxInFlight),
			PollInterval:   env.Duration("POLL_INTERVAL", transfer.DefaultPollInterval),
			RequestTimeout: env.Duration("REQUEST_TIMEOUT", 30*time.Second),
			UserAgent:      env.Get("USER_AGENT", "climate-acquire/1.0"),
		},
		Kafka: KafkaConfig{
			Broker:       env.Get("KAFKA_BROKER", ""),
			Topic:        env.Get("KAFKA_TOPIC", ""),
			RequestTopic: env.Get("KAFKA_REQUEST_TOPIC", ""),
			GroupID:      env.Get("KAFKA_GROUP_ID", "climate-watcher"),
		},
		MetricsAddr:      env.Get("METRICS_ADDR", ""),
		GeocoderFallback: env.Bool("GEOCODER_FALLBACK", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Gazetteer.Path == "" {
		errs = append(errs, "GAZETTEER_PATH is required")
	}
	if c.Gazetteer.Bucket != "" && (c.Gazetteer.MinIO.Endpoint == "" || c.Gazetteer.MinIO.AccessKey == "" || c.Gazetteer.MinIO.SecretKey == "") {
		errs = append(errs, "GAZETTEER_BUCKET requires MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY")
	}
	if c.Thermal.Path == "" || c.Weather.Path == "" {
		errs = append(errs, "THERMAL_PATH and WEATHER_PATH are required")
	}
	if c.Thermal.Width <= 0 || c.Thermal.Height <= 0 {
		errs = append(errs, fmt.Sprintf("thermal size must be positive, got %dx%d", c.Thermal.Width, c.Thermal.Height))
	}
	if c.Thermal.Radius <= 0 {
		errs = append(errs, fmt.Sprintf("CORRELATION_RADIUS must be positive, got %d", c.Thermal.Radius))
	}
	if c.Weather.GridBudget < 0 || c.Weather.GridBudget > MaxGridBudget {
		errs = append(errs, fmt.Sprintf("GRID_BUDGET must be between 0 and %d, got %d", MaxGridBudget, c.Weather.GridBudget))
	}
	if step := c.Weather.GridStep; step < 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		errs = append(errs, fmt.Sprintf("GRID_STEP must be a finite non-negative number, got %v", step))
	}
	if c.Transfer.PollInterval <= 0 {
		errs = append(errs, "POLL_INTERVAL must be positive")
	}
	if c.Transfer.RequestTimeout <= 0 {
		errs = append(errs, "REQUEST_TIMEOUT must be positive")
	}
	if c.Kafka.Broker != "" && c.Kafka.Topic == "" && c.Kafka.RequestTopic == "" {
		errs = append(errs, "KAFKA_BROKER set without KAFKA_TOPIC or KAFKA_REQUEST_TOPIC")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
