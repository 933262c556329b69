// Package config loads process configuration from the environment.
package config

import (
	"time"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/platform"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Forecast   ForecastConfig
	ClickHouse ClickHouseConfig
	Postgres   PostgresConfig
	InfluxDB   InfluxDBConfig
	Kafka      KafkaConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string
	Env             string
	LogLevel        string
	APIKey          string
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// ForecastConfig holds engine and policy settings.
type ForecastConfig struct {
	PoliciesDir string
	// Seed fixes the variance sequence when non-zero.
	Seed       uint64
	NoVariance bool
}

// ClickHouseConfig is empty-Host disabled.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

type PostgresConfig struct {
	DSN string
}

type InfluxDBConfig struct {
	URL    string
	Org    string
	Token  string
	Bucket string
}

// KafkaConfig holds consumer settings for the worker.
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	GroupID       string
	ConsumerCount int
	BatchSize     int
	BatchTimeout  time.Duration
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if _, err := platform.LoadDotEnv(envFiles...); err != nil {
		return nil, err
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from environment variables with defaults.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            platform.GetEnv("PORT", "8080"),
			Env:             platform.GetEnv("ENV", "production"),
			LogLevel:        platform.GetEnv("LOG_LEVEL", "info"),
			APIKey:          platform.GetEnv("API_KEY", ""),
			CORSOrigins:     platform.GetEnvStringSlice("CORS_ORIGINS", []string{"*"}),
			RateLimitRPS:    platform.GetEnvFloat("RATE_LIMIT_RPS", 20),
			RateLimitBurst:  platform.GetEnvInt("RATE_LIMIT_BURST", 40),
			RequestTimeout:  platform.GetEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: platform.GetEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Forecast: ForecastConfig{
			PoliciesDir: platform.GetEnv("POLICIES_DIR", "policies"),
			Seed:        uint64(platform.GetEnvInt64("FORECAST_SEED", 0)),
			NoVariance:  platform.GetEnvBool("FORECAST_NO_VARIANCE", false),
		},
		ClickHouse: ClickHouseConfig{
			Host:     platform.GetEnv("CLICKHOUSE_HOST", ""),
			Port:     platform.GetEnvInt("CLICKHOUSE_PORT", 9000),
			Database: platform.GetEnv("CLICKHOUSE_DATABASE", "energy"),
			Username: platform.GetEnv("CLICKHOUSE_USER", "default"),
			Password: platform.GetEnv("CLICKHOUSE_PASSWORD", ""),
			Debug:    platform.GetEnvBool("CLICKHOUSE_DEBUG", false),
		},
		Postgres: PostgresConfig{
			DSN: platform.GetEnv("POSTGRES_DSN", ""),
		},
		InfluxDB: InfluxDBConfig{
			URL:    platform.GetEnv("INFLUXDB_URL", ""),
			Org:    platform.GetEnv("INFLUXDB_ORG", "energy"),
			Token:  platform.GetEnv("INFLUXDB_TOKEN", ""),
			Bucket: platform.GetEnv("INFLUXDB_BUCKET", "forecasts"),
		},
		Kafka: KafkaConfig{
			Brokers:       platform.GetEnvStringSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:         platform.GetEnv("KAFKA_TOPIC", "energy-prediction-requests"),
			GroupID:       platform.GetEnv("KAFKA_GROUP_ID", "energy-forecast-worker"),
			ConsumerCount: platform.GetEnvInt("KAFKA_CONSUMER_COUNT", 1),
			BatchSize:     platform.GetEnvInt("KAFKA_BATCH_SIZE", 100),
			BatchTimeout:  platform.GetEnvDuration("KAFKA_BATCH_TIMEOUT", time.Second),
		},
	}
}

// IsDevelopment reports whether pretty console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}
