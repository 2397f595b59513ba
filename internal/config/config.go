package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// ───── Runtime ─────
	ServiceName    string        `env:"SERVICE_NAME" envDefault:"freebook"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	ObsHTTPAddr    string        `env:"OBS_HTTP_ADDR" envDefault:":8090"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`

	// ───── Storage ─────
	StoreDriver string        `env:"STORE_DRIVER" envDefault:"mongo"`
	Mongo       MongoConfig   `envPrefix:"MONGO_"`
	Redis       RedisConfig   `envPrefix:"REDIS_"`
	S3          S3Config      `envPrefix:"S3_"`
	Kafka       KafkaConfig   `envPrefix:"KAFKA_"`
	JWT         JWTConfig     `envPrefix:"JWT_"`
	RateLimit   RateLimitConf `envPrefix:"AUTH_RATE_"`

	// ───── Observability ─────
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"false"`
	JaegerURL      string `env:"JAEGER_URL" envDefault:"http://localhost:14268/api/traces"`
}

type MongoConfig struct {
	URI      string `env:"URI" envDefault:"mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"DATABASE" envDefault:"freebook"`
}

type RedisConfig struct {
	// Empty address disables the profile cache.
	Addr       string        `env:"ADDR"`
	ProfileTTL time.Duration `env:"PROFILE_TTL" envDefault:"1h"`
}

type S3Config struct {
	// Empty endpoint disables image uploads.
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET" envDefault:"freebook"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
	PublicURL string `env:"PUBLIC_URL"`
}

type KafkaConfig struct {
	// Empty broker list keeps events in the outbox without publishing them.
	Brokers      []string      `env:"BROKERS" envSeparator:","`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
	BatchSize    int           `env:"BATCH_SIZE" envDefault:"50"`
}

type JWTConfig struct {
	Secret    string        `env:"SECRET,required"`
	Issuer    string        `env:"ISSUER" envDefault:"freebook-auth"`
	Audience  string        `env:"AUDIENCE" envDefault:"freebook-clients"`
	AccessTTL time.Duration `env:"ACCESS_TTL" envDefault:"24h"`
}

type RateLimitConf struct {
	Requests int           `env:"LIMIT" envDefault:"10"`
	Window   time.Duration `env:"WINDOW" envDefault:"1m"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.HTTPAddr = fixPort(cfg.HTTPAddr)
	cfg.ObsHTTPAddr = fixPort(cfg.ObsHTTPAddr)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}

	switch cfg.StoreDriver {
	case "mongo", "memory":
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

func fixPort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
