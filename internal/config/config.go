package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Session    SessionConfig
	App        AppConfig
	Storage    StorageConfig
	Geo        GeoConfig
	Onboarding OnboardingConfig
}

type ServerConfig struct {
	Port    string `envconfig:"API_PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`
}

type DatabaseConfig struct {
	URL      string `envconfig:"DATABASE_URL" required:"true"`
	MaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"20"`
	MinConns int32  `envconfig:"DATABASE_MIN_CONNS" default:"2"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type JWTConfig struct {
	Secret          string `envconfig:"JWT_SECRET" required:"true"`
	ExpirationHours int    `envconfig:"JWT_EXPIRATION_HOURS" default:"24"`
}

type SessionConfig struct {
	Secret string `envconfig:"SESSION_SECRET" required:"true"`
	Name   string `envconfig:"SESSION_NAME" default:"corre-aqui-session"`
	Secure bool   `envconfig:"SESSION_SECURE" default:"false"`
}

type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type StorageConfig struct {
	Driver      string `envconfig:"STORAGE_DRIVER" default:"local"`
	UploadsPath string `envconfig:"UPLOADS_PATH" default:"./uploads"`
	// AWS S3
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSBucket          string `envconfig:"AWS_BUCKET"`
	// Cloudflare R2
	R2AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2AccountID       string `envconfig:"R2_ACCOUNT_ID"`
	R2Bucket          string `envconfig:"R2_BUCKET"`
	R2PublicURL       string `envconfig:"R2_PUBLIC_URL"`
}

type GeoConfig struct {
	GeocoderURL       string        `envconfig:"GEOCODER_URL" default:"https://nominatim.openstreetmap.org"`
	GeocoderUserAgent string        `envconfig:"GEOCODER_USER_AGENT" default:"CorreAqui (contact@correaqui.com)"`
	PostalLookupURL   string        `envconfig:"POSTAL_LOOKUP_URL" default:"https://viacep.com.br"`
	Timeout           time.Duration `envconfig:"GEO_HTTP_TIMEOUT" default:"10s"`
	PostalCacheTTL    time.Duration `envconfig:"POSTAL_CACHE_TTL" default:"168h"`
}

type OnboardingConfig struct {
	Variant  string        `envconfig:"WIZARD_VARIANT" default:"three-step"`
	StateTTL time.Duration `envconfig:"WIZARD_STATE_TTL" default:"24h"`
	LockTTL  time.Duration `envconfig:"WIZARD_LOCK_TTL" default:"30s"`
}

// Load reads an optional .env file and then the process environment.
// Missing required variables are reported as an error.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	// envconfig accepts a variable that is set but empty
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if c.JWT.Secret == "" || c.Session.Secret == "" {
		return fmt.Errorf("JWT_SECRET and SESSION_SECRET must not be empty")
	}

	switch c.Storage.Driver {
	case "local", "s3", "r2":
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}

	switch c.Onboarding.Variant {
	case "two-step", "three-step", "four-step":
	default:
		return fmt.Errorf("unsupported wizard variant: %s", c.Onboarding.Variant)
	}

	if c.JWT.ExpirationHours <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be positive")
	}

	return nil
}

// IsProduction reports whether the app runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
