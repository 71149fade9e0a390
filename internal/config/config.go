// Package config loads process configuration from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the full process configuration.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	NATS     NATSConfig     `yaml:"nats"`
	Logger   LoggerConfig   `yaml:"logger"`
	Auth     AuthConfig     `yaml:"auth"`
	HTTP     HTTPConfig     `yaml:"http"`
	Listing  ListingConfig  `yaml:"listing"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url" env:"DATABASE_URL" env-required:"true"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
	QueryTimeout    time.Duration `yaml:"query_timeout" env:"DB_QUERY_TIMEOUT" env-default:"5s"`
}

// Storage drivers.
const (
	StorageDisk  = "disk"
	StorageMinio = "minio"
)

type StorageConfig struct {
	Driver       string      `yaml:"driver" env:"STORAGE_DRIVER" env-default:"disk"`
	UploadDir    string      `yaml:"upload_dir" env:"UPLOAD_DIR" env-default:"uploads"`
	PublicPrefix string      `yaml:"public_prefix" env:"UPLOAD_PUBLIC_PREFIX" env-default:"/uploads"`
	Minio        MinioConfig `yaml:"minio"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"bikemarket"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	PublicURL string `yaml:"public_url" env:"MINIO_PUBLIC_URL"`
}

// RedisConfig enables the listing cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"LISTING_CACHE_TTL" env-default:"10m"`
}

// NATSConfig enables event publishing when URL is set.
type NATSConfig struct {
	URL            string        `yaml:"url" env:"NATS_URL"`
	SubjectPrefix  string        `yaml:"subject_prefix" env:"NATS_SUBJECT_PREFIX" env-default:"bikemarket"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"NATS_CONNECT_TIMEOUT" env-default:"5s"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT"`
}

type AuthConfig struct {
	HashScheme     string `yaml:"hash_scheme" env:"AUTH_HASH_SCHEME" env-default:"sha256"`
	Pepper         string `yaml:"pepper" env:"AUTH_PEPPER"`
	HashIterations int    `yaml:"hash_iterations" env:"AUTH_HASH_ITERATIONS" env-default:"100000"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type ListingConfig struct {
	NewestDefault int `yaml:"newest_default" env:"LISTING_NEWEST_DEFAULT" env-default:"8"`
	NewestMax     int `yaml:"newest_max" env:"LISTING_NEWEST_MAX" env-default:"50"`
	SearchLimit   int `yaml:"search_limit" env:"LISTING_SEARCH_LIMIT" env-default:"50"`
}

// Load reads path when it exists, then the environment. A .env file in the
// working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, cfg.Validate()
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = Config{}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, cfg.Validate()
}

// Validate checks values cleanenv cannot express.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("config: database url is required")
	}
	switch c.Storage.Driver {
	case StorageDisk, StorageMinio:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Listing.NewestDefault > c.Listing.NewestMax {
		return fmt.Errorf("config: listing newest_default %d exceeds newest_max %d",
			c.Listing.NewestDefault, c.Listing.NewestMax)
	}
	return nil
}
