package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Mongo struct {
		URI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
		Database string `env:"MONGO_DATABASE" envDefault:"minativault"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Admin struct {
		Email      string        `env:"ADMIN_EMAIL,required"`
		Password   string        `env:"ADMIN_PASSWORD,required"`
		SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	}

	// Users list page size. The duplicate scan and the stats aggregation
	// always read the full collection regardless of this value.
	PageSize int `env:"PAGE_SIZE" envDefault:"30"`

	// How long a duplicate scan result stays valid for confirmation.
	ScanTTL time.Duration `env:"DUPLICATE_SCAN_TTL" envDefault:"15m"`

	// Dashboard stats cache TTL.
	StatsTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"1m"`
}

func Load() *Config {
	// Missing .env is fine, variables may be set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
