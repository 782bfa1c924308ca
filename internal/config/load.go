package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Load reads an optional .env file into the process environment and parses it.
func Load() (*Config, error) {
	// a missing .env is fine outside local development
	_ = godotenv.Load()

	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Pricing.RentDefaultDays <= 0 {
		return nil, fmt.Errorf("PRICING_RENT_DEFAULT_DAYS must be positive")
	}
	return cfg, nil
}
