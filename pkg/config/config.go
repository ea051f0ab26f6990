package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Env variable names, exported so tests and deploy tooling share them.
const (
	EnvAppEnv     = "STOREFRONT_APP_ENV"
	EnvLogLevel   = "STOREFRONT_LOG_LEVEL"
	EnvAPIBaseURL = "STOREFRONT_API_BASE_URL"
)

type Config struct {
	App  AppConfig
	API  APIConfig
	Cart CartConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL     string        `envconfig:"STOREFRONT_API_BASE_URL" required:"true"`
	Timeout     time.Duration `envconfig:"STOREFRONT_API_TIMEOUT" default:"10s"`
	BearerToken string        `envconfig:"STOREFRONT_API_TOKEN"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL", EnvAPIBaseURL)
	}
	return nil
}

type CartConfig struct {
	// DeliveryFee is the flat per-order delivery charge in whole currency
	// units. The remote API does not return it; the client adds it on top
	// of the server-computed subtotal.
	DeliveryFee int `envconfig:"STOREFRONT_DELIVERY_FEE" default:"5"`
}
