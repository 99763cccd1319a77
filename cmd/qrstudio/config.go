package main

import (
	"time"

	"github.com/dmitrymomot/qrstudio/core/cookie"
	"github.com/dmitrymomot/qrstudio/core/server"
)

// Config is the application configuration read from the environment.
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"qrstudio"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`

	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"qrstudio_session"`
	SessionMax    int           `env:"SESSION_MAX" envDefault:"10000"`

	ExportDecodeTimeout time.Duration `env:"EXPORT_DECODE_TIMEOUT" envDefault:"0s"`
	ExportMaxDimension  int           `env:"EXPORT_MAX_DIMENSION" envDefault:"4096"`
	// ExportRateLimit is the export burst per session; 0 disables throttling.
	ExportRateLimit    int           `env:"EXPORT_RATE_LIMIT" envDefault:"20"`
	ExportRateInterval time.Duration `env:"EXPORT_RATE_INTERVAL" envDefault:"3s"`

	Server server.Config
	Cookie cookie.Config
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev" || c.AppEnv == "local"
}
