// Package config loads environment variables into typed structs using
// caarlos0/env tags. A .env file in the working directory is loaded on
// first use through joho/godotenv.
//
//	type Config struct {
//		AppName    string        `env:"APP_NAME" envDefault:"qrstudio"`
//		SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`
//		Server     server.Config
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// # Caching Behavior
//
// Load parses each struct type once per process. Later calls for the same
// type return the cached value even if the environment has changed since.
// Use Parse to bypass the cache.
package config
