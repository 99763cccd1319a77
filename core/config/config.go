package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrNilConfig = errors.New("config: destination must be a non-nil pointer to a struct")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> cached value
	loadMu     sync.Mutex
)

// Load parses environment variables into cfg. The first call loads .env
// from the working directory if present. Each struct type is parsed once;
// later calls copy the cached value.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if reflect.TypeFor[T]().Kind() != reflect.Struct {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		// A missing .env file is the normal case outside development.
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()
	if v, ok := cache.Load(key); ok {
		*cfg = v.(T)
		return nil
	}

	loadMu.Lock()
	defer loadMu.Unlock()

	if v, ok := cache.Load(key); ok {
		*cfg = v.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	cache.Store(key, parsed)
	*cfg = parsed
	return nil
}

// MustLoad is Load that panics on error. Use it during startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Parse reads environment variables into cfg without the cache. Use it for
// one-off parsing and in tests that vary the environment.
func Parse[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", reflect.TypeFor[T](), err)
	}
	return nil
}
