package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	mu     sync.RWMutex
	loaded = make(map[string]any)
)

// Load populates the given configuration struct from environment variables.
// A .env file in the working directory is loaded once per process if present.
// Each configuration type is parsed only once; later calls for the same type
// return the cached value so every component sees identical settings.
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		// A missing .env file is fine, real deployments use the environment.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	key := fmt.Sprintf("%T", *v)

	mu.RLock()
	cached, ok := loaded[key]
	mu.RUnlock()
	if ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	mu.Lock()
	loaded[key] = *v
	mu.Unlock()
	return nil
}

// MustLoad works like Load but panics on failure. Use it for configuration
// the service cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
