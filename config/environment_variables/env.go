package environment_variables

import (
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/localscan/intel-gateway/app/utils/logger"
)

type EnvironmentVariable struct {
	HTTP_PORT          int           `env:"HTTP_PORT" envDefault:"8080"`
	ESI_BASE_URL       string        `env:"ESI_BASE_URL" envDefault:"https://esi.evetech.net/latest"`
	ZKILL_BASE_URL     string        `env:"ZKILL_BASE_URL" envDefault:"https://zkillboard.com/api"`
	ORIGIN_HOST        string        `env:"ORIGIN_HOST" envDefault:"localhost"`
	USER_AGENT         string        `env:"USER_AGENT" envDefault:"localscan-intel-gateway"`
	BATCH_DEBOUNCE     time.Duration `env:"BATCH_DEBOUNCE" envDefault:"100ms"`
	STATS_INTERVAL     time.Duration `env:"STATS_INTERVAL" envDefault:"1s"`
	UPSTREAM_TIMEOUT   time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	SURFACE_ABANDONED  bool          `env:"SURFACE_ABANDONED" envDefault:"false"`
	SCAN_RETENTION     time.Duration `env:"SCAN_RETENTION" envDefault:"1h"`
	ALLOWED_CORS_HOSTS []string      `env:"ALLOWED_CORS_HOSTS" envSeparator:","`
	// Cache configuration
	CACHE_BACKEND     string `env:"CACHE_BACKEND" envDefault:"memory"`
	CACHE_MEMORY_SIZE int    `env:"CACHE_MEMORY_SIZE" envDefault:"10000"`
	CACHE_SQLITE_PATH string `env:"CACHE_SQLITE_PATH"`
	REDIS_URL         string `env:"REDIS_URL"`
	REDIS_PASSWORD    string `env:"REDIS_PASSWORD"`
	REDIS_DB          int    `env:"REDIS_DB"`
	DB_POSTGRESQL_DSN string `env:"DB_POSTGRESQL_DSN"`
}

var (
	mu         sync.RWMutex
	current    EnvironmentVariable
	reloadedAt time.Time
)

// LoadFromEnv re-reads the environment. An invalid environment is logged and
// the previous values stay in effect.
func LoadFromEnv() {
	loaded := EnvironmentVariable{}
	if err := env.Parse(&loaded); err != nil {
		logger.GetLogger().Errorf("Invalid SYSENV: %v", err)
		return
	}
	Set(loaded)
}

// Set replaces the active values.
func Set(values EnvironmentVariable) {
	mu.Lock()
	defer mu.Unlock()
	current = values
	reloadedAt = time.Now()
}

// Current returns a copy of the active values, safe to read while the cron
// job reloads them.
func Current() EnvironmentVariable {
	mu.RLock()
	defer mu.RUnlock()
	out := current
	out.ALLOWED_CORS_HOSTS = append([]string(nil), current.ALLOWED_CORS_HOSTS...)
	return out
}

func ReloadedAt() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return reloadedAt
}
