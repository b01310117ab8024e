package cache

import (
	"context"
	"strings"
	"time"

	"github.com/localscan/intel-gateway/app/utils/logger"
	"github.com/localscan/intel-gateway/config/environment_variables"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendNone     = "none"
)

// NewBackend builds the backend named by CACHE_BACKEND. Construction errors
// are logged and yield a nil backend, which NewKeyValueCache turns into a no-op cache.
func NewBackend() Backend {
	envs := environment_variables.Current()
	kind := strings.ToLower(strings.TrimSpace(envs.CACHE_BACKEND))
	switch kind {
	case BackendRedis:
		backend, err := NewRedisBackend(envs.REDIS_URL, envs.REDIS_PASSWORD, envs.REDIS_DB)
		if err != nil {
			logger.GetLogger().Errorf("redis cache backend: %v", err)
			return nil
		}
		return backend
	case BackendPostgres:
		backend, err := OpenPostgresBackend(envs.DB_POSTGRESQL_DSN)
		if err != nil {
			logger.GetLogger().Errorf("postgres cache backend: %v", err)
			return nil
		}
		return backend
	case BackendSQLite:
		backend, err := OpenSQLiteBackend(envs.CACHE_SQLITE_PATH)
		if err != nil {
			logger.GetLogger().Errorf("sqlite cache backend: %v", err)
			return nil
		}
		return backend
	case BackendNone:
		return nil
	case BackendMemory, "":
	default:
		logger.GetLogger().Warnf("unknown CACHE_BACKEND %q, using memory", kind)
	}
	backend, err := NewMemoryBackend(envs.CACHE_MEMORY_SIZE)
	if err != nil {
		logger.GetLogger().Errorf("memory cache backend: %v", err)
		return nil
	}
	return backend
}

func NewCache(backend Backend) KeyValueCache {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return NewKeyValueCache(ctx, backend)
}
