package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/localscan/intel-gateway/app/domain/common"
	"github.com/localscan/intel-gateway/app/utils/logger"
)

// KeyValueCache is a best-effort string cache. It never reports failures to
// callers: an unusable backend behaves as an always-empty cache.
type KeyValueCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string)
	Available() bool
}

// NewKeyValueCache checks the backend once with a write-then-delete of a
// sentinel key. A backend that fails the check, or a nil backend, yields a
// no-op cache.
func NewKeyValueCache(ctx context.Context, backend Backend) KeyValueCache {
	if backend == nil {
		return NoopCache{}
	}
	if err := checkBackend(ctx, backend); err != nil {
		logger.GetLogger().WithFields(logrus.Fields{
			"backend": fmt.Sprintf("%T", backend),
			"error":   err.Error(),
		}).Warn("cache backend unavailable, continuing without cache")
		return NoopCache{}
	}
	return &backendCache{backend: backend}
}

func checkBackend(ctx context.Context, backend Backend) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", common.ErrBackendUnavailable, r)
		}
	}()
	if err := backend.Set(ctx, sentinelKey, sentinelKey); err != nil {
		return fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}
	if err := backend.Delete(ctx, sentinelKey); err != nil {
		return fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}
	return nil
}

type backendCache struct {
	backend Backend
}

func (c *backendCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			logger.GetLogger().WithField("key", key).Debugf("cache read failed: %v", err)
		}
		return "", false
	}
	if value == "" {
		return "", false
	}
	return value, true
}

func (c *backendCache) Set(ctx context.Context, key string, value string) {
	if err := c.backend.Set(ctx, key, value); err != nil {
		logger.GetLogger().WithField("key", key).Debugf("cache write failed: %v", err)
	}
}

func (c *backendCache) Available() bool {
	return true
}

// NoopCache always misses and drops writes.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (string, bool) { return "", false }

func (NoopCache) Set(context.Context, string, string) {}

func (NoopCache) Available() bool { return false }
