package cache

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// Backend is the storage medium behind KeyValueCache. Implementations may fail
// at any time; KeyValueCache absorbs those failures.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
