// Package metadata keeps small key/value settings of the CLI in SQLite.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns the value of key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
