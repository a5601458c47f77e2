// Package revokedtokens keeps the ids of session tokens that were logged out
// before their natural expiry.
package revokedtokens

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, tokenID, userID string, expiresAt time.Time) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	// DeleteExpired drops rows whose token would be rejected anyway.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
