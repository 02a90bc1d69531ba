// Package tokenstore issues, resolves and revokes bearer tokens.
package tokenstore

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned for unknown, expired or revoked tokens
var ErrInvalidToken = errors.New("invalid or expired token")

// Store maps bearer tokens to user ids
type Store interface {
	Issue(ctx context.Context, userID uint) (string, error)
	Resolve(ctx context.Context, token string) (uint, error)
	Revoke(ctx context.Context, token string) error
}
