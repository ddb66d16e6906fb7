// Package session holds the short-lived state between a successful document
// verification and the follow-up detail submission.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound covers unknown, expired, and already-consumed tokens alike; the
// caller cannot (and should not) tell them apart.
var ErrNotFound = errors.New("verification session not found or expired")

// Session binds a verified document to its extracted EPIC number.
type Session struct {
	Token        string    `json:"token"`
	DocumentPath string    `json:"document_path"`
	EPIC         string    `json:"epic"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Store is the verification-session store. Tokens are single-use: Consume
// atomically retrieves and deletes, so two concurrent submissions cannot both
// win. Expiry is checked lazily at read time.
type Store interface {
	Create(ctx context.Context, documentPath, epicNumber string, ttl time.Duration) (token string, err error)
	Get(ctx context.Context, token string) (Session, error)
	Consume(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}
