package auth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no grant was found for the given id.
	ErrNotFound = errors.New("refresh grant not found")
)

// Store defines the contract for a refresh grant store.
// Implementations should be safe for concurrent use.
type Store interface {
	// Put inserts or updates a grant. Implementations may enforce TTLs based on grant fields.
	Put(ctx context.Context, g *Grant) error

	// Get retrieves a grant by id. Should return ErrNotFound if missing, expired or revoked.
	Get(ctx context.Context, id string) (*Grant, error)

	// Touch updates last-used timestamp and extends idle expiry (sliding TTL) as appropriate.
	Touch(ctx context.Context, id string, at time.Time) error

	// Rotate replaces an existing grant with a new one in the same family.
	// Returns the new id; the old id stays valid for a short grace window.
	Rotate(ctx context.Context, oldID string, newGrant *Grant) (string, error)

	// Revoke deletes a specific grant id immediately.
	Revoke(ctx context.Context, id string) error

	// RevokeFamily deletes all grants of a family.
	RevokeFamily(ctx context.Context, familyID string) error
}
