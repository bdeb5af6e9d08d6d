package auth

import (
	"time"

	"github.com/google/uuid"
)

// Grant represents an issued refresh token held server-side.
// Its ID is the refresh token's jti; revoking the grant blacklists the token.
type Grant struct {
	// ID is the token identifier (jti) embedded in the refresh cookie.
	ID string
	// FamilyID groups rotated grants so a logout can revoke all of them.
	FamilyID string
	// Subject is the username the grant was issued to.
	Subject string

	CreatedAt  time.Time
	LastUsedAt time.Time
	// ExpiresAt is the idle expiration (sliding TTL).
	ExpiresAt time.Time
	// MaxExpiresAt is the absolute expiration cap.
	MaxExpiresAt time.Time

	// UserAgent of the login request (informational).
	UserAgent string
}

// NewGrant creates a new Grant with generated IDs and timestamps.
func NewGrant(subject string) *Grant {
	now := time.Now()
	return &Grant{
		ID:         uuid.New().String(),
		FamilyID:   uuid.New().String(),
		Subject:    subject,
		CreatedAt:  now,
		LastUsedAt: now,
	}
}

// Expired returns true once the idle or absolute expiry has passed.
func (g *Grant) Expired(now time.Time) bool {
	return (!g.ExpiresAt.IsZero() && now.After(g.ExpiresAt)) || (!g.MaxExpiresAt.IsZero() && now.After(g.MaxExpiresAt))
}

// fill sets unset timestamps from the store TTLs.
func (g *Grant) fill(now time.Time, idleTTL, maxTTL time.Duration) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.LastUsedAt.IsZero() {
		g.LastUsedAt = now
	}
	if g.ExpiresAt.IsZero() && idleTTL > 0 {
		g.ExpiresAt = now.Add(idleTTL)
	}
	if g.MaxExpiresAt.IsZero() && maxTTL > 0 {
		g.MaxExpiresAt = now.Add(maxTTL)
	}
}

// slide extends the idle expiry from at, capped by the absolute expiry.
func (g *Grant) slide(at time.Time, idleTTL time.Duration) {
	g.LastUsedAt = at
	if idleTTL <= 0 {
		return
	}
	newExp := at.Add(idleTTL)
	if !g.MaxExpiresAt.IsZero() && newExp.After(g.MaxExpiresAt) {
		newExp = g.MaxExpiresAt
	}
	g.ExpiresAt = newExp
}
