package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TypeAccess marks short-lived access tokens.
	TypeAccess = "access"
	// TypeRefresh marks long-lived refresh tokens.
	TypeRefresh = "refresh"
)

var (
	// ErrInvalidToken is returned for malformed, expired, forged or mistyped tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrSecretRequired is returned when a manager is created without a signing secret.
	ErrSecretRequired = errors.New("token signing secret is required")
)

// Claims are the JWT claims of access and refresh tokens.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 tokens.
type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option mutates Manager.
type Option func(*Manager)

// WithIssuer sets the iss claim.
func WithIssuer(issuer string) Option {
	return func(m *Manager) { m.issuer = issuer }
}

// WithAccessTTL sets the access token lifetime.
func WithAccessTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.accessTTL = ttl
		}
	}
}

// WithRefreshTTL sets the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.refreshTTL = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// AccessTTL returns the access token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL returns the refresh token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// IssueAccess signs an access token for subject.
func (m *Manager) IssueAccess(subject string) (string, error) {
	return m.sign(subject, TypeAccess, "", m.accessTTL)
}

// IssueRefresh signs a refresh token for subject carrying the grant id as jti.
func (m *Manager) IssueRefresh(subject, grantID string) (string, error) {
	return m.sign(subject, TypeRefresh, grantID, m.refreshTTL)
}

// Parse verifies tokenString and checks its type.
func (m *Manager) Parse(tokenString, expectedType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != expectedType {
		return nil, fmt.Errorf("%w: expected %s token, got %s", ErrInvalidToken, expectedType, claims.Type)
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %s", ErrInvalidToken, claims.Issuer)
	}
	return claims, nil
}

// Remaining returns how long the claims stay valid.
func (m *Manager) Remaining(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(m.now())
}

func (m *Manager) sign(subject, tokenType, id string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    m.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// NewManager creates a manager with 5 minute access and 24 hour refresh lifetimes by default.
func NewManager(secret string, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	m := &Manager{
		secret:     []byte(secret),
		accessTTL:  5 * time.Minute,
		refreshTTL: 24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}
