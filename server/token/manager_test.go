package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndParse(t *testing.T) {
	m, err := NewManager("secret", WithIssuer("test"))
	require.NoError(t, err)

	access, err := m.IssueAccess("alice")
	require.NoError(t, err)
	refresh, err := m.IssueRefresh("alice", "grant-1")
	require.NoError(t, err)

	claims, err := m.Parse(access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.InDelta(t, (5 * time.Minute).Seconds(), m.Remaining(claims).Seconds(), 2)

	claims, err = m.Parse(refresh, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "grant-1", claims.ID)
}

func TestManager_Rejects(t *testing.T) {
	m, err := NewManager("secret", WithIssuer("test"))
	require.NoError(t, err)
	other, err := NewManager("other-secret", WithIssuer("test"))
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	expired, err := NewManager("secret", WithIssuer("test"), WithClock(func() time.Time { return past }))
	require.NoError(t, err)
	foreign, err := NewManager("secret", WithIssuer("elsewhere"))
	require.NoError(t, err)

	refresh, _ := m.IssueRefresh("alice", "g")
	forged, _ := other.IssueAccess("alice")
	stale, _ := expired.IssueAccess("alice")
	wrongIssuer, _ := foreign.IssueAccess("alice")

	testCases := []struct {
		name  string
		token string
	}{
		{name: "wrong type", token: refresh},
		{name: "wrong secret", token: forged},
		{name: "expired", token: stale},
		{name: "wrong issuer", token: wrongIssuer},
		{name: "garbage", token: "not-a-token"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Parse(tc.token, TypeAccess)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager("")
	assert.ErrorIs(t, err, ErrSecretRequired)
}
