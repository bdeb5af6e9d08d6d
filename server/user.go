package server

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned by Lookup for an unknown user.
	ErrUserNotFound = errors.New("user not found")
)

// User is the authenticated principal returned by the user endpoint.
type User struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// UserStore authenticates and looks up users.
type UserStore interface {
	Authenticate(ctx context.Context, username, password string) (*User, error)
	Lookup(ctx context.Context, username string) (*User, error)
}

type userRecord struct {
	user User
	hash []byte
}

// MemoryUsers is an in-memory UserStore with bcrypt password hashes.
type MemoryUsers struct {
	mux   sync.RWMutex
	cost  int
	users map[string]*userRecord
}

// NewMemoryUsers creates a store hashing with cost; cost <= 0 uses bcrypt.DefaultCost.
func NewMemoryUsers(cost int) *MemoryUsers {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &MemoryUsers{cost: cost, users: map[string]*userRecord{}}
}

// Add stores user with password, replacing any user with the same name.
func (m *MemoryUsers) Add(user User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return err
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	m.users[user.Username] = &userRecord{user: user, hash: hash}
	return nil
}

// Remove deletes a user.
func (m *MemoryUsers) Remove(username string) {
	m.mux.Lock()
	defer m.mux.Unlock()
	delete(m.users, username)
}

func (m *MemoryUsers) Authenticate(_ context.Context, username, password string) (*User, error) {
	m.mux.RLock()
	record, ok := m.users[username]
	m.mux.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(record.hash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	user := record.user
	return &user, nil
}

func (m *MemoryUsers) Lookup(_ context.Context, username string) (*User, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	record, ok := m.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := record.user
	return &user, nil
}
