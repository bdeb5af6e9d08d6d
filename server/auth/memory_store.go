package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for development and tests.
// It supports sliding idle TTL and absolute max TTL semantics.
type MemoryStore struct {
	mux         sync.RWMutex
	byID        map[string]*Grant
	byFamily    map[string]map[string]struct{}
	idleTTL     time.Duration
	maxTTL      time.Duration
	rotateGrace time.Duration
}

// NewMemoryStore creates a MemoryStore with given TTL settings.
func NewMemoryStore(idleTTL, maxTTL, rotateGrace time.Duration) *MemoryStore {
	return &MemoryStore{
		byID:        map[string]*Grant{},
		byFamily:    map[string]map[string]struct{}{},
		idleTTL:     idleTTL,
		maxTTL:      maxTTL,
		rotateGrace: rotateGrace,
	}
}

func (s *MemoryStore) Put(_ context.Context, g *Grant) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	g.fill(time.Now(), s.idleTTL, s.maxTTL)
	s.add(g)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Grant, error) {
	s.mux.RLock()
	g, ok := s.byID[id]
	s.mux.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if g.Expired(time.Now()) {
		_ = s.Revoke(ctx, id)
		return nil, ErrNotFound
	}
	dup := *g
	return &dup, nil
}

func (s *MemoryStore) Touch(_ context.Context, id string, at time.Time) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	g, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	g.slide(at, s.idleTTL)
	return nil
}

func (s *MemoryStore) Rotate(_ context.Context, oldID string, newGrant *Grant) (string, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	old, ok := s.byID[oldID]
	if !ok || old.Expired(time.Now()) {
		return "", ErrNotFound
	}
	now := time.Now()
	ng := *newGrant
	ng.FamilyID = old.FamilyID
	if ng.Subject == "" {
		ng.Subject = old.Subject
	}
	ng.fill(now, s.idleTTL, s.maxTTL)
	s.add(&ng)
	if s.rotateGrace > 0 {
		old.ExpiresAt = now.Add(s.rotateGrace)
	} else {
		s.remove(oldID)
	}
	return ng.ID, nil
}

func (s *MemoryStore) Revoke(_ context.Context, id string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	s.remove(id)
	return nil
}

func (s *MemoryStore) RevokeFamily(_ context.Context, familyID string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	fam := s.byFamily[familyID]
	if fam == nil {
		return nil
	}
	for id := range fam {
		delete(s.byID, id)
	}
	delete(s.byFamily, familyID)
	return nil
}

func (s *MemoryStore) add(g *Grant) {
	dup := *g
	s.byID[g.ID] = &dup
	fam := s.byFamily[g.FamilyID]
	if fam == nil {
		fam = map[string]struct{}{}
		s.byFamily[g.FamilyID] = fam
	}
	fam[g.ID] = struct{}{}
}

func (s *MemoryStore) remove(id string) {
	g, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	if fam := s.byFamily[g.FamilyID]; fam != nil {
		delete(fam, id)
		if len(fam) == 0 {
			delete(s.byFamily, g.FamilyID)
		}
	}
}
