package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	redis "github.com/redis/go-redis/v9"
)

// RedisStore is a durable Store backed by Redis.
type RedisStore struct {
	rdb         redis.UniversalClient
	prefix      string
	idleTTL     time.Duration
	maxTTL      time.Duration
	rotateGrace time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(rdb redis.UniversalClient, prefix string, idleTTL, maxTTL, rotateGrace time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "cookiejwt:"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, idleTTL: idleTTL, maxTTL: maxTTL, rotateGrace: rotateGrace}
}

func (s *RedisStore) keyGrant(id string) string   { return s.prefix + "grant:" + id }
func (s *RedisStore) keyFamily(fid string) string { return s.prefix + "family:" + fid }

func (s *RedisStore) Put(ctx context.Context, g *Grant) error {
	now := time.Now()
	g.fill(now, s.idleTTL, s.maxTTL)
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.keyGrant(g.ID), data, ttlFor(g, now))
	pipe.SAdd(ctx, s.keyFamily(g.FamilyID), g.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Grant, error) {
	raw, err := s.rdb.Get(ctx, s.keyGrant(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	g := &Grant{}
	if err := json.Unmarshal(raw, g); err != nil {
		return nil, err
	}
	if g.Expired(time.Now()) {
		_ = s.Revoke(ctx, id)
		return nil, ErrNotFound
	}
	return g, nil
}

func (s *RedisStore) Touch(ctx context.Context, id string, at time.Time) error {
	g, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	g.slide(at, s.idleTTL)
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.keyGrant(id), data, ttlFor(g, time.Now())).Err()
}

func (s *RedisStore) Rotate(ctx context.Context, oldID string, newGrant *Grant) (string, error) {
	old, err := s.Get(ctx, oldID)
	if err != nil {
		return "", err
	}
	now := time.Now()
	ng := *newGrant
	ng.FamilyID = old.FamilyID
	if ng.Subject == "" {
		ng.Subject = old.Subject
	}
	ng.fill(now, s.idleTTL, s.maxTTL)
	data, err := json.Marshal(&ng)
	if err != nil {
		return "", err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.keyGrant(ng.ID), data, ttlFor(&ng, now))
	pipe.SAdd(ctx, s.keyFamily(ng.FamilyID), ng.ID)
	if s.rotateGrace > 0 {
		pipe.Expire(ctx, s.keyGrant(oldID), s.rotateGrace)
	} else {
		pipe.Del(ctx, s.keyGrant(oldID))
		pipe.SRem(ctx, s.keyFamily(ng.FamilyID), oldID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return ng.ID, nil
}

func (s *RedisStore) Revoke(ctx context.Context, id string) error {
	raw, err := s.rdb.Get(ctx, s.keyGrant(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}
	g := &Grant{}
	if err := json.Unmarshal(raw, g); err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.keyGrant(id))
	pipe.SRem(ctx, s.keyFamily(g.FamilyID), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) RevokeFamily(ctx context.Context, familyID string) error {
	key := s.keyFamily(familyID)
	ids, err := s.rdb.SMembers(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := s.rdb.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.keyGrant(id))
	}
	pipe.Del(ctx, key)
	_, err = pipe.Exec(ctx)
	return err
}

func ttlFor(g *Grant, now time.Time) time.Duration {
	var until time.Time
	switch {
	case !g.ExpiresAt.IsZero() && !g.MaxExpiresAt.IsZero():
		until = g.ExpiresAt
		if g.MaxExpiresAt.Before(until) {
			until = g.MaxExpiresAt
		}
	case !g.ExpiresAt.IsZero():
		until = g.ExpiresAt
	case !g.MaxExpiresAt.IsZero():
		until = g.MaxExpiresAt
	default:
		return 0
	}
	if until.Before(now) {
		return time.Second
	}
	return until.Sub(now)
}

// String returns a diagnostic representation of the store config.
func (s *RedisStore) String() string {
	return fmt.Sprintf("RedisStore{prefix=%s idleTTL=%s maxTTL=%s grace=%s}", s.prefix, s.idleTTL, s.maxTTL, s.rotateGrace)
}
