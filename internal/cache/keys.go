package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	PublicProfileKeyPrefix = "biolink:profile:%s"
	RevokedSessionPrefix   = "biolink:session:revoked:%s"
)

// PublicProfileKey is case-sensitive, matching username lookups.
func PublicProfileKey(username string) string {
	return fmt.Sprintf(PublicProfileKeyPrefix, username)
}

func RevokedSessionKey(jti string) string {
	return fmt.Sprintf(RevokedSessionPrefix, jti)
}

// Store groups the cache operations used by services. A nil client turns every
// call into a no-op.
type Store struct {
	rdb *redis.Client
}

// NewStore wraps rdb, which may be nil.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Enabled reports whether a Redis client is attached.
func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

// PublicProfile reads username's public view through the cache.
func (s *Store) PublicProfile(ctx context.Context, username string, dest any, ttl time.Duration, fetch func() error) (bool, error) {
	if !s.Enabled() || ttl <= 0 {
		return false, fetch()
	}
	return Aside(ctx, s.rdb, PublicProfileKey(username), dest, ttl, fetch)
}

// InvalidatePublicProfile drops the cached public view for username.
func (s *Store) InvalidatePublicProfile(ctx context.Context, username string) {
	if !s.Enabled() || strings.TrimSpace(username) == "" {
		return
	}
	s.rdb.Del(ctx, PublicProfileKey(username))
}

// RevokeSession records jti as revoked until the token would have expired anyway.
func (s *Store) RevokeSession(ctx context.Context, jti string, until time.Time) error {
	if !s.Enabled() || jti == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, RevokedSessionKey(jti), "1", ttl).Err()
}

// IsSessionRevoked reports whether jti was revoked. Redis errors are treated as not revoked.
func (s *Store) IsSessionRevoked(ctx context.Context, jti string) bool {
	if !s.Enabled() || jti == "" {
		return false
	}
	n, err := s.rdb.Exists(ctx, RevokedSessionKey(jti)).Result()
	return err == nil && n > 0
}

// Ping checks the Redis connection; it succeeds trivially when disabled.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Ping(ctx).Err()
}
