package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/nightstudy-service/internal/auth"
	"github.com/spec-kit/nightstudy-service/internal/domain"
)

const defaultRevocationCachePrefix = "blacklist"

const (
	slotAccess  = "access"
	slotRefresh = "refresh"
)

// CachedRevocationStore remembers revoked tokens in Redis. Only positive answers are
// cached: a revoked token never becomes valid again, so a hit can be trusted until
// the token would have expired anyway. Misses and Redis errors fall through to the
// wrapped store, which stays the authority.
type CachedRevocationStore struct {
	next   auth.RevocationStore
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewCachedRevocationStore wraps next. ttl should be the refresh token lifetime.
func NewCachedRevocationStore(next auth.RevocationStore, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *CachedRevocationStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRevocationStore{
		next:   next,
		client: client,
		ttl:    ttl,
		prefix: defaultRevocationCachePrefix,
		logger: logger,
	}
}

func (s *CachedRevocationStore) EnsureSchema(ctx context.Context) error {
	return s.next.EnsureSchema(ctx)
}

// Revoke writes through: the table first, then the cache.
func (s *CachedRevocationStore) Revoke(ctx context.Context, pair domain.TokenPair) error {
	if err := s.next.Revoke(ctx, pair); err != nil {
		return err
	}
	s.remember(ctx, s.keys(pair)...)
	return nil
}

func (s *CachedRevocationStore) IsRevoked(ctx context.Context, pair domain.TokenPair) bool {
	keys := s.keys(pair)
	if len(keys) == 0 {
		return s.next.IsRevoked(ctx, pair)
	}

	n, err := s.client.Exists(ctx, keys...).Result()
	switch {
	case err != nil:
		s.logger.Warn("revocation cache lookup failed", zap.Error(err))
	case n > 0:
		return true
	}

	revoked := s.next.IsRevoked(ctx, pair)
	// With both halves set we cannot tell which one matched.
	if revoked && len(keys) == 1 {
		s.remember(ctx, keys...)
	}
	return revoked
}

func (s *CachedRevocationStore) remember(ctx context.Context, keys ...string) {
	if len(keys) == 0 || s.ttl <= 0 {
		return
	}
	pipe := s.client.TxPipeline()
	for _, key := range keys {
		pipe.Set(ctx, key, "1", s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("revocation cache write failed", zap.Error(err))
	}
}

// keys mirrors the table's columns: a token only matches in the slot it was
// revoked in.
func (s *CachedRevocationStore) keys(pair domain.TokenPair) []string {
	keys := make([]string, 0, 2)
	if pair.AccessToken != "" {
		keys = append(keys, s.key(slotAccess, pair.AccessToken))
	}
	if pair.RefreshToken != "" {
		keys = append(keys, s.key(slotRefresh, pair.RefreshToken))
	}
	return keys
}

func (s *CachedRevocationStore) key(slot, token string) string {
	return s.prefix + ":" + slot + ":" + hashToken(token)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
