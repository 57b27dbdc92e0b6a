// Package redis implements helix.SignatureStore on Redis.
//
// Each signature is one JSON value under "{prefix}:{license_key}:{type}".
// Keys carry a TTL matching the signature expiry so Redis evicts them on its
// own; expiry is still checked by the caller against its clock.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/helixmedia/helix"
	"github.com/helixmedia/helix/database/internal"
	goredis "github.com/redis/go-redis/v9"
)

// Store keeps signatures in Redis.
type Store struct {
	client *goredis.Client
	prefix string
	now    func() time.Time
}

// Open connects to a redis:// or rediss:// URL and verifies the connection.
// prefix namespaces the keys; an empty prefix uses the default table name.
func Open(ctx context.Context, dsn, prefix string) (*Store, error) {
	opts, err := goredis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewStore(client, prefix), nil
}

// NewStore wraps an existing client.
func NewStore(client *goredis.Client, prefix string) *Store {
	return &Store{
		client: client,
		prefix: internal.TableOrDefault(prefix),
		now:    time.Now,
	}
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(k helix.SignatureKey) string {
	return s.prefix + ":" + k.LicenseKey + ":" + string(k.Type)
}

func (s *Store) Get(ctx context.Context, key helix.SignatureKey) (helix.CachedSignature, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return helix.CachedSignature{}, false, nil
		}
		return helix.CachedSignature{}, false, fmt.Errorf("get: %w", err)
	}

	var sig helix.CachedSignature
	if err := json.Unmarshal(data, &sig); err != nil {
		return helix.CachedSignature{}, false, fmt.Errorf("get: decode signature: %w", err)
	}
	return sig, true, nil
}

// Set stores sig with a TTL reaching its expiry. A signature already past
// its expiry on the wall clock is stored without a TTL and overwritten by
// the next refresh.
func (s *Store) Set(ctx context.Context, key helix.SignatureKey, sig helix.CachedSignature) error {
	data, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("set: encode signature: %w", err)
	}

	ttl := sig.ExpiresAt.Sub(s.now())
	if ttl < 0 {
		ttl = 0
	}

	if err := s.client.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("set: %w", err)
	}
	return nil
}
