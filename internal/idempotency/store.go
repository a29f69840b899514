// Package idempotency remembers which order an Idempotency-Key produced.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "storefront:idem:order:"

type State int

const (
	// StateNew means the caller now owns the key and must Complete or Abort it.
	StateNew State = iota
	// StateInFlight means another request holds the key and has not finished.
	StateInFlight
	// StateDone means the key already produced an order.
	StateDone
	// StateMismatch means the key was first used with a different request.
	StateMismatch
)

// Fingerprint hashes the JSON encoding of req. Begin compares it against the
// fingerprint stored with the key.
func Fingerprint(req any) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Values are stored as "<fingerprint>:<order id>"; the order id is empty
// while the claim is pending.
func record(fingerprint, orderID string) string {
	return fingerprint + ":" + orderID
}

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 2 * time.Second}),
		ttl: ttl,
	}
}

// Begin claims key for the request identified by fingerprint. When the key
// already finished for the same request it returns the order id it produced.
func (s *RedisStore) Begin(ctx context.Context, key, fingerprint string) (State, string, error) {
	k := keyPrefix + key

	ok, err := s.rdb.SetNX(ctx, k, record(fingerprint, ""), s.ttl).Result()
	if err != nil {
		return 0, "", fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		return StateNew, "", nil
	}

	v, err := s.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return StateInFlight, "", nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("redis get: %w", err)
	}
	stored, orderID, _ := strings.Cut(v, ":")
	switch {
	case stored != fingerprint:
		return StateMismatch, "", nil
	case orderID == "":
		return StateInFlight, "", nil
	default:
		return StateDone, orderID, nil
	}
}

func (s *RedisStore) Complete(ctx context.Context, key, fingerprint, orderID string) error {
	return s.rdb.Set(ctx, keyPrefix+key, record(fingerprint, orderID), s.ttl).Err()
}

// Abort frees key so the client may retry after a failed attempt.
func (s *RedisStore) Abort(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, keyPrefix+key).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
