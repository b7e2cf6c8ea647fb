package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultSessionTTL = 24 * time.Hour
	maxWatchRetries   = 5
)

// RedisStore keeps each snapshot as JSON under board:session:<id> with a
// TTL, plus a sorted-set index scored by expiry for Count.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// DialRedis parses a redis:// URL and pings the server.
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for redis session store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func sessionKey(id string) string { return "board:session:" + strings.TrimSpace(id) }
func indexKey() string            { return "board:sessions" }

// createScript prunes the expiry index, enforces the session limit, stores
// the snapshot and indexes it in one server-side step.
// KEYS: session key, index key. ARGV: now, limit, payload, ttl ms, expiry, id.
var createScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
local limit = tonumber(ARGV[2])
if limit > 0 and redis.call('ZCARD', KEYS[2]) >= limit then
  return -1
end
if not redis.call('SET', KEYS[1], ARGV[3], 'NX', 'PX', ARGV[4]) then
  return 0
end
redis.call('ZADD', KEYS[2], ARGV[5], ARGV[6])
return 1
`)

func (s *RedisStore) Create(ctx context.Context, snap *Snapshot, limit int) error {
	if snap == nil || strings.TrimSpace(snap.ID) == "" {
		return ErrInvalidArgs
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	res, err := createScript.Run(ctx, s.rdb,
		[]string{sessionKey(snap.ID), indexKey()},
		time.Now().Unix(), limit, raw, s.ttl.Milliseconds(), s.expiry(), snap.ID,
	).Int()
	if err != nil {
		return fmt.Errorf("create session %s: %w", snap.ID, err)
	}
	switch res {
	case -1:
		return ErrTooManySessions
	case 0:
		return ErrInvalidArgs
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &snap, nil
}

// Update runs fn under WATCH on the session key and commits with MULTI/EXEC.
// A write by another client between read and commit aborts the transaction;
// it is retried a few times before ErrConcurrentUpdate.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(snap *Snapshot) error) (*Snapshot, error) {
	key := sessionKey(id)
	var out *Snapshot

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		var cur Snapshot
		if err := json.Unmarshal(raw, &cur); err != nil {
			return fmt.Errorf("decode session %s: %w", id, err)
		}
		if err := fn(&cur); err != nil {
			return err
		}
		newRaw, err := json.Marshal(&cur)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newRaw, s.ttl)
			pipe.ZAdd(ctx, indexKey(), redis.Z{Score: s.expiry(), Member: cur.ID})
			return nil
		})
		if err != nil {
			return err
		}
		out = &cur
		return nil
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrConcurrentUpdate
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return err
	}
	_ = s.rdb.ZRem(ctx, indexKey(), strings.TrimSpace(id)).Err()
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Count prunes expired index entries, then returns the live count.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.rdb.ZRemRangeByScore(ctx, indexKey(), "-inf", now).Err(); err != nil {
		return 0, err
	}
	n, err := s.rdb.ZCard(ctx, indexKey()).Result()
	return int(n), err
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func (s *RedisStore) expiry() float64 {
	return float64(time.Now().Add(s.ttl).Unix())
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
