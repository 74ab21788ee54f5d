package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/constants"
	"github.com/coral-mesh/clockwork-mcp/internal/retry"
)

// RedisOptions configures OpenRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStorage reads requests stored as JSON strings at <prefix>request:<id>
// with a sorted set <prefix>index scored by request time.
type RedisStorage struct {
	client *redis.Client
	opts   RedisOptions
	logger zerolog.Logger
}

// OpenRedis connects to Redis, waiting for the server with retry.ConnectConfig.
func OpenRedis(ctx context.Context, opts RedisOptions, logger zerolog.Logger) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	logger = logger.With().Str("driver", "redis").Logger()
	err := retry.Do(ctx, retry.ConnectConfig(), func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Debug().Err(err).Msg("Redis not ready")
			return err
		}
		return nil
	}, retry.Transient)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return newRedisStorage(client, opts, logger), nil
}

func newRedisStorage(client *redis.Client, opts RedisOptions, logger zerolog.Logger) *RedisStorage {
	if opts.Prefix == "" {
		opts.Prefix = constants.DefaultRedisPrefix
	}
	return &RedisStorage{client: client, opts: opts, logger: logger}
}

// Driver implements Store.
func (s *RedisStorage) Driver() string { return "redis" }

// Location implements Store.
func (s *RedisStorage) Location() string {
	return fmt.Sprintf("redis://%s/%d (%s*)", s.opts.Addr, s.opts.DB, s.opts.Prefix)
}

// Close implements Store.
func (s *RedisStorage) Close() error { return s.client.Close() }

func (s *RedisStorage) requestKey(id string) string { return s.opts.Prefix + "request:" + id }
func (s *RedisStorage) indexKey() string           { return s.opts.Prefix + "index" }

// Find implements Storage.
func (s *RedisStorage) Find(ctx context.Context, id string) (*clockwork.Request, error) {
	data, err := s.client.Get(ctx, s.requestKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	return clockwork.DecodeRequest(data)
}

// FindMany implements Storage with a single MGET.
func (s *RedisStorage) FindMany(ctx context.Context, ids []string) ([]*clockwork.Request, error) {
	if len(ids) == 0 {
		return []*clockwork.Request{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.requestKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make([]*clockwork.Request, 0, len(ids))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		r, err := clockwork.DecodeRequest([]byte(str))
		if err != nil {
			s.logger.Warn().Err(err).Str("id", ids[i]).Msg("Skipping unreadable request")
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Latest implements Storage.
func (s *RedisStorage) Latest(ctx context.Context) (*clockwork.Request, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("redis index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.Find(ctx, ids[0])
}

// List implements Storage. Entries come from the stored payloads, so index
// members whose payload has expired are skipped.
func (s *RedisStorage) List(ctx context.Context) ([]clockwork.IndexEntry, error) {
	members, err := s.client.ZRevRangeWithScores(ctx, s.indexKey(), 0, constants.MaxIndexEntries-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis index: %w", err)
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		switch id := m.Member.(type) {
		case string:
			ids = append(ids, id)
		default:
			ids = append(ids, fmt.Sprint(id))
		}
	}

	requests, err := s.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	entries := make([]clockwork.IndexEntry, 0, len(requests))
	for _, r := range requests {
		entries = append(entries, r.Index())
	}
	s.logger.Trace().Int("members", len(members)).Int("entries", len(entries)).
		Str("index", s.indexKey()).Msg("Listed index")
	return entries, nil
}

var _ Store = (*RedisStorage)(nil)
