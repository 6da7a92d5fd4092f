package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	serrors "github.com/matzehuels/stacktile/pkg/errors"
)

const (
	redisKeyPrefix = "stacktile:snapshot:"
	redisIndexKey  = "stacktile:snapshots"
)

// RedisStore keeps each record in a hash and indexes IDs in a sorted set
// scored by creation time.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr ("host:port") and pings it.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	if err := serrors.ValidateAddr(addr); err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	err := retry(ctx, connectAttempts, connectDelay, func(ctx context.Context) error {
		return transient(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, serrors.Wrap(serrors.ErrCodeStoreUnavailable, err, "redis at %s", addr)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, data []byte) (Record, error) {
	rec, err := newRecord(name, data)
	if err != nil {
		return Record{}, err
	}
	ts := rec.CreatedAt.UnixNano()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisKeyPrefix+rec.ID,
			"name", rec.Name,
			"created_at", strconv.FormatInt(ts, 10),
			"data", string(rec.Data))
		pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(ts), Member: rec.ID})
		return nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("save snapshot: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) Load(ctx context.Context, ref string) (Record, error) {
	rec, err := s.get(ctx, ref)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}

	ids, err := s.client.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return Record{}, fmt.Errorf("read index: %w", err)
	}
	for _, id := range ids {
		name, err := s.client.HGet(ctx, redisKeyPrefix+id, "name").Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return Record{}, fmt.Errorf("read snapshot %s: %w", id, err)
		}
		if name == ref {
			return s.get(ctx, id)
		}
	}
	return Record{}, notFound(ref)
}

func (s *RedisStore) get(ctx context.Context, id string) (Record, error) {
	fields, err := s.client.HGetAll(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return Record{}, fmt.Errorf("read snapshot %s: %w", id, err)
	}
	if len(fields) == 0 {
		return Record{}, notFound(id)
	}
	ts, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("snapshot %s: bad timestamp: %w", id, err)
	}
	return Record{
		ID:        id,
		Name:      fields["name"],
		CreatedAt: time.Unix(0, ts).UTC(),
		Data:      []byte(fields["data"]),
	}, nil
}

func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	ids, err := s.client.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rec.Data = nil
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, ref string) error {
	rec, err := s.Load(ctx, ref)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKeyPrefix+rec.ID)
		pipe.ZRem(ctx, redisIndexKey, rec.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
