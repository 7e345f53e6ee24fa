package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"taskflow/internal/logger"
)

const redisPrefix = "taskflow:cache:"

// Redis is a Cache shared between server instances. Each tag is a Redis set
// holding the keys it covers.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis connects to the server at url (redis://host:port/db) and pings it.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("Redis connected", "addr", opt.Addr)
	return &Redis{rdb: rdb, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.rdb.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %q: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value any, tags ...string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %q: %w", key, err)
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		r.queueSet(ctx, pipe, key, data, tags)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// SetIfCurrent watches the generation counters of tags, so an Invalidate
// landing between the check and the write aborts the transaction.
func (r *Redis) SetIfCurrent(ctx context.Context, version uint64, key string, value any, tags ...string) (bool, error) {
	if len(tags) == 0 {
		return true, r.Set(ctx, key, value)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode cache entry %q: %w", key, err)
	}

	gens := genKeys(tags)
	stored := false
	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := sumGens(tx.MGet(ctx, gens...))
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			r.queueSet(ctx, pipe, key, data, tags)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, gens...)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis set %q: %w", key, err)
	}
	return stored, nil
}

func (r *Redis) Version(ctx context.Context, tags ...string) (uint64, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	v, err := sumGens(r.rdb.MGet(ctx, genKeys(tags)...))
	if err != nil {
		return 0, fmt.Errorf("redis version: %w", err)
	}
	return v, nil
}

// Invalidate bumps the generation before deleting, so a SetIfCurrent racing
// with it either fails its check or is deleted here.
func (r *Redis) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		if err := r.rdb.Incr(ctx, genKey(tag)).Err(); err != nil {
			return fmt.Errorf("redis bump %q: %w", tag, err)
		}
		keys, err := r.rdb.SMembers(ctx, tagKey(tag)).Result()
		if err != nil {
			return fmt.Errorf("redis tag %q: %w", tag, err)
		}
		doomed := make([]string, 0, len(keys)+1)
		for _, key := range keys {
			doomed = append(doomed, redisPrefix+key)
		}
		doomed = append(doomed, tagKey(tag))
		if err := r.rdb.Del(ctx, doomed...).Err(); err != nil {
			return fmt.Errorf("redis invalidate %q: %w", tag, err)
		}
	}
	return nil
}

func (r *Redis) queueSet(ctx context.Context, pipe redis.Pipeliner, key string, data []byte, tags []string) {
	pipe.Set(ctx, redisPrefix+key, data, r.ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, tagKey(tag), key)
		if r.ttl > 0 {
			pipe.Expire(ctx, tagKey(tag), r.ttl)
		}
	}
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func tagKey(tag string) string {
	return redisPrefix + "tag:" + tag
}

func genKey(tag string) string {
	return redisPrefix + "gen:" + tag
}

func genKeys(tags []string) []string {
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = genKey(tag)
	}
	return keys
}

// sumGens adds up INCR counters read with MGET. Missing counters are zero.
func sumGens(cmd *redis.SliceCmd) (uint64, error) {
	vals, err := cmd.Result()
	if err != nil {
		return 0, err
	}
	var sum uint64
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("generation %q: %w", s, err)
		}
		sum += n
	}
	return sum, nil
}
