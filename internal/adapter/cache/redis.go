// Package cache keeps single listings in Redis in front of the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"bikemarket/internal/domain"

	"github.com/redis/go-redis/v9"
)

var _ domain.ListingCache = (*Redis)(nil)

// DefaultTTL applies when no TTL is configured.
const DefaultTTL = 10 * time.Minute

// Redis is a domain.ListingCache backed by a go-redis client.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// Options configure the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, opts Options) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisWithClient(client, opts.TTL), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

// errStale aborts a Set whose generation was overtaken by a Delete.
var errStale = errors.New("cache: generation changed")

// Get returns the cached listing, or nil on a miss, together with the
// current generation of id.
func (r *Redis) Get(ctx context.Context, id int64) (*domain.Listing, uint64, error) {
	vals, err := r.client.MGet(ctx, key(id), genKey(id)).Result()
	if err != nil {
		return nil, 0, err
	}
	gen, err := parseGen(vals[1])
	if err != nil {
		return nil, 0, err
	}
	data, ok := vals[0].(string)
	if !ok {
		return nil, gen, nil
	}
	var l domain.Listing
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		return nil, 0, err
	}
	return &l, gen, nil
}

// Set caches l for the configured TTL unless id was evicted since gen was
// read. A skipped write is not an error.
func (r *Redis) Set(ctx context.Context, l *domain.Listing, gen uint64) error {
	data, err := json.Marshal(l)
	if err != nil {
		return err
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey(l.ID)).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(l.ID), data, r.ttl)
			return nil
		})
		return err
	}, genKey(l.ID))
	if errors.Is(err, errStale) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Delete evicts a listing and advances its generation. The generation
// outlives the entry so that in-flight reads still see it move.
func (r *Redis) Delete(ctx context.Context, id int64) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key(id))
		pipe.Incr(ctx, genKey(id))
		pipe.Expire(ctx, genKey(id), 2*r.ttl)
		return nil
	})
	return err
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Both keys of a listing share a hash tag so WATCH/MULTI stays in one
// cluster slot.
func key(id int64) string {
	return "listing:{" + strconv.FormatInt(id, 10) + "}"
}

func genKey(id int64) string {
	return key(id) + ":gen"
}

func parseGen(v any) (uint64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}
