package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freebook/backend/internal/domain"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

// ProfileCache stores profiles under a per-profile generation. Delete bumps
// the generation, so an entry filled from a read that started before the
// delete lands under a key no later Get looks at.
type ProfileCache struct {
	R   *redis.Client
	TTL time.Duration
}

func genKey(id string) string { return "profile:gen:" + id }

func key(id string, gen int64) string { return "profile:" + id + ":" + strconv.FormatInt(gen, 10) }

// Get returns the cached profile and the generation it was looked up at.
// The generation is returned on a miss too and must be handed to Set. It is
// negative when the generation itself could not be read.
func (c *ProfileCache) Get(ctx context.Context, id string) (*domain.Profile, int64, error) {
	gen, err := c.R.Get(ctx, genKey(id)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, -1, err
	}

	b, err := c.R.Get(ctx, key(id, gen)).Bytes()
	if err != nil {
		return nil, gen, err
	}
	var p domain.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, gen, err
	}
	return &p, gen, nil
}

// Set fills the entry for generation gen. Negative generations are ignored.
func (c *ProfileCache) Set(ctx context.Context, p *domain.Profile, gen int64) error {
	if gen < 0 {
		return nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, key(p.ID, gen), b, c.TTL).Err()
}

func (c *ProfileCache) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := c.R.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Incr(ctx, genKey(id))
		}
		return nil
	})
	return err
}

// Nop is used when no redis address is configured. Every Get misses.
type Nop struct{}

func (Nop) Get(context.Context, string) (*domain.Profile, int64, error) { return nil, 0, redis.Nil }
func (Nop) Set(context.Context, *domain.Profile, int64) error          { return nil }
func (Nop) Delete(context.Context, ...string) error                    { return nil }
