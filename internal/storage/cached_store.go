package storage

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// CachedStore puts a cache (usually a RedisStore with a TTL) in front of a
// durable store. Reads fill the cache on a miss; writes go to the durable
// store and invalidate the cached copy. Cache failures never fail a call.
type CachedStore struct {
	durable Store
	cache   Store
	sfg     singleflight.Group
	log     zerolog.Logger
}

func NewCachedStore(durable, cache Store, log zerolog.Logger) *CachedStore {
	return &CachedStore{
		durable: durable,
		cache:   cache,
		log:     log.With().Str("component", "storage_cache").Logger(),
	}
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.cache.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		s.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	}

	// Concurrent misses for one key share a single durable read. The read
	// is detached from the first caller so its cancellation cannot fail the
	// others; each caller still stops waiting when its own ctx ends.
	sctx := context.WithoutCancel(ctx)
	ch := s.sfg.DoChan(key, func() (any, error) {
		data, err := s.durable.Get(sctx, key)
		if err != nil {
			return nil, err
		}
		if errSet := s.cache.Set(sctx, key, data); errSet != nil {
			s.log.Warn().Err(errSet).Str("key", key).Msg("cache fill failed")
		}
		return data, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CachedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.durable.Set(ctx, key, value); err != nil {
		return err
	}
	s.invalidate(ctx, key)
	return nil
}

func (s *CachedStore) Remove(ctx context.Context, key string) error {
	if err := s.durable.Remove(ctx, key); err != nil {
		return err
	}
	s.invalidate(ctx, key)
	return nil
}

func (s *CachedStore) Close() error {
	return errors.Join(s.durable.Close(), s.cache.Close())
}

func (s *CachedStore) invalidate(ctx context.Context, key string) {
	if err := s.cache.Remove(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache invalidate failed")
	}
}
