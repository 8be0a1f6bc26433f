package session

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/shoplist/internal/list"
)

// load reads the four keys concurrently. Each key falls back to its seed
// value on its own; a failed read never fails the load.
func (s *Session) load(ctx context.Context) list.State {
	seed := list.SeedState()
	state := seed

	var g errgroup.Group
	g.Go(func() error {
		state.History = loadKey(ctx, s, KeyHistory, seed.History)
		return nil
	})
	g.Go(func() error {
		state.Templates = loadKey(ctx, s, KeyTemplates, seed.Templates)
		return nil
	})
	g.Go(func() error {
		state.Categories = loadKey(ctx, s, KeyCategories, seed.Categories)
		return nil
	})
	g.Go(func() error {
		state.Lists = loadKey(ctx, s, KeyLists, seed.Lists)
		return nil
	})
	_ = g.Wait()

	return list.Normalize(state)
}

func loadKey[T any](ctx context.Context, s *Session, key string, fallback T) T {
	raw, ok, err := s.gw.Get(ctx, key)
	if err != nil {
		s.logger.Warn("read failed, using defaults", "key", key, "error", err)
		s.loadFallback(key)
		return fallback
	}
	if !ok {
		s.logger.Debug("key not found, using defaults", "key", key)
		return fallback
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.logger.Warn("unparsable value, using defaults", "key", key, "error", err)
		s.loadFallback(key)
		return fallback
	}
	return v
}

func (s *Session) loadFallback(key string) {
	if s.metrics != nil {
		s.metrics.LoadFallback(key)
	}
}

