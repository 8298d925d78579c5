package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fwojciec/officequotes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Coordinator hydrates a Store from a Source. Concurrent requests for the
// same key share a single retrieval. A retrieval that has started always runs
// to completion and is committed to the store, even if every caller waiting
// on it has gone away. Failed retrievals leave the store untouched and are
// not retried.
type Coordinator struct {
	store  *Store
	source officequotes.Source
	logger *slog.Logger
	group  singleflight.Group
}

// NewCoordinator creates a Coordinator. A nil logger discards log output.
func NewCoordinator(store *Store, source officequotes.Source, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{store: store, source: source, logger: logger}
}

// Store returns the store the coordinator writes to.
func (c *Coordinator) Store() *Store {
	return c.store
}

// FetchEpisode ensures the episode is fully loaded. Already loaded episodes
// return immediately without I/O.
func (c *Coordinator) FetchEpisode(ctx context.Context, season, episode int) error {
	if !officequotes.IsValidEpisode(season, episode) {
		return officequotes.Errorf(officequotes.EINVALID, "invalid episode coordinate %d/%d", season, episode)
	}
	if c.store.IsFetched(season, episode) {
		return nil
	}

	key := fmt.Sprintf("episode/%d/%d", season, episode)
	return c.do(ctx, key, func(ctx context.Context) error {
		// A flight that finished between the check above and this one may have loaded it.
		if c.store.IsFetched(season, episode) {
			return nil
		}
		rec, err := c.source.FetchEpisode(ctx, season, episode)
		if err != nil {
			return sourceError(err, "fetch episode %d/%d", season, episode)
		}
		return c.store.MergeEpisode(season, episode, rec)
	})
}

// PreloadEpisodes retrieves every episode summary in one request and merges
// it into the store. The episodes preload flag is set only on success.
func (c *Coordinator) PreloadEpisodes(ctx context.Context) error {
	return c.do(ctx, "episodes", func(ctx context.Context) error {
		batch, err := c.source.FetchEpisodes(ctx)
		if err != nil {
			return sourceError(err, "preload episodes")
		}
		merged := c.store.MergeEpisodes(batch)
		c.store.SetEpisodesPreloaded()
		c.logger.Debug("episodes preloaded", "merged", merged)
		return nil
	})
}

// FetchCharacter retrieves one character and merges it into the store.
// Unlike episodes, characters are re-fetched on every call.
func (c *Coordinator) FetchCharacter(ctx context.Context, id string) error {
	if id == "" {
		return officequotes.Errorf(officequotes.EINVALID, "character id required")
	}
	return c.do(ctx, "character/"+id, func(ctx context.Context) error {
		rec, err := c.source.FetchCharacter(ctx, id)
		if err != nil {
			return sourceError(err, "fetch character %q", id)
		}
		c.store.MergeCharacter(id, rec)
		return nil
	})
}

// PreloadCharacters retrieves every character in one request and merges them
// into the store. The characters preload flag is set only on success.
func (c *Coordinator) PreloadCharacters(ctx context.Context) error {
	return c.do(ctx, "characters", func(ctx context.Context) error {
		characters, err := c.source.FetchCharacters(ctx)
		if err != nil {
			return sourceError(err, "preload characters")
		}
		merged := c.store.MergeCharacters(characters)
		c.store.SetCharactersPreloaded()
		c.logger.Debug("characters preloaded", "merged", merged)
		return nil
	})
}

// PreloadAll runs both bulk preloads concurrently and returns the first error.
func (c *Coordinator) PreloadAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.PreloadEpisodes(gctx) })
	g.Go(func() error { return c.PreloadCharacters(gctx) })
	return g.Wait()
}

// do runs fn once per key among concurrent callers. fn receives a context
// detached from cancellation so a started retrieval is always committed;
// the caller stops waiting when its own context is done.
func (c *Coordinator) do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return nil, fn(detached)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("shared retrieval", "key", key)
		}
		return res.Err
	}
}

// sourceError annotates a retrieval failure. Errors without an application
// code are reported as EUNAVAILABLE.
func sourceError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	var e *officequotes.Error
	if errors.As(err, &e) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w", msg, officequotes.Errorf(officequotes.EUNAVAILABLE, "%v", err))
}
