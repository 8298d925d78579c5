// Package window answers quote window queries against a corpus that is
// loaded lazily, once per process, from a backing store.
package window

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/fwojciec/officequotes"
	"golang.org/x/sync/singleflight"
)

// Compile-time interface verification.
var (
	_ officequotes.WindowService = (*Service)(nil)
	_ officequotes.CorpusService = (*Service)(nil)
)

// Service implements officequotes.WindowService over a lazily loaded corpus.
// The first request loads the corpus; concurrent requests wait for that same
// load. A failed load is not cached, so a later request tries again.
// It is safe for concurrent use by multiple goroutines.
type Service struct {
	loader officequotes.CorpusLoader
	corpus atomic.Pointer[officequotes.Corpus]
	index  atomic.Pointer[officequotes.CharacterIndex]
	group  singleflight.Group
}

// NewService creates a Service backed by loader.
func NewService(loader officequotes.CorpusLoader) *Service {
	return &Service{loader: loader}
}

// Corpus returns the cached corpus, loading it on first use.
func (s *Service) Corpus(ctx context.Context) (officequotes.Corpus, error) {
	if c := s.corpus.Load(); c != nil {
		return *c, nil
	}
	ch := s.group.DoChan("corpus", func() (any, error) {
		if c := s.corpus.Load(); c != nil {
			return *c, nil
		}
		c, err := s.loader.LoadCorpus(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.index.Store(officequotes.NewCharacterIndex(c))
		s.corpus.Store(&c)
		return c, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, loadError(res.Err)
		}
		return res.Val.(officequotes.Corpus), nil
	}
}

// Loaded reports whether the corpus has been loaded.
func (s *Service) Loaded() bool {
	return s.corpus.Load() != nil
}

// Window returns the quotes surrounding the requested quote.
func (s *Service) Window(ctx context.Context, req officequotes.WindowRequest) (*officequotes.Window, error) {
	corpus, err := s.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	scene, err := corpus.Scene(req.Season, req.Episode, req.Scene)
	if err != nil {
		return nil, err
	}
	return officequotes.NewWindow(scene, req)
}

// Episode returns a loaded episode.
// Returns ENOTFOUND if the corpus has no such episode.
func (s *Service) Episode(ctx context.Context, season, episode int) (*officequotes.Episode, error) {
	corpus, err := s.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	ep := corpus.Episode(season, episode)
	if ep == nil {
		return nil, officequotes.Errorf(officequotes.ENOTFOUND, "episode %d/%d not found", season, episode)
	}
	return ep, nil
}

// Totals returns the corpus item counts.
func (s *Service) Totals(ctx context.Context) (officequotes.Totals, error) {
	corpus, err := s.Corpus(ctx)
	if err != nil {
		return officequotes.Totals{}, err
	}
	return corpus.Totals(), nil
}

// characters returns the index built alongside the loaded corpus.
func (s *Service) characters(ctx context.Context) (*officequotes.CharacterIndex, error) {
	if _, err := s.Corpus(ctx); err != nil {
		return nil, err
	}
	return s.index.Load(), nil
}

// Characters returns character ids by descending appearances.
func (s *Service) Characters(ctx context.Context) ([]string, error) {
	idx, err := s.characters(ctx)
	if err != nil {
		return nil, err
	}
	return idx.IDs(), nil
}

// Character returns a character with the first page of its quotes.
func (s *Service) Character(ctx context.Context, id string) (*officequotes.CharacterProfile, error) {
	idx, err := s.characters(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Profile(id)
}

// CharacterQuotes returns one page of a character's quotes, or all of them
// when page is 0.
func (s *Service) CharacterQuotes(ctx context.Context, id string, page int) ([]officequotes.CharacterQuote, error) {
	idx, err := s.characters(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Quotes(id, page)
}

// loadError reports backing store failures as EUNAVAILABLE unless they
// already carry an application code.
func loadError(err error) error {
	if officequotes.ErrorCode(err) != officequotes.EINTERNAL {
		return fmt.Errorf("load corpus: %w", err)
	}
	return fmt.Errorf("load corpus: %w", officequotes.Errorf(officequotes.EUNAVAILABLE, "%v", err))
}
