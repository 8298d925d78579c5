package mock

import (
	"context"

	"github.com/fwojciec/officequotes"
)

// Compile-time interface verification.
var (
	_ officequotes.CorpusLoader  = (*CorpusLoader)(nil)
	_ officequotes.WindowService = (*WindowService)(nil)
)

// CorpusLoader is a mock implementation of officequotes.CorpusLoader.
type CorpusLoader struct {
	LoadCorpusFn func(ctx context.Context) (officequotes.Corpus, error)
}

func (l *CorpusLoader) LoadCorpus(ctx context.Context) (officequotes.Corpus, error) {
	return l.LoadCorpusFn(ctx)
}

// WindowService is a mock implementation of officequotes.WindowService.
type WindowService struct {
	WindowFn func(ctx context.Context, req officequotes.WindowRequest) (*officequotes.Window, error)
}

func (s *WindowService) Window(ctx context.Context, req officequotes.WindowRequest) (*officequotes.Window, error) {
	return s.WindowFn(ctx, req)
}

var _ officequotes.CorpusService = (*CorpusService)(nil)

// CorpusService is a mock implementation of officequotes.CorpusService.
type CorpusService struct {
	CorpusFn  func(ctx context.Context) (officequotes.Corpus, error)
	EpisodeFn func(ctx context.Context, season, episode int) (*officequotes.Episode, error)
	TotalsFn  func(ctx context.Context) (officequotes.Totals, error)

	CharactersFn      func(ctx context.Context) ([]string, error)
	CharacterFn       func(ctx context.Context, id string) (*officequotes.CharacterProfile, error)
	CharacterQuotesFn func(ctx context.Context, id string, page int) ([]officequotes.CharacterQuote, error)
}

func (s *CorpusService) Corpus(ctx context.Context) (officequotes.Corpus, error) {
	return s.CorpusFn(ctx)
}

func (s *CorpusService) Episode(ctx context.Context, season, episode int) (*officequotes.Episode, error) {
	return s.EpisodeFn(ctx, season, episode)
}

func (s *CorpusService) Totals(ctx context.Context) (officequotes.Totals, error) {
	return s.TotalsFn(ctx)
}

func (s *CorpusService) Characters(ctx context.Context) ([]string, error) {
	return s.CharactersFn(ctx)
}

func (s *CorpusService) Character(ctx context.Context, id string) (*officequotes.CharacterProfile, error) {
	return s.CharacterFn(ctx, id)
}

func (s *CorpusService) CharacterQuotes(ctx context.Context, id string, page int) ([]officequotes.CharacterQuote, error) {
	return s.CharacterQuotesFn(ctx, id, page)
}
