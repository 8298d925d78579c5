package mock

import (
	"context"

	"github.com/fwojciec/officequotes"
)

var _ officequotes.Source = (*Source)(nil)

// Source is a mock implementation of officequotes.Source.
type Source struct {
	FetchEpisodeFn    func(ctx context.Context, season, episode int) (officequotes.Record, error)
	FetchEpisodesFn   func(ctx context.Context) (officequotes.EpisodeBatch, error)
	FetchCharacterFn  func(ctx context.Context, id string) (officequotes.Record, error)
	FetchCharactersFn func(ctx context.Context) (map[string]officequotes.Record, error)
}

func (s *Source) FetchEpisode(ctx context.Context, season, episode int) (officequotes.Record, error) {
	return s.FetchEpisodeFn(ctx, season, episode)
}

func (s *Source) FetchEpisodes(ctx context.Context) (officequotes.EpisodeBatch, error) {
	return s.FetchEpisodesFn(ctx)
}

func (s *Source) FetchCharacter(ctx context.Context, id string) (officequotes.Record, error) {
	return s.FetchCharacterFn(ctx, id)
}

func (s *Source) FetchCharacters(ctx context.Context) (map[string]officequotes.Record, error) {
	return s.FetchCharactersFn(ctx)
}
