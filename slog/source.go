package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/officequotes"
)

// Ensure LoggingSource implements officequotes.Source.
var _ officequotes.Source = (*LoggingSource)(nil)

// LoggingSource wraps a Source with logging of every retrieval.
type LoggingSource struct {
	next   officequotes.Source
	logger *slog.Logger
}

// NewLoggingSource creates a new LoggingSource.
func NewLoggingSource(next officequotes.Source, logger *slog.Logger) *LoggingSource {
	return &LoggingSource{next: next, logger: logger}
}

// FetchEpisode delegates to the wrapped source and logs the retrieval.
func (s *LoggingSource) FetchEpisode(ctx context.Context, season, episode int) (rec officequotes.Record, err error) {
	defer func(begin time.Time) {
		s.logger.Info("fetch episode",
			"season", season,
			"episode", episode,
			"scenes", rec.HasScenes(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchEpisode(ctx, season, episode)
}

// FetchEpisodes delegates to the wrapped source and logs the retrieval.
func (s *LoggingSource) FetchEpisodes(ctx context.Context) (batch officequotes.EpisodeBatch, err error) {
	defer func(begin time.Time) {
		s.logger.Info("fetch episodes",
			"seasons", len(batch),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchEpisodes(ctx)
}

// FetchCharacter delegates to the wrapped source and logs the retrieval.
func (s *LoggingSource) FetchCharacter(ctx context.Context, id string) (rec officequotes.Record, err error) {
	defer func(begin time.Time) {
		s.logger.Info("fetch character",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchCharacter(ctx, id)
}

// FetchCharacters delegates to the wrapped source and logs the retrieval.
func (s *LoggingSource) FetchCharacters(ctx context.Context) (characters map[string]officequotes.Record, err error) {
	defer func(begin time.Time) {
		s.logger.Info("fetch characters",
			"count", len(characters),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchCharacters(ctx)
}
