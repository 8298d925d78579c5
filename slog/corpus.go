package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/officequotes"
)

// Ensure LoggingCorpusLoader implements officequotes.CorpusLoader.
var _ officequotes.CorpusLoader = (*LoggingCorpusLoader)(nil)

// LoggingCorpusLoader wraps a CorpusLoader with logging of each load.
type LoggingCorpusLoader struct {
	next   officequotes.CorpusLoader
	logger *slog.Logger
}

// NewLoggingCorpusLoader creates a new LoggingCorpusLoader.
func NewLoggingCorpusLoader(next officequotes.CorpusLoader, logger *slog.Logger) *LoggingCorpusLoader {
	return &LoggingCorpusLoader{next: next, logger: logger}
}

// LoadCorpus delegates to the wrapped loader and logs the corpus size.
func (l *LoggingCorpusLoader) LoadCorpus(ctx context.Context) (c officequotes.Corpus, err error) {
	defer func(begin time.Time) {
		totals := c.Totals()
		l.logger.Info("corpus load",
			"episodes", totals.Episodes,
			"quotes", totals.Quotes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.LoadCorpus(ctx)
}
