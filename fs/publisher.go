// Package fs provides file-based storage for the corpus: a publisher that
// writes the static JSON tree, and readers for a published tree.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/officequotes"
	"golang.org/x/sync/errgroup"
)

// Published file names.
const (
	EpisodesFile   = "episodes.json"
	CharactersFile = "characters.json"
	CorpusFile     = "data.json"
	CharacterDir   = "character"
)

// DefaultConcurrency is the default number of files written in parallel.
const DefaultConcurrency = 8

// EpisodePath returns the relative path of a full episode file.
func EpisodePath(season, episode int) string {
	return filepath.Join(fmt.Sprintf("%02d", season), fmt.Sprintf("%02d.json", episode))
}

// CharacterPath returns the relative path of a character file.
func CharacterPath(id string) string {
	return filepath.Join(CharacterDir, id+".json")
}

// Publisher writes a corpus as a static JSON tree with atomic update
// semantics. Files are written to baseDir/name.tmp, which replaces
// baseDir/name only once every file has been written.
type Publisher struct {
	baseDir     string
	name        string
	concurrency int
	fullCorpus  bool
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithConcurrency sets how many files are written in parallel.
func WithConcurrency(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithFullCorpus also writes the whole corpus to data.json, which is what
// CorpusLoader reads.
func WithFullCorpus() PublisherOption {
	return func(p *Publisher) {
		p.fullCorpus = true
	}
}

// NewPublisher creates a Publisher for baseDir/name.
func NewPublisher(baseDir, name string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		baseDir:     baseDir,
		name:        name,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) tempDir() string {
	return filepath.Join(p.baseDir, p.name+".tmp")
}

// Dir returns the directory the tree is published to.
func (p *Publisher) Dir() string {
	return filepath.Join(p.baseDir, p.name)
}

// Publish writes the tree and moves it into place. On failure the previous
// tree, if any, is left untouched.
func (p *Publisher) Publish(ctx context.Context, corpus officequotes.Corpus) error {
	if err := os.RemoveAll(p.tempDir()); err != nil {
		return err
	}
	if err := p.write(ctx, corpus); err != nil {
		_ = p.abort()
		return err
	}
	return p.commit()
}

func (p *Publisher) write(ctx context.Context, corpus officequotes.Corpus) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, season := range corpus {
		for _, ep := range season {
			if ep == nil {
				continue
			}
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return p.writeJSON(EpisodePath(ep.SeasonNumber, ep.EpisodeNumber), ep)
			})
		}
	}

	characters := corpus.Characters()
	for id, ch := range characters {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return p.writeJSON(CharacterPath(id), ch)
		})
	}

	g.Go(func() error { return p.writeJSON(EpisodesFile, corpus.Summaries()) })
	g.Go(func() error { return p.writeJSON(CharactersFile, characters) })
	if p.fullCorpus {
		g.Go(func() error { return p.writeJSON(CorpusFile, corpus) })
	}

	return g.Wait()
}

func (p *Publisher) writeJSON(relPath string, v any) error {
	fullPath := filepath.Join(p.tempDir(), relPath)

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", relPath, err)
	}
	return os.WriteFile(fullPath, data, 0644)
}

func (p *Publisher) commit() error {
	// Remove existing final directory if present
	if err := os.RemoveAll(p.Dir()); err != nil {
		return err
	}
	return os.Rename(p.tempDir(), p.Dir())
}

func (p *Publisher) abort() error {
	return os.RemoveAll(p.tempDir())
}
