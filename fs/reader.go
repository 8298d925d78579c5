package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/officequotes"
)

// Compile-time interface verification.
var (
	_ officequotes.CorpusLoader = (*CorpusLoader)(nil)
	_ officequotes.Source       = (*Source)(nil)
)

// CorpusLoader loads a corpus from a data.json file.
type CorpusLoader struct {
	path string
}

// NewCorpusLoader creates a CorpusLoader for the file at path.
func NewCorpusLoader(path string) *CorpusLoader {
	return &CorpusLoader{path: path}
}

// LoadCorpus reads and decodes the corpus file. Episodes are placed at the
// coordinates they declare; the result always has the full corpus shape.
func (l *CorpusLoader) LoadCorpus(ctx context.Context) (officequotes.Corpus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raw [][]*officequotes.Episode
	if err := readJSON(l.path, &raw); err != nil {
		return nil, err
	}
	corpus := officequotes.NewCorpus()
	for _, season := range raw {
		for _, ep := range season {
			if ep == nil {
				continue
			}
			if err := corpus.Set(ep); err != nil {
				return nil, err
			}
		}
	}
	return corpus, nil
}

// Source reads records from a published tree on disk.
type Source struct {
	dir string
}

// NewSource creates a Source for the tree at dir.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

func (s *Source) FetchEpisode(ctx context.Context, season, episode int) (officequotes.Record, error) {
	var rec officequotes.Record
	if err := s.read(ctx, EpisodePath(season, episode), &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Source) FetchEpisodes(ctx context.Context) (officequotes.EpisodeBatch, error) {
	var batch officequotes.EpisodeBatch
	if err := s.read(ctx, EpisodesFile, &batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *Source) FetchCharacter(ctx context.Context, id string) (officequotes.Record, error) {
	if filepath.Base(id) != id {
		return nil, officequotes.Errorf(officequotes.EINVALID, "invalid character id %q", id)
	}
	var rec officequotes.Record
	if err := s.read(ctx, CharacterPath(id), &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Source) FetchCharacters(ctx context.Context) (map[string]officequotes.Record, error) {
	var characters map[string]officequotes.Record
	if err := s.read(ctx, CharactersFile, &characters); err != nil {
		return nil, err
	}
	return characters, nil
}

func (s *Source) read(ctx context.Context, relPath string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return readJSON(filepath.Join(s.dir, relPath), v)
}

// readJSON decodes the file at path into v. A missing file is ENOTFOUND
// and an undecodable one EUNAVAILABLE.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return officequotes.Errorf(officequotes.ENOTFOUND, "%s not found", path)
	} else if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return officequotes.Errorf(officequotes.EUNAVAILABLE, "decoding %s: %v", path, err)
	}
	return nil
}
