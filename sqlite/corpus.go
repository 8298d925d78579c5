package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fwojciec/officequotes"
)

// Compile-time interface verification.
var _ officequotes.CorpusLoader = (*CorpusStore)(nil)

// CorpusStore persists the corpus in SQLite.
type CorpusStore struct {
	db *DB
}

// NewCorpusStore creates a new CorpusStore.
func NewCorpusStore(db *DB) *CorpusStore {
	return &CorpusStore{db: db}
}

// Import replaces the stored corpus with c in a single transaction.
func (s *CorpusStore) Import(ctx context.Context, c officequotes.Corpus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Episodes, scenes and quotes cascade from seasons.
	if _, err := tx.ExecContext(ctx, `DELETE FROM seasons`); err != nil {
		return err
	}

	for i, season := range c {
		if _, err := tx.ExecContext(ctx, `INSERT INTO seasons (number) VALUES (?)`, i+1); err != nil {
			return err
		}
		for _, ep := range season {
			if ep == nil {
				continue
			}
			if err := insertEpisode(ctx, tx, ep); err != nil {
				return fmt.Errorf("import episode %d/%d: %w", ep.SeasonNumber, ep.EpisodeNumber, err)
			}
		}
	}

	return tx.Commit()
}

func insertEpisode(ctx context.Context, tx *sql.Tx, ep *officequotes.Episode) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO episodes (season, number, title, description)
		VALUES (?, ?, ?, ?)
	`, ep.SeasonNumber, ep.EpisodeNumber, ep.Title, ep.Description); err != nil {
		return err
	}

	for id, ch := range ep.Characters {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO episode_characters (season, episode, character_id, name, appearances)
			VALUES (?, ?, ?, ?, ?)
		`, ep.SeasonNumber, ep.EpisodeNumber, id, ch.Name, ch.Appearances); err != nil {
			return err
		}
	}

	for i, sc := range ep.Scenes {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO scenes (season, episode, position, deleted)
			VALUES (?, ?, ?, ?)
		`, ep.SeasonNumber, ep.EpisodeNumber, i, sc.Deleted)
		if err != nil {
			return err
		}
		sceneID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for j, q := range sc.Quotes {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO quotes (scene_id, position, speaker, text, is_annotated, character_id, deleted)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, sceneID, j, q.Speaker, q.Text, q.IsAnnotated, q.Character, q.Deleted)
			if err != nil {
				return err
			}
			if len(q.Characters) == 0 {
				continue
			}
			quoteID, err := res.LastInsertId()
			if err != nil {
				return err
			}
			for id, speaker := range q.Characters {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO quote_characters (quote_id, character_id, speaker)
					VALUES (?, ?, ?)
				`, quoteID, id, speaker); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// LoadCorpus reads the whole corpus. Scenes and quotes keep their stored order.
func (s *CorpusStore) LoadCorpus(ctx context.Context) (officequotes.Corpus, error) {
	c := officequotes.NewCorpus()

	if err := s.loadEpisodes(ctx, c); err != nil {
		return nil, err
	}
	if err := s.loadEpisodeCharacters(ctx, c); err != nil {
		return nil, err
	}
	scenes, err := s.loadScenes(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := s.loadQuotes(ctx, scenes); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CorpusStore) loadEpisodes(ctx context.Context, c officequotes.Corpus) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT season, number, title, description
		FROM episodes
		ORDER BY season, number
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		ep := &officequotes.Episode{Scenes: []officequotes.Scene{}}
		if err := rows.Scan(&ep.SeasonNumber, &ep.EpisodeNumber, &ep.Title, &ep.Description); err != nil {
			return err
		}
		if err := c.Set(ep); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *CorpusStore) loadEpisodeCharacters(ctx context.Context, c officequotes.Corpus) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT season, episode, character_id, name, appearances
		FROM episode_characters
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var season, episode int
		var id string
		var ch officequotes.EpisodeCharacter
		if err := rows.Scan(&season, &episode, &id, &ch.Name, &ch.Appearances); err != nil {
			return err
		}
		ep := c.Episode(season, episode)
		if ep.Characters == nil {
			ep.Characters = make(map[string]officequotes.EpisodeCharacter)
		}
		ep.Characters[id] = ch
	}
	return rows.Err()
}

// loadScenes appends scenes to their episodes and returns them by row id.
func (s *CorpusStore) loadScenes(ctx context.Context, c officequotes.Corpus) (map[int64]*officequotes.Scene, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, season, episode, deleted
		FROM scenes
		ORDER BY season, episode, position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type ref struct {
		ep    *officequotes.Episode
		index int
	}
	refs := make(map[int64]ref)
	for rows.Next() {
		var id int64
		var season, episode, deleted int
		if err := rows.Scan(&id, &season, &episode, &deleted); err != nil {
			return nil, err
		}
		ep := c.Episode(season, episode)
		ep.Scenes = append(ep.Scenes, officequotes.Scene{Quotes: []officequotes.Quote{}, Deleted: deleted})
		refs[id] = ref{ep: ep, index: len(ep.Scenes) - 1}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Slices are final now, so element addresses are stable.
	scenes := make(map[int64]*officequotes.Scene, len(refs))
	for id, r := range refs {
		scenes[id] = &r.ep.Scenes[r.index]
	}
	return scenes, nil
}

func (s *CorpusStore) loadQuotes(ctx context.Context, scenes map[int64]*officequotes.Scene) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scene_id, speaker, text, is_annotated, character_id, deleted
		FROM quotes
		ORDER BY scene_id, position
	`)
	if err != nil {
		return err
	}

	type ref struct {
		scene *officequotes.Scene
		index int
	}
	refs := make(map[int64]ref)
	for rows.Next() {
		var id, sceneID int64
		var q officequotes.Quote
		if err := rows.Scan(&id, &sceneID, &q.Speaker, &q.Text, &q.IsAnnotated, &q.Character, &q.Deleted); err != nil {
			rows.Close()
			return err
		}
		sc := scenes[sceneID]
		sc.Quotes = append(sc.Quotes, q)
		refs[id] = ref{scene: sc, index: len(sc.Quotes) - 1}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT quote_id, character_id, speaker FROM quote_characters`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var quoteID int64
		var id, speaker string
		if err := rows.Scan(&quoteID, &id, &speaker); err != nil {
			return err
		}
		r := refs[quoteID]
		q := &r.scene.Quotes[r.index]
		if q.Characters == nil {
			q.Characters = make(map[string]string)
		}
		q.Characters[id] = speaker
	}
	return rows.Err()
}

// Totals counts the stored seasons, episodes, scenes and quotes.
func (s *CorpusStore) Totals(ctx context.Context) (officequotes.Totals, error) {
	var t officequotes.Totals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM seasons),
			(SELECT COUNT(*) FROM episodes),
			(SELECT COUNT(*) FROM scenes),
			(SELECT COUNT(*) FROM quotes)
	`).Scan(&t.Seasons, &t.Episodes, &t.Scenes, &t.Quotes)
	return t, err
}
