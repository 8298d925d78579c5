// Package cache provides the client-side corpus cache: a store of merged
// episode and character records with per-episode load state, and a
// coordinator that hydrates it from a remote source on demand.
package cache

import (
	"log/slog"
	"sync"

	"github.com/fwojciec/officequotes"
)

// Store is an in-memory cache of episode slots and character records.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	mu         sync.RWMutex
	episodes   [][]*officequotes.EpisodeSlot
	characters map[string]officequotes.Record
	preloaded  officequotes.PreloadStatus
	logger     *slog.Logger
}

// NewStore creates a Store holding an unloaded slot for every valid episode.
// A nil logger discards log output.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	episodes := make([][]*officequotes.EpisodeSlot, officequotes.SeasonCount)
	for s := range episodes {
		season := s + 1
		episodes[s] = make([]*officequotes.EpisodeSlot, officequotes.EpisodeCount(season))
		for e := range episodes[s] {
			episodes[s][e] = &officequotes.EpisodeSlot{Season: season, Episode: e + 1}
		}
	}
	return &Store{
		episodes:   episodes,
		characters: make(map[string]officequotes.Record),
		logger:     logger,
	}
}

// slot returns the slot at a coordinate, or nil if the coordinate is invalid.
// Callers must hold mu.
func (s *Store) slot(season, episode int) *officequotes.EpisodeSlot {
	if !officequotes.IsValidEpisode(season, episode) {
		return nil
	}
	return s.episodes[season-1][episode-1]
}

// IsFetched reports whether the episode has been fully loaded.
// Invalid coordinates report false; callers are expected to validate first.
func (s *Store) IsFetched(season, episode int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot := s.slot(season, episode)
	return slot != nil && slot.Loaded
}

// Episode returns a copy of the merged record of a loaded episode.
// The bool result is false while the episode is not loaded.
func (s *Store) Episode(season, episode int) (officequotes.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot := s.slot(season, episode)
	if slot == nil || !slot.Loaded {
		return nil, false
	}
	return slot.Record.Clone(), true
}

// EpisodeCount returns the number of episodes in a season.
func (s *Store) EpisodeCount(season int) int {
	return officequotes.EpisodeCount(season)
}

// IsValidEpisode reports whether (season, episode) addresses an episode.
func (s *Store) IsValidEpisode(season, episode int) bool {
	return officequotes.IsValidEpisode(season, episode)
}

// IsValidSeason reports whether season addresses a season.
func (s *Store) IsValidSeason(season int) bool {
	return officequotes.IsValidSeason(season)
}

// Character returns a copy of a cached character record.
// The bool result is false if the character has never been merged.
func (s *Store) Character(id string) (officequotes.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.characters[id]
	return rec.Clone(), ok
}

// SortedCharacters returns cached character ids by descending appearances.
func (s *Store) SortedCharacters() []string {
	return s.Snapshot().SortedCharacters()
}

// Preloaded returns which collections have been bulk loaded.
func (s *Store) Preloaded() officequotes.PreloadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preloaded
}

// MergeEpisode folds a payload into the slot at (season, episode).
// Returns EINVALID if the coordinate is not part of the corpus.
func (s *Store) MergeEpisode(season, episode int, rec officequotes.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := s.slot(season, episode)
	if slot == nil {
		return officequotes.Errorf(officequotes.EINVALID, "invalid episode coordinate %d/%d", season, episode)
	}
	slot.Merge(rec)
	return nil
}

// MergeEpisodes folds a bulk payload into the store entry by entry.
// Null entries and entries outside the corpus are skipped and logged.
// Returns the number of merged entries.
func (s *Store) MergeEpisodes(batch officequotes.EpisodeBatch) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := 0
	for si, season := range batch {
		for ei, rec := range season {
			slot := s.slot(si+1, ei+1)
			switch {
			case rec == nil:
				s.logger.Warn("missing episode", "season", si+1, "episode", ei+1)
				continue
			case slot == nil:
				s.logger.Warn("episode outside corpus", "season", si+1, "episode", ei+1)
				continue
			}
			slot.Merge(rec)
			merged++
		}
	}
	return merged
}

// MergeCharacter folds a payload into a character record, creating it if needed.
func (s *Store) MergeCharacter(id string, rec officequotes.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[id] = officequotes.Merge(s.characters[id], rec)
}

// MergeCharacters folds a bulk id->record payload into the store.
// Null records are skipped and logged.
func (s *Store) MergeCharacters(characters map[string]officequotes.Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := 0
	for id, rec := range characters {
		if rec == nil {
			s.logger.Warn("missing character", "id", id)
			continue
		}
		s.characters[id] = officequotes.Merge(s.characters[id], rec)
		merged++
	}
	return merged
}

// SetEpisodesPreloaded marks the episode collection as bulk loaded.
func (s *Store) SetEpisodesPreloaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preloaded.Episodes = true
}

// SetCharactersPreloaded marks the character collection as bulk loaded.
func (s *Store) SetCharactersPreloaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preloaded.Characters = true
}

// Snapshot returns an immutable copy of the store's current state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &Snapshot{
		episodes:   make([][]officequotes.EpisodeSlot, len(s.episodes)),
		characters: make(map[string]officequotes.Record, len(s.characters)),
		preloaded:  s.preloaded,
	}
	for i, season := range s.episodes {
		snap.episodes[i] = make([]officequotes.EpisodeSlot, len(season))
		for j, slot := range season {
			snap.episodes[i][j] = *slot
			snap.episodes[i][j].Record = slot.Record.Clone()
		}
	}
	for id, rec := range s.characters {
		snap.characters[id] = rec.Clone()
	}
	return snap
}
