package cache

import "github.com/fwojciec/officequotes"

// Snapshot is a point-in-time copy of a Store. Derived views are computed
// from it on every call.
type Snapshot struct {
	episodes   [][]officequotes.EpisodeSlot
	characters map[string]officequotes.Record
	preloaded  officequotes.PreloadStatus
}

// Slot returns the slot at a coordinate. The bool result is false for
// coordinates outside the corpus.
func (s *Snapshot) Slot(season, episode int) (officequotes.EpisodeSlot, bool) {
	if !officequotes.IsValidEpisode(season, episode) {
		return officequotes.EpisodeSlot{}, false
	}
	return s.episodes[season-1][episode-1], true
}

// IsFetched reports whether the episode was loaded when the snapshot was taken.
func (s *Snapshot) IsFetched(season, episode int) bool {
	slot, ok := s.Slot(season, episode)
	return ok && slot.Loaded
}

// Season returns every slot of a season, or nil for an invalid season.
func (s *Snapshot) Season(season int) []officequotes.EpisodeSlot {
	if !officequotes.IsValidSeason(season) {
		return nil
	}
	return s.episodes[season-1]
}

// FetchedCount returns the number of loaded episodes.
func (s *Snapshot) FetchedCount() int {
	n := 0
	for _, season := range s.episodes {
		for _, slot := range season {
			if slot.Loaded {
				n++
			}
		}
	}
	return n
}

// Characters returns the character records keyed by id.
func (s *Snapshot) Characters() map[string]officequotes.Record {
	return s.characters
}

// SortedCharacters returns character ids by descending appearances.
func (s *Snapshot) SortedCharacters() []string {
	return officequotes.SortCharacters(s.characters)
}

// Preloaded returns which collections had been bulk loaded.
func (s *Snapshot) Preloaded() officequotes.PreloadStatus {
	return s.preloaded
}
