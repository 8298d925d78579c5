package officequotes

import (
	"context"
	"encoding/json"
	"maps"
	"math"
	"sort"
)

// Record is a set of attributes retrieved for an episode or a character.
// Values are whatever the wire decoding produced and are treated as immutable.
type Record map[string]any

// Keys used with special meaning in records.
const (
	ScenesKey      = "scenes"
	AppearancesKey = "appearances"
)

// Merge returns a new record holding every key of existing, overwritten by
// every key of incoming. Values under a shared key are replaced, not combined.
// Neither argument is modified.
func Merge(existing, incoming Record) Record {
	merged := make(Record, len(existing)+len(incoming))
	maps.Copy(merged, existing)
	maps.Copy(merged, incoming)
	return merged
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// HasScenes reports whether the record carries a scenes attribute.
func (r Record) HasScenes() bool {
	_, ok := r[ScenesKey]
	return ok
}

// Title returns the record's title attribute, or "" if absent.
func (r Record) Title() string {
	s, _ := r["title"].(string)
	return s
}

// Appearances returns the record's numeric appearances attribute.
// Missing, non-numeric and NaN values count as 0.
func (r Record) Appearances() float64 {
	var n float64
	switch v := r[AppearancesKey].(type) {
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case float64:
		n = v
	case json.Number:
		n, _ = v.Float64()
	}
	if math.IsNaN(n) {
		return 0
	}
	return n
}

// EpisodeSlot is the cached state of one episode coordinate.
type EpisodeSlot struct {
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
	Loaded  bool   `json:"loaded"`
	Record  Record `json:"record"`
}

// Merge folds incoming into the slot's record. A payload carrying scenes
// marks the slot loaded; a loaded slot never becomes unloaded.
func (s *EpisodeSlot) Merge(incoming Record) {
	s.Record = Merge(s.Record, incoming)
	if incoming.HasScenes() {
		s.Loaded = true
	}
}

// PreloadStatus reports which collections have been bulk loaded.
type PreloadStatus struct {
	Episodes   bool `json:"episodes"`
	Characters bool `json:"characters"`
}

// SortCharacters returns character ids ordered by descending appearances.
// Ties are ordered by ascending id so the result is deterministic.
func SortCharacters(characters map[string]Record) []string {
	ids := make([]string, 0, len(characters))
	for id := range characters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := characters[ids[i]].Appearances(), characters[ids[j]].Appearances()
		if a != b {
			return a > b
		}
		return ids[i] < ids[j]
	})
	return ids
}

// EpisodeBatch is the bulk episode payload: one slice per season, one record
// per episode position. A nil record marks an episode missing from the payload.
type EpisodeBatch [][]Record

// Source retrieves corpus data from the remote store.
type Source interface {
	// FetchEpisode retrieves one episode. The record carries scenes when complete.
	FetchEpisode(ctx context.Context, season, episode int) (Record, error)

	// FetchEpisodes retrieves summary records for every episode.
	FetchEpisodes(ctx context.Context) (EpisodeBatch, error)

	// FetchCharacter retrieves one character.
	// Returns ENOTFOUND if the character does not exist.
	FetchCharacter(ctx context.Context, id string) (Record, error)

	// FetchCharacters retrieves every character keyed by id.
	FetchCharacters(ctx context.Context) (map[string]Record, error)
}
