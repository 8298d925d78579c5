package officequotes

import (
	"context"
	"maps"
	"slices"
)

// SeasonCount is the number of seasons in the corpus.
const SeasonCount = 9

// episodeCounts holds the number of episodes in each season, indexed by season-1.
var episodeCounts = [SeasonCount]int{6, 22, 23, 14, 26, 24, 24, 24, 23}

// EpisodeCount returns the number of episodes in a season.
// Returns 0 for seasons outside 1..SeasonCount.
func EpisodeCount(season int) int {
	if season < 1 || season > SeasonCount {
		return 0
	}
	return episodeCounts[season-1]
}

// IsValidEpisode reports whether (season, episode) addresses an episode of the corpus.
func IsValidEpisode(season, episode int) bool {
	return season >= 1 && season <= SeasonCount && episode >= 1 && episode <= EpisodeCount(season)
}

// IsValidSeason reports whether season addresses a season of the corpus.
func IsValidSeason(season int) bool {
	return IsValidEpisode(season, 1)
}

// Quote is a single line of dialogue.
type Quote struct {
	Speaker     string            `json:"speaker"`
	Text        string            `json:"text"`
	IsAnnotated bool              `json:"isAnnotated,omitempty"`
	Character   string            `json:"character,omitempty"`
	Characters  map[string]string `json:"characters,omitempty"` // character id -> speaker text, annotated quotes only
	Deleted     bool              `json:"deleted,omitempty"`
}

// CharacterIDs returns the ids of the characters speaking the quote.
func (q *Quote) CharacterIDs() []string {
	if q.IsAnnotated {
		return slices.Sorted(maps.Keys(q.Characters))
	}
	if q.Character == "" {
		return nil
	}
	return []string{q.Character}
}

// Scene is an ordered sequence of quotes.
type Scene struct {
	Quotes  []Quote `json:"quotes"`
	Deleted int     `json:"deleted,omitempty"` // deleted scene number, 0 for aired scenes
}

// EpisodeCharacter summarizes a character's presence in one episode.
type EpisodeCharacter struct {
	Name        string `json:"name"`
	Appearances int    `json:"appearances"`
}

// Episode is a fully loaded episode, including all of its scenes.
type Episode struct {
	Title         string                      `json:"title"`
	Description   string                      `json:"description,omitempty"`
	SeasonNumber  int                         `json:"seasonNumber"`
	EpisodeNumber int                         `json:"episodeNumber"`
	Characters    map[string]EpisodeCharacter `json:"characters,omitempty"`
	Scenes        []Scene                     `json:"scenes"`
}

// Corpus holds every episode of the series, indexed [season-1][episode-1].
// Missing episodes are nil.
type Corpus [][]*Episode

// NewCorpus returns an empty corpus shaped by the episode counts.
func NewCorpus() Corpus {
	c := make(Corpus, SeasonCount)
	for i := range c {
		c[i] = make([]*Episode, episodeCounts[i])
	}
	return c
}

// Set stores an episode at its own coordinate.
// Returns EINVALID if the episode numbers are outside the corpus.
func (c Corpus) Set(ep *Episode) error {
	if !IsValidEpisode(ep.SeasonNumber, ep.EpisodeNumber) {
		return Errorf(EINVALID, "invalid episode coordinate %d/%d", ep.SeasonNumber, ep.EpisodeNumber)
	}
	c[ep.SeasonNumber-1][ep.EpisodeNumber-1] = ep
	return nil
}

// Episode returns the episode at (season, episode), or nil if absent.
func (c Corpus) Episode(season, episode int) *Episode {
	if season < 1 || season > len(c) {
		return nil
	}
	eps := c[season-1]
	if episode < 1 || episode > len(eps) {
		return nil
	}
	return eps[episode-1]
}

// Scene returns the 1-based scene of an episode.
// Returns ENOTFOUND if the episode or scene does not exist.
func (c Corpus) Scene(season, episode, scene int) (*Scene, error) {
	ep := c.Episode(season, episode)
	if ep == nil {
		return nil, Errorf(ENOTFOUND, "episode %d/%d not found", season, episode)
	}
	if scene < 1 || scene > len(ep.Scenes) {
		return nil, Errorf(ENOTFOUND, "scene %d of episode %d/%d not found", scene, season, episode)
	}
	return &ep.Scenes[scene-1], nil
}

// Totals counts the items present in a corpus.
type Totals struct {
	Seasons  int `json:"season"`
	Episodes int `json:"episode"`
	Scenes   int `json:"scene"`
	Quotes   int `json:"quote"`
}

// Totals returns the number of seasons, episodes, scenes and quotes in the corpus.
func (c Corpus) Totals() Totals {
	var t Totals
	t.Seasons = len(c)
	for _, season := range c {
		for _, ep := range season {
			if ep == nil {
				continue
			}
			t.Episodes++
			t.Scenes += len(ep.Scenes)
			for _, sc := range ep.Scenes {
				t.Quotes += len(sc.Quotes)
			}
		}
	}
	return t
}

// Appearances counts quotes per character id across the corpus.
func (c Corpus) Appearances() map[string]int {
	counts := make(map[string]int)
	for _, season := range c {
		for _, ep := range season {
			if ep == nil {
				continue
			}
			for _, sc := range ep.Scenes {
				for i := range sc.Quotes {
					for _, id := range sc.Quotes[i].CharacterIDs() {
						counts[id]++
					}
				}
			}
		}
	}
	return counts
}

// Character summarizes a character across the whole corpus.
type Character struct {
	Name        string `json:"name"`
	Appearances int    `json:"appearances"`
}

// Characters returns every speaking character keyed by id. Names come from
// episode character lists, then from annotated speaker text, then the id.
func (c Corpus) Characters() map[string]Character {
	counts := c.Appearances()
	names := make(map[string]string, len(counts))
	for _, season := range c {
		for _, ep := range season {
			if ep == nil {
				continue
			}
			for id, ch := range ep.Characters {
				if names[id] == "" && ch.Name != "" {
					names[id] = ch.Name
				}
			}
		}
	}
	for _, season := range c {
		for _, ep := range season {
			if ep == nil {
				continue
			}
			for _, sc := range ep.Scenes {
				for _, q := range sc.Quotes {
					for id, text := range q.Characters {
						if names[id] == "" && text != "" {
							names[id] = text
						}
					}
				}
			}
		}
	}
	out := make(map[string]Character, len(counts))
	for id, n := range counts {
		name := names[id]
		if name == "" {
			name = id
		}
		out[id] = Character{Name: name, Appearances: n}
	}
	return out
}

// CorpusLoader loads the full corpus from a backing store.
// Loading must be deterministic: repeated loads return equal content.
type CorpusLoader interface {
	LoadCorpus(ctx context.Context) (Corpus, error)
}

// CorpusService provides read access to a loaded corpus.
type CorpusService interface {
	// Corpus returns the whole corpus. Callers must not modify it.
	Corpus(ctx context.Context) (Corpus, error)

	// Episode returns one episode.
	// Returns ENOTFOUND if the corpus has no such episode.
	Episode(ctx context.Context, season, episode int) (*Episode, error)

	// Totals returns the corpus item counts.
	Totals(ctx context.Context) (Totals, error)

	// Characters returns character ids by descending appearances.
	Characters(ctx context.Context) ([]string, error)

	// Character returns a character with the first page of its quotes.
	// Returns ENOTFOUND if the character never speaks.
	Character(ctx context.Context, id string) (*CharacterProfile, error)

	// CharacterQuotes returns one 1-based page of a character's quotes, or
	// all of them when page is 0.
	// Returns ENOTFOUND if the character never speaks.
	CharacterQuotes(ctx context.Context, id string, page int) ([]CharacterQuote, error)
}

// EpisodeSummary is an episode without its scenes.
type EpisodeSummary struct {
	Title         string                      `json:"title"`
	Description   string                      `json:"description,omitempty"`
	SeasonNumber  int                         `json:"seasonNumber"`
	EpisodeNumber int                         `json:"episodeNumber"`
	Characters    map[string]EpisodeCharacter `json:"characters,omitempty"`
}

// Summary returns the episode without its scenes.
func (e *Episode) Summary() *EpisodeSummary {
	return &EpisodeSummary{
		Title:         e.Title,
		Description:   e.Description,
		SeasonNumber:  e.SeasonNumber,
		EpisodeNumber: e.EpisodeNumber,
		Characters:    e.Characters,
	}
}

// Summaries returns every episode without scenes, shaped like the corpus.
// Missing episodes are nil.
func (c Corpus) Summaries() [][]*EpisodeSummary {
	out := make([][]*EpisodeSummary, len(c))
	for i, season := range c {
		out[i] = make([]*EpisodeSummary, len(season))
		for j, ep := range season {
			if ep != nil {
				out[i][j] = ep.Summary()
			}
		}
	}
	return out
}
