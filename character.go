package officequotes

import (
	"cmp"
	"slices"
)

// CharacterQuotesPageSize is the number of quotes in one page of a
// character's quotes.
const CharacterQuotesPageSize = 10

// CharacterQuote is a quote together with its 1-based position in the corpus.
type CharacterQuote struct {
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
	Scene   int    `json:"scene"`
	Quote   int    `json:"quote"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// CharacterProfile is a character with the first page of its quotes.
type CharacterProfile struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Appearances int              `json:"appearances"`
	Quotes      []CharacterQuote `json:"quotes"`
}

// CharacterQuotes returns every quote spoken by the character, in corpus order.
func (c Corpus) CharacterQuotes(id string) []CharacterQuote {
	return c.characterQuotes()[id]
}

func (c Corpus) characterQuotes() map[string][]CharacterQuote {
	out := make(map[string][]CharacterQuote)
	for si, season := range c {
		for ei, ep := range season {
			if ep == nil {
				continue
			}
			for sci, sc := range ep.Scenes {
				for qi := range sc.Quotes {
					q := &sc.Quotes[qi]
					for _, id := range q.CharacterIDs() {
						out[id] = append(out[id], CharacterQuote{
							Season:  si + 1,
							Episode: ei + 1,
							Scene:   sci + 1,
							Quote:   qi + 1,
							Speaker: q.Speaker,
							Text:    q.Text,
						})
					}
				}
			}
		}
	}
	return out
}

// CharacterIndex answers character queries over one corpus.
// It is immutable once built and safe for concurrent use.
type CharacterIndex struct {
	characters map[string]Character
	quotes     map[string][]CharacterQuote
	ranked     []string
}

// NewCharacterIndex indexes every speaking character of c.
func NewCharacterIndex(c Corpus) *CharacterIndex {
	idx := &CharacterIndex{
		characters: c.Characters(),
		quotes:     c.characterQuotes(),
	}
	idx.ranked = make([]string, 0, len(idx.characters))
	for id := range idx.characters {
		idx.ranked = append(idx.ranked, id)
	}
	slices.SortFunc(idx.ranked, func(a, b string) int {
		if n := cmp.Compare(idx.characters[b].Appearances, idx.characters[a].Appearances); n != 0 {
			return n
		}
		return cmp.Compare(a, b)
	})
	return idx
}

// IDs returns character ids by descending appearances, ties by id.
func (idx *CharacterIndex) IDs() []string {
	return slices.Clone(idx.ranked)
}

// Profile returns a character with the first page of its quotes.
// Returns ENOTFOUND if the character never speaks.
func (idx *CharacterIndex) Profile(id string) (*CharacterProfile, error) {
	ch, ok := idx.characters[id]
	if !ok {
		return nil, Errorf(ENOTFOUND, "character %q not found", id)
	}
	quotes, _ := idx.Quotes(id, 1)
	return &CharacterProfile{
		ID:          id,
		Name:        ch.Name,
		Appearances: ch.Appearances,
		Quotes:      quotes,
	}, nil
}

// Quotes returns one 1-based page of a character's quotes, or all of them
// when page is 0. Pages past the end are empty.
// Returns ENOTFOUND if the character never speaks and EINVALID for a
// negative page.
func (idx *CharacterIndex) Quotes(id string, page int) ([]CharacterQuote, error) {
	if page < 0 {
		return nil, Errorf(EINVALID, "Parameter 'page' must be a positive integer. (%d)", page)
	}
	if _, ok := idx.characters[id]; !ok {
		return nil, Errorf(ENOTFOUND, "character %q not found", id)
	}
	quotes := idx.quotes[id]
	if page == 0 {
		return slices.Clone(quotes), nil
	}
	start := (page - 1) * CharacterQuotesPageSize
	if start >= len(quotes) {
		return []CharacterQuote{}, nil
	}
	end := min(start+CharacterQuotesPageSize, len(quotes))
	return slices.Clone(quotes[start:end]), nil
}
