// Package http provides HTTP implementations of officequotes.Source, which
// reads the published static corpus tree, and of the quote window server.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/officequotes"
	"golang.org/x/time/rate"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Source implements officequotes.Source at compile time.
var _ officequotes.Source = (*Source)(nil)

// Source retrieves corpus records from a published static tree:
//
//	{base}/SS/EE.json          one full episode
//	{base}/episodes.json       every episode summary, [season][episode]
//	{base}/characters.json     every character, keyed by id
//	{base}/character/ID.json   one character
type Source struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
}

// Option configures a Source.
type Option func(*Source)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		s.timeout = d
	}
}

// WithRateLimit limits requests to rps per second with no bursting.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64) Option {
	return func(s *Source) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewSource creates a Source reading the tree rooted at baseURL.
func NewSource(baseURL string, opts ...Option) *Source {
	s := &Source{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.client = &http.Client{
		Timeout: s.timeout,
	}

	return s
}

// FetchEpisode retrieves one full episode.
func (s *Source) FetchEpisode(ctx context.Context, season, episode int) (officequotes.Record, error) {
	var rec officequotes.Record
	if err := s.getJSON(ctx, fmt.Sprintf("/%02d/%02d.json", season, episode), &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// FetchEpisodes retrieves every episode summary.
func (s *Source) FetchEpisodes(ctx context.Context) (officequotes.EpisodeBatch, error) {
	var batch officequotes.EpisodeBatch
	if err := s.getJSON(ctx, "/episodes.json", &batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// FetchCharacter retrieves one character.
func (s *Source) FetchCharacter(ctx context.Context, id string) (officequotes.Record, error) {
	var rec officequotes.Record
	if err := s.getJSON(ctx, "/character/"+url.PathEscape(id)+".json", &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// FetchCharacters retrieves every character keyed by id.
func (s *Source) FetchCharacters(ctx context.Context) (map[string]officequotes.Record, error) {
	var characters map[string]officequotes.Record
	if err := s.getJSON(ctx, "/characters.json", &characters); err != nil {
		return nil, err
	}
	return characters, nil
}

// getJSON decodes the JSON document at path into v.
func (s *Source) getJSON(ctx context.Context, path string, v any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	u := s.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return officequotes.Errorf(officequotes.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, u)
	case resp.StatusCode != http.StatusOK:
		return officequotes.Errorf(officequotes.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, u)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return officequotes.Errorf(officequotes.EUNAVAILABLE, "decoding %s: %v", u, err)
	}
	return nil
}
