package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/officequotes"
	oqhttp "github.com/fwojciec/officequotes/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_FetchEpisode(t *testing.T) {
	t.Parallel()

	t.Run("requests the zero-padded episode path", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/json/01/02.json" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"title":"Diversity Day","scenes":[]}`))
		}))
		defer server.Close()

		src := oqhttp.NewSource(server.URL + "/json/")

		rec, err := src.FetchEpisode(context.Background(), 1, 2)

		require.NoError(t, err)
		assert.Equal(t, "Diversity Day", rec.Title())
		assert.True(t, rec.HasScenes())
	})

	t.Run("maps 404 to not found", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		_, err := oqhttp.NewSource(server.URL).FetchEpisode(context.Background(), 1, 1)

		assert.Equal(t, officequotes.ENOTFOUND, officequotes.ErrorCode(err))
	})

	t.Run("maps other failures to unavailable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := oqhttp.NewSource(server.URL).FetchEpisode(context.Background(), 1, 1)

		assert.Equal(t, officequotes.EUNAVAILABLE, officequotes.ErrorCode(err))
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"title":`))
		}))
		defer server.Close()

		_, err := oqhttp.NewSource(server.URL).FetchEpisode(context.Background(), 1, 1)

		assert.Equal(t, officequotes.EUNAVAILABLE, officequotes.ErrorCode(err))
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		src := oqhttp.NewSource(server.URL, oqhttp.WithTimeout(10*time.Millisecond))

		_, err := src.FetchEpisode(context.Background(), 1, 1)
		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := oqhttp.NewSource(server.URL).FetchEpisode(ctx, 1, 1)
		require.Error(t, err)
	})
}

func TestSource_FetchEpisodes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/episodes.json", r.URL.Path)
		_, _ = w.Write([]byte(`[[{"title":"Pilot"},null]]`))
	}))
	defer server.Close()

	batch, err := oqhttp.NewSource(server.URL).FetchEpisodes(context.Background())

	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.Len(t, batch[0], 2)
	assert.Equal(t, "Pilot", batch[0][0].Title())
	assert.Nil(t, batch[0][1])
}

func TestSource_FetchCharacter(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/character/michael%20scott.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"name":"Michael Scott","appearances":3}`))
	}))
	defer server.Close()

	rec, err := oqhttp.NewSource(server.URL).FetchCharacter(context.Background(), "michael scott")

	require.NoError(t, err)
	assert.Equal(t, 3.0, rec.Appearances())
}

func TestSource_FetchCharacters(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/characters.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"michael":{"appearances":9},"dwight":{"appearances":8}}`))
	}))
	defer server.Close()

	characters, err := oqhttp.NewSource(server.URL).FetchCharacters(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"michael", "dwight"}, officequotes.SortCharacters(characters))
}

func TestSource_WithRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	src := oqhttp.NewSource(server.URL, oqhttp.WithRateLimit(1))

	_, err := src.FetchCharacter(context.Background(), "a")
	require.NoError(t, err)

	// The second request must wait about a second for a token.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = src.FetchCharacter(ctx, "b")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
