package cache_test

import (
	"testing"

	"github.com/fwojciec/officequotes"
	"github.com/fwojciec/officequotes/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenes() []any {
	return []any{map[string]any{"quotes": []any{map[string]any{"speaker": "Jim", "text": "Bears."}}}}
}

func TestStore_Episodes(t *testing.T) {
	t.Parallel()

	t.Run("starts with every episode unloaded", func(t *testing.T) {
		t.Parallel()

		s := cache.NewStore(nil)
		snap := s.Snapshot()

		for season := 1; season <= officequotes.SeasonCount; season++ {
			slots := snap.Season(season)
			require.Len(t, slots, officequotes.EpisodeCount(season))
			for _, slot := range slots {
				assert.False(t, slot.Loaded)
			}
		}
		assert.Zero(t, snap.FetchedCount())
	})

	t.Run("reports absent episodes without error", func(t *testing.T) {
		t.Parallel()

		s := cache.NewStore(nil)
		require.NoError(t, s.MergeEpisode(3, 1, officequotes.Record{"title": "Gay Witch Hunt"}))

		rec, ok := s.Episode(3, 1)

		assert.False(t, ok)
		assert.Nil(t, rec)
		assert.False(t, s.IsFetched(3, 1))
	})

	t.Run("summary then full merge keeps both", func(t *testing.T) {
		t.Parallel()

		s := cache.NewStore(nil)
		require.NoError(t, s.MergeEpisode(3, 1, officequotes.Record{"title": "X"}))
		require.NoError(t, s.MergeEpisode(3, 1, officequotes.Record{"scenes": scenes()}))

		rec, ok := s.Episode(3, 1)

		require.True(t, ok)
		assert.Equal(t, "X", rec.Title())
		assert.Equal(t, scenes(), rec["scenes"])
		assert.True(t, s.IsFetched(3, 1))
	})

	t.Run("rejects invalid coordinates", func(t *testing.T) {
		t.Parallel()

		s := cache.NewStore(nil)

		err := s.MergeEpisode(1, 7, officequotes.Record{"scenes": scenes()})

		assert.Equal(t, officequotes.EINVALID, officequotes.ErrorCode(err))
		assert.False(t, s.IsFetched(1, 7))
	})

	t.Run("returned records do not alias the cache", func(t *testing.T) {
		t.Parallel()

		s := cache.NewStore(nil)
		require.NoError(t, s.MergeEpisode(1, 1, officequotes.Record{"title": "Pilot", "scenes": scenes()}))

		rec, _ := s.Episode(1, 1)
		rec["title"] = "changed"

		again, _ := s.Episode(1, 1)
		assert.Equal(t, "Pilot", again.Title())
	})
}

func TestStore_MergeEpisodes(t *testing.T) {
	t.Parallel()

	t.Run("merges entries by position and skips nulls", func(t *testing.T) {
		t.Parallel()

		s := cache.NewStore(nil)
		batch := officequotes.EpisodeBatch{
			{{"title": "Pilot"}, nil, {"title": "Health Care"}},
			{{"title": "The Dundies", "scenes": scenes()}},
		}

		merged := s.MergeEpisodes(batch)

		assert.Equal(t, 3, merged)
		snap := s.Snapshot()
		slot, _ := snap.Slot(1, 1)
		assert.Equal(t, "Pilot", slot.Record.Title())
		slot, _ = snap.Slot(1, 2)
		assert.Nil(t, slot.Record)
		slot, _ = snap.Slot(1, 3)
		assert.Equal(t, "Health Care", slot.Record.Title())
		assert.True(t, snap.IsFetched(2, 1))
		assert.False(t, snap.IsFetched(1, 1))
	})

	t.Run("does not clear previously fetched data", func(t *testing.T) {
		t.Parallel()

		s := cache.NewStore(nil)
		require.NoError(t, s.MergeEpisode(1, 2, officequotes.Record{"title": "Diversity Day", "scenes": scenes()}))

		s.MergeEpisodes(officequotes.EpisodeBatch{{nil, {"title": "Diversity Day", "description": "Michael's offensive"}}})

		rec, ok := s.Episode(1, 2)
		require.True(t, ok)
		assert.Equal(t, scenes(), rec["scenes"])
		assert.Equal(t, "Michael's offensive", rec["description"])
	})

	t.Run("skips entries outside the corpus", func(t *testing.T) {
		t.Parallel()

		s := cache.NewStore(nil)
		batch := make(officequotes.EpisodeBatch, 10)
		batch[9] = []officequotes.Record{{"title": "Season ten"}}
		batch[0] = make([]officequotes.Record, 7)
		batch[0][6] = officequotes.Record{"title": "Seventh"}

		assert.Zero(t, s.MergeEpisodes(batch))
	})
}

func TestStore_Characters(t *testing.T) {
	t.Parallel()

	t.Run("creates records lazily and merges shallowly", func(t *testing.T) {
		t.Parallel()

		s := cache.NewStore(nil)
		_, ok := s.Character("dwight")
		assert.False(t, ok)

		s.MergeCharacter("dwight", officequotes.Record{"name": "Dwight Schrute", "appearances": 10})
		s.MergeCharacter("dwight", officequotes.Record{"appearances": 12})

		rec, ok := s.Character("dwight")
		require.True(t, ok)
		assert.Equal(t, officequotes.Record{"name": "Dwight Schrute", "appearances": 12}, rec)
	})

	t.Run("ranks characters by appearances", func(t *testing.T) {
		t.Parallel()

		s := cache.NewStore(nil)
		s.MergeCharacters(map[string]officequotes.Record{
			"pam":     {"appearances": 50},
			"michael": {"appearances": 100},
			"jim":     {"appearances": 50},
			"toby":    nil,
		})

		assert.Equal(t, []string{"michael", "jim", "pam"}, s.SortedCharacters())
	})
}

func TestStore_Preloaded(t *testing.T) {
	t.Parallel()

	s := cache.NewStore(nil)
	assert.Equal(t, officequotes.PreloadStatus{}, s.Preloaded())

	s.SetCharactersPreloaded()
	assert.Equal(t, officequotes.PreloadStatus{Characters: true}, s.Preloaded())

	s.SetEpisodesPreloaded()
	assert.Equal(t, officequotes.PreloadStatus{Episodes: true, Characters: true}, s.Snapshot().Preloaded())
}
