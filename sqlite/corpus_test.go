package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/officequotes"
	"github.com/fwojciec/officequotes/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func testCorpus(t *testing.T) officequotes.Corpus {
	t.Helper()
	c := officequotes.NewCorpus()
	require.NoError(t, c.Set(&officequotes.Episode{
		Title:         "Pilot",
		Description:   "The premiere episode.",
		SeasonNumber:  1,
		EpisodeNumber: 1,
		Characters: map[string]officequotes.EpisodeCharacter{
			"michael": {Name: "Michael Scott", Appearances: 2},
			"dwight":  {Name: "Dwight Schrute", Appearances: 1},
		},
		Scenes: []officequotes.Scene{
			{Quotes: []officequotes.Quote{
				{Speaker: "Michael", Text: "All right Jim.", Character: "michael"},
				{Speaker: "Jim", Text: "Oh, I told you.", Character: "jim"},
			}},
			{Deleted: 1, Quotes: []officequotes.Quote{
				{Speaker: "{Michael} and {Dwight}", Text: "Hey!", IsAnnotated: true, Deleted: true,
					Characters: map[string]string{"michael": "Michael", "dwight": "Dwight"}},
			}},
		},
	}))
	require.NoError(t, c.Set(&officequotes.Episode{
		Title:         "Finale",
		SeasonNumber:  9,
		EpisodeNumber: 23,
		Scenes:        []officequotes.Scene{},
	}))
	return c
}

func TestCorpusStore_Import(t *testing.T) {
	t.Parallel()

	t.Run("round trips the corpus", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCorpusStore(setupTestDB(t))
		ctx := context.Background()

		require.NoError(t, store.Import(ctx, testCorpus(t)))
		got, err := store.LoadCorpus(ctx)

		require.NoError(t, err)
		assert.Equal(t, testCorpus(t), got)
	})

	t.Run("replaces previous content", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCorpusStore(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, store.Import(ctx, testCorpus(t)))

		// Import a corpus with only the pilot
		c := officequotes.NewCorpus()
		require.NoError(t, c.Set(&officequotes.Episode{Title: "Pilot", SeasonNumber: 1, EpisodeNumber: 1, Scenes: []officequotes.Scene{}}))
		require.NoError(t, store.Import(ctx, c))

		got, err := store.LoadCorpus(ctx)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	})
}

func TestCorpusStore_LoadCorpus(t *testing.T) {
	t.Parallel()

	t.Run("returns an empty corpus shape when nothing is stored", func(t *testing.T) {
		t.Parallel()

		got, err := sqlite.NewCorpusStore(setupTestDB(t)).LoadCorpus(context.Background())

		require.NoError(t, err)
		assert.Equal(t, officequotes.NewCorpus(), got)
	})

	t.Run("keeps scene and quote order", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCorpusStore(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, store.Import(ctx, testCorpus(t)))

		got, err := store.LoadCorpus(ctx)
		require.NoError(t, err)

		scene, err := got.Scene(1, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, "All right Jim.", scene.Quotes[0].Text)
		assert.Equal(t, "Oh, I told you.", scene.Quotes[1].Text)
	})
}

func TestCorpusStore_Totals(t *testing.T) {
	t.Parallel()

	store := sqlite.NewCorpusStore(setupTestDB(t))
	ctx := context.Background()
	c := testCorpus(t)
	require.NoError(t, store.Import(ctx, c))

	totals, err := store.Totals(ctx)

	require.NoError(t, err)
	assert.Equal(t, c.Totals(), totals)
	assert.Equal(t, officequotes.Totals{Seasons: 9, Episodes: 2, Scenes: 2, Quotes: 3}, totals)
}
