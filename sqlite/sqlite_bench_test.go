package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fwojciec/officequotes"
	"github.com/fwojciec/officequotes/sqlite"
	"github.com/stretchr/testify/require"
)

// benchCorpus builds a corpus with every episode populated.
func benchCorpus(scenes, quotes int) officequotes.Corpus {
	c := officequotes.NewCorpus()
	for s := 1; s <= officequotes.SeasonCount; s++ {
		for e := 1; e <= officequotes.EpisodeCount(s); e++ {
			ep := &officequotes.Episode{
				Title:         fmt.Sprintf("Episode %d-%d", s, e),
				SeasonNumber:  s,
				EpisodeNumber: e,
				Scenes:        make([]officequotes.Scene, scenes),
			}
			for i := range ep.Scenes {
				ep.Scenes[i].Quotes = make([]officequotes.Quote, quotes)
				for j := range ep.Scenes[i].Quotes {
					ep.Scenes[i].Quotes[j] = officequotes.Quote{Speaker: "Michael", Text: "That's what she said.", Character: "michael"}
				}
			}
			_ = c.Set(ep)
		}
	}
	return c
}

// BenchmarkCorpusStore measures a full import and a full load of a
// file-based database.
func BenchmarkCorpusStore(b *testing.B) {
	c := benchCorpus(10, 10)
	ctx := context.Background()

	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	b.Cleanup(func() { db.Close() })
	store := sqlite.NewCorpusStore(db)

	b.Run("import", func(b *testing.B) {
		for b.Loop() {
			require.NoError(b, store.Import(ctx, c))
		}
	})

	b.Run("load", func(b *testing.B) {
		require.NoError(b, store.Import(ctx, c))
		b.ResetTimer()
		for b.Loop() {
			_, err := store.LoadCorpus(ctx)
			require.NoError(b, err)
		}
	})
}
