package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/officequotes"
	"github.com/fwojciec/officequotes/cache"
)

// Run executes the episode command.
func (c *EpisodeCmd) Run(deps *Dependencies) error {
	coord := cache.NewCoordinator(cache.NewStore(deps.Logger), c.source(deps), deps.Logger)

	if c.Preload {
		if err := coord.PreloadEpisodes(deps.Ctx); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", officequotes.ErrorMessage(err))
			return err
		}
	}
	if err := coord.FetchEpisode(deps.Ctx, c.Season, c.Episode); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", officequotes.ErrorMessage(err))
		return err
	}

	rec, ok := coord.Store().Episode(c.Season, c.Episode)
	if !ok {
		err := officequotes.Errorf(officequotes.ENOTFOUND, "episode %d/%d has no scenes", c.Season, c.Episode)
		fmt.Fprintf(deps.Stderr, "error: %s\n", officequotes.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	scenes, _ := rec[officequotes.ScenesKey].([]any)
	fmt.Fprintf(deps.Stdout, "S%02dE%02d  %s\n", c.Season, c.Episode, rec.Title())
	fmt.Fprintf(deps.Stdout, "%d scenes\n", len(scenes))
	if c.Preload {
		snap := coord.Store().Snapshot()
		for _, slot := range snap.Season(c.Season) {
			marker := " "
			if slot.Loaded {
				marker = "*"
			}
			fmt.Fprintf(deps.Stdout, "  %s %2d. %s\n", marker, slot.Episode, slot.Record.Title())
		}
	}
	return nil
}
