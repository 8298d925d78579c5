package main

import (
	"fmt"

	"github.com/fwojciec/officequotes"
	"github.com/fwojciec/officequotes/cache"
)

// Run executes the characters command.
func (c *CharactersCmd) Run(deps *Dependencies) error {
	coord := cache.NewCoordinator(cache.NewStore(deps.Logger), c.source(deps), deps.Logger)

	if err := coord.PreloadCharacters(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", officequotes.ErrorMessage(err))
		return err
	}

	store := coord.Store()
	ids := store.SortedCharacters()
	if len(ids) == 0 {
		fmt.Fprintln(deps.Stdout, "No characters found. Use 'officequotes build' to publish a tree.")
		return nil
	}
	if c.Limit > 0 && c.Limit < len(ids) {
		ids = ids[:c.Limit]
	}

	for i, id := range ids {
		rec, _ := store.Character(id)
		name, _ := rec["name"].(string)
		fmt.Fprintf(deps.Stdout, "%3d. %-20s %-24s %g\n", i+1, id, name, rec.Appearances())
	}
	return nil
}
