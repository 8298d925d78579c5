package main

import (
	"fmt"

	"github.com/fwojciec/officequotes"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	var totals officequotes.Totals
	var err error
	if c.Data != "" {
		var corpus officequotes.Corpus
		corpus, err = corpusLoader(deps, c.Data).LoadCorpus(deps.Ctx)
		totals = corpus.Totals()
	} else {
		totals, err = deps.Store.Totals(deps.Ctx)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", officequotes.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Seasons:  %d\n", totals.Seasons)
	fmt.Fprintf(deps.Stdout, "Episodes: %d\n", totals.Episodes)
	fmt.Fprintf(deps.Stdout, "Scenes:   %d\n", totals.Scenes)
	fmt.Fprintf(deps.Stdout, "Quotes:   %d\n", totals.Quotes)
	return nil
}
