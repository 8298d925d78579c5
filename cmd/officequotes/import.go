package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/officequotes"
	"github.com/fwojciec/officequotes/etree"
	"github.com/fwojciec/officequotes/fs"
	oqslog "github.com/fwojciec/officequotes/slog"
)

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	info, err := os.Stat(c.Path)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	var loader officequotes.CorpusLoader
	if info.IsDir() {
		loader = etree.NewCorpusLoader(c.Path)
	} else {
		loader = fs.NewCorpusLoader(c.Path)
	}

	corpus, err := oqslog.NewLoggingCorpusLoader(loader, deps.Logger).LoadCorpus(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", officequotes.ErrorMessage(err))
		return err
	}

	if err := deps.Store.Import(deps.Ctx, corpus); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", officequotes.ErrorMessage(err))
		return err
	}

	totals := corpus.Totals()
	fmt.Fprintf(deps.Stdout, "Imported %d episodes, %d scenes, %d quotes\n", totals.Episodes, totals.Scenes, totals.Quotes)
	return nil
}
