package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/officequotes"
	"github.com/fwojciec/officequotes/fs"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	corpus, err := corpusLoader(deps, c.Data).LoadCorpus(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", officequotes.ErrorMessage(err))
		return err
	}

	opts := []fs.PublisherOption{fs.WithConcurrency(c.Concurrency)}
	if c.Full {
		opts = append(opts, fs.WithFullCorpus())
	}
	pub := fs.NewPublisher(filepath.Dir(c.Dir), filepath.Base(c.Dir), opts...)
	if err := pub.Publish(deps.Ctx, corpus); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", officequotes.ErrorMessage(err))
		return err
	}

	totals := corpus.Totals()
	fmt.Fprintf(deps.Stdout, "Published %d episodes to %s\n", totals.Episodes, pub.Dir())
	return nil
}
