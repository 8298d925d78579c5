package main

import (
	"fmt"

	"github.com/fwojciec/officequotes"
	oqhttp "github.com/fwojciec/officequotes/http"
	"github.com/fwojciec/officequotes/window"
)

// Run executes the serve command. It blocks until the context is cancelled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	svc := window.NewService(corpusLoader(deps, c.Data))

	server := oqhttp.NewServer()
	server.Addr = c.Addr
	server.StaticDir = c.Dir
	server.Logger = deps.Logger
	server.WindowService = svc
	server.CorpusService = svc

	if err := server.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", officequotes.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", server.URL())

	<-deps.Ctx.Done()
	return server.Close()
}
