package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/officequotes"
	"github.com/fwojciec/officequotes/fs"
	oqhttp "github.com/fwojciec/officequotes/http"
	oqslog "github.com/fwojciec/officequotes/slog"
)

// CorpusStore is the persistent corpus behind import, build, serve and stats.
type CorpusStore interface {
	officequotes.CorpusLoader
	Import(ctx context.Context, c officequotes.Corpus) error
	Totals(ctx context.Context) (officequotes.Totals, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Store  CorpusStore

	// Source overrides the source built from SourceFlags.
	Source officequotes.Source
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	LogLevel string `name:"log-level" default:"info" enum:"debug,info,warn,error" env:"OFFICEQUOTES_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`

	Serve      ServeCmd      `cmd:"" help:"Serve the quote window API"`
	Build      BuildCmd      `cmd:"" help:"Publish the corpus as a static JSON tree"`
	Import     ImportCmd     `cmd:"" help:"Import transcripts into the database"`
	Episode    EpisodeCmd    `cmd:"" help:"Show an episode from a published tree"`
	Characters CharactersCmd `cmd:"" help:"Rank characters from a published tree"`
	Stats      StatsCmd      `cmd:"" help:"Show corpus totals"`
}

// usesStore reports whether the parsed command reads or writes the
// corpus store. Commands given a data.json file do not.
func (c *CLI) usesStore(command string) bool {
	switch command {
	case "serve":
		return c.Serve.Data == ""
	case "build":
		return c.Build.Data == ""
	case "import <path>":
		return true
	case "stats":
		return c.Stats.Data == ""
	}
	return false
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" env:"OFFICEQUOTES_ADDR" help:"Listen address"`
	Data string `type:"path" env:"OFFICEQUOTES_DATA" help:"Serve a data.json file instead of the database"`
	Dir  string `type:"path" env:"OFFICEQUOTES_DIR" help:"Published tree to mount under /json/"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	Dir         string `type:"path" default:"json" env:"OFFICEQUOTES_DIR" help:"Output directory"`
	Data        string `type:"path" env:"OFFICEQUOTES_DATA" help:"Publish a data.json file instead of the database"`
	Full        bool   `help:"Also write the whole corpus to data.json"`
	Concurrency int    `short:"c" default:"8" help:"Concurrent file writes"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	Path string `arg:"" type:"path" help:"Transcript directory of S-EE.xml files, or a data.json file"`
}

// SourceFlags selects where client commands read records from.
type SourceFlags struct {
	URL     string        `env:"OFFICEQUOTES_URL" help:"Base URL of a published tree, e.g. http://localhost:8080/json"`
	Dir     string        `type:"path" default:"json" env:"OFFICEQUOTES_DIR" help:"Published tree on disk, used when --url is empty"`
	RPS     float64       `name:"rps" default:"0" env:"OFFICEQUOTES_RPS" help:"Maximum requests per second to --url (0 for unlimited)"`
	Timeout time.Duration `default:"10s" env:"OFFICEQUOTES_TIMEOUT" help:"Request timeout for --url"`
}

// source returns the dependency override or builds a logged source from the flags.
func (f *SourceFlags) source(deps *Dependencies) officequotes.Source {
	if deps.Source != nil {
		return deps.Source
	}
	var src officequotes.Source
	if f.URL != "" {
		src = oqhttp.NewSource(f.URL, oqhttp.WithTimeout(f.Timeout), oqhttp.WithRateLimit(f.RPS))
	} else {
		src = fs.NewSource(f.Dir)
	}
	return oqslog.NewLoggingSource(src, deps.Logger)
}

// EpisodeCmd is the "episode" subcommand.
type EpisodeCmd struct {
	SourceFlags `embed:""`

	Season  int  `arg:"" help:"Season number"`
	Episode int  `arg:"" help:"Episode number"`
	Preload bool `help:"Preload every episode summary first"`
	JSON    bool `name:"json" help:"Print the merged record as JSON"`
}

// CharactersCmd is the "characters" subcommand.
type CharactersCmd struct {
	SourceFlags `embed:""`

	Limit int `short:"n" default:"0" help:"Show at most this many characters (0 for all)"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	Data string `type:"path" env:"OFFICEQUOTES_DATA" help:"Count a data.json file instead of the database"`
}

// corpusLoader returns a file loader when data is set and the store otherwise.
func corpusLoader(deps *Dependencies, data string) officequotes.CorpusLoader {
	var loader officequotes.CorpusLoader = deps.Store
	if data != "" {
		loader = fs.NewCorpusLoader(data)
	}
	return oqslog.NewLoggingCorpusLoader(loader, deps.Logger)
}
