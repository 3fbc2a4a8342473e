package main

import (
	"context"
	"io"

	"github.com/fwojciec/digest"
	"github.com/fwojciec/digest/pipeline"
	"github.com/fwojciec/digest/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	DB       *sqlite.DB
	Sources  digest.SourceService
	Articles digest.ArticleService
	Reports  digest.ReportService
	Runner   *pipeline.Runner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Run        RunCmd        `cmd:"" help:"Run the pipeline for one source"`
	RunAll     RunAllCmd     `cmd:"" name:"run-all" help:"Run the pipeline for every active source"`
	Sources    SourcesCmd    `cmd:"" help:"List registered sources"`
	AddSource  AddSourceCmd  `cmd:"" name:"add-source" help:"Register a new source"`
	ImportOPML ImportOPMLCmd `cmd:"" name:"import-opml" help:"Import feed sources from an OPML file"`
	Articles   ArticlesCmd   `cmd:"" help:"List recently persisted articles"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Source string `arg:"" help:"Source ID or name"`
	Limit  int    `short:"l" help:"Process at most this many candidates"`
	Debug  bool   `short:"d" help:"Dump raw normalized text for inspection"`
}

// RunAllCmd is the "run-all" subcommand.
type RunAllCmd struct {
	Limit int  `short:"l" help:"Process at most this many candidates per source"`
	Debug bool `short:"d" help:"Dump raw normalized text for inspection"`
}

// SourcesCmd is the "sources" subcommand.
type SourcesCmd struct {
	All bool `help:"Include inactive sources"`
}

// AddSourceCmd is the "add-source" subcommand.
type AddSourceCmd struct {
	Name      string `arg:"" help:"Source name"`
	FeedURL   string `name:"feed" help:"RSS/Atom feed URL"`
	Command   string `name:"command" help:"Crawler shell command printing candidate JSON"`
	MediaPath string `name:"media" help:"Cover image used when publishing reports"`
	Inactive  bool   `help:"Register without activating"`
}

// ImportOPMLCmd is the "import-opml" subcommand.
type ImportOPMLCmd struct {
	Path string `arg:"" help:"OPML file path"`
}

// ArticlesCmd is the "articles" subcommand.
type ArticlesCmd struct {
	Source *int64 `help:"Filter by source ID"`
	Limit  int    `default:"20" help:"Maximum number of articles to list"`
}
