package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/digest"
	"github.com/fwojciec/digest/opml"
)

// Run lists registered sources.
func (c *SourcesCmd) Run(deps *Dependencies) error {
	filter := digest.SourceFilter{}
	if !c.All {
		active := true
		filter.Active = &active
	}

	sources, err := deps.Sources.FindSources(deps.Ctx, filter)
	if err != nil {
		return err
	}

	if len(sources) == 0 {
		fmt.Fprintln(deps.Stdout, "No sources registered.")
		return nil
	}

	for _, source := range sources {
		state := "inactive"
		if source.Active {
			state = "active"
		}
		fmt.Fprintf(deps.Stdout, "%d\t%s\t%s\t%s\n", source.ID, source.Name, state, discovery(source))
	}
	return nil
}

// discovery describes how a source's candidates are produced.
func discovery(source *digest.Source) string {
	switch {
	case source.FeedURL != "":
		return "feed: " + source.FeedURL
	case source.CrawlerCommand != "":
		return "command: " + source.CrawlerCommand
	default:
		return "built-in"
	}
}

// Run registers a new source.
func (c *AddSourceCmd) Run(deps *Dependencies) error {
	source := &digest.Source{
		Name:           c.Name,
		FeedURL:        c.FeedURL,
		CrawlerCommand: c.Command,
		MediaPath:      c.MediaPath,
		Active:         !c.Inactive,
	}

	if err := deps.Sources.CreateSource(deps.Ctx, source); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Source %q registered with ID %d.\n", source.Name, source.ID)
	return nil
}

// Run imports feed sources from an OPML subscription list. Duplicates are
// reported and skipped.
func (c *ImportOPMLCmd) Run(deps *Dependencies) error {
	sources, err := opml.ParseFile(c.Path)
	if err != nil {
		return err
	}

	var imported, skipped int
	for _, source := range sources {
		if err := deps.Sources.CreateSource(deps.Ctx, source); err != nil {
			if digest.ErrorCode(err) == digest.ECONFLICT {
				skipped++
				continue
			}
			return err
		}
		imported++
	}

	fmt.Fprintf(deps.Stdout, "%d sources imported, %d already present.\n", imported, skipped)
	return nil
}

// Run lists recently persisted articles.
func (c *ArticlesCmd) Run(deps *Dependencies) error {
	articles, err := deps.Articles.FindArticles(deps.Ctx, digest.ArticleFilter{
		SourceID: c.Source,
		Limit:    c.Limit,
	})
	if err != nil {
		return err
	}

	if len(articles) == 0 {
		fmt.Fprintln(deps.Stdout, "No articles.")
		return nil
	}

	for _, article := range articles {
		published := time.Unix(article.PublishTimestamp, 0).UTC().Format("2006-01-02")
		fmt.Fprintf(deps.Stdout, "%d\t%s\t%s\t%s\n", article.ID, published, article.Title, article.URL)
	}
	return nil
}
