package main

import (
	"fmt"

	"github.com/fwojciec/digest/pipeline"
)

// Run executes the pipeline for one source.
func (c *RunCmd) Run(deps *Dependencies) error {
	opts := pipeline.RunOptions{Limit: c.Limit, Debug: c.Debug}

	if err := deps.Runner.Run(deps.Ctx, c.Source, opts); err != nil {
		return fmt.Errorf("run failed for source %q: %w", c.Source, err)
	}

	fmt.Fprintf(deps.Stdout, "Source %q processed.\n", c.Source)
	return nil
}

// Run executes the pipeline for every active source.
func (c *RunAllCmd) Run(deps *Dependencies) error {
	opts := pipeline.RunOptions{Limit: c.Limit, Debug: c.Debug}

	ok, failed := deps.Runner.RunAll(deps.Ctx, opts)

	fmt.Fprintf(deps.Stdout, "%d sources processed, %d failed.\n", ok, failed)
	if failed > 0 {
		return fmt.Errorf("%d source runs failed", failed)
	}
	return nil
}
