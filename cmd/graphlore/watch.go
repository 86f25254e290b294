package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/graphlore/graphlore/internal/pipeline"
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Watch a directory and re-ingest files as they change",
	Long: `Perform an initial ingest of DIR, then watch it for changes and
re-ingest modified or created files. Changed files are re-ingested under
their original source identity, so chunk counts do not grow across
edits. Stops on SIGINT/SIGTERM.

Examples:
  graphlore watch ./docs
  graphlore watch ./repo --exclude "*_test.go" --gitignore`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVar(&ingestInclude, "include", nil, "Glob patterns to include")
	watchCmd.Flags().StringSliceVar(&ingestExclude, "exclude", nil, "Glob patterns to exclude")
	watchCmd.Flags().BoolVar(&ingestGitignore, "gitignore", false, "Respect .gitignore rules")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir := args[0]

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	o := rt.orchestrator(false)
	opts := directoryOptions()

	results, err := o.ProcessDirectory(ctx, dir, opts)
	if err != nil {
		return err
	}
	printIngestResults(cmd, results)

	w, err := pipeline.NewWatcher(o, opts, logger)
	if err != nil {
		return err
	}
	if cfg.Pipeline.WatchDebounce > 0 {
		w.WithDebounce(cfg.Pipeline.WatchDebounce)
	}
	if err := w.Watch(dir); err != nil {
		return err
	}

	cmd.Printf("Watching %s for changes (Ctrl-C to stop)\n", dir)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
