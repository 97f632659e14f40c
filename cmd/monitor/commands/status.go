package commands

import (
	"context"
	"fmt"

	"shortlist-monitor/internal/render"
	"shortlist-monitor/internal/timeline"

	"github.com/spf13/cobra"
)

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Fetch a job once and print its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), opts, cmd, args[0])
		},
	}
}

func runStatus(ctx context.Context, opts *rootOptions, cmd *cobra.Command, jobID string) error {

	cfg := opts.cfg

	source, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	ctx, cancel := context.WithTimeout(ctx, cfg.Poll.RequestTimeout)
	defer cancel()

	snapshot, err := source.GetStatus(ctx, jobID)
	if err != nil {
		return fmt.Errorf("fetch status of job %s: %w", jobID, err)
	}

	if snapshot.JobID == "" {
		snapshot.JobID = jobID
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, render.Timeline(*snapshot, timeline.Derive(*snapshot)))

	if !snapshot.Terminal() {
		return nil
	}

	candidates, err := source.GetResults(ctx, jobID)
	if err != nil {
		return fmt.Errorf("fetch shortlist of job %s: %w", jobID, err)
	}

	fmt.Fprint(out, render.Shortlist(candidates))

	return nil
}
