package commands

import (
	"context"
	"fmt"

	"shortlist-monitor/internal/models"
	"shortlist-monitor/internal/render"

	"github.com/spf13/cobra"
)

// jobLister is implemented by the sources that can enumerate jobs.
type jobLister interface {
	ListJobs(ctx context.Context) ([]models.JobSummary, error)
}

func newJobsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List the jobs known to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobs(cmd.Context(), opts, cmd)
		},
	}
}

func runJobs(ctx context.Context, opts *rootOptions, cmd *cobra.Command) error {

	cfg := opts.cfg

	source, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	lister, ok := source.(jobLister)
	if !ok {
		return fmt.Errorf("the %s source cannot list jobs", cfg.Source.Kind)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Poll.RequestTimeout)
	defer cancel()

	jobs, err := lister.ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), render.Jobs(jobs))

	return nil
}
