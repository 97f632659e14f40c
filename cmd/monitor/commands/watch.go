package commands

import (
	"context"
	"fmt"
	"sync"

	"shortlist-monitor/internal/models"
	"shortlist-monitor/internal/poller"
	"shortlist-monitor/internal/render"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {

	var untilDone bool

	cmd := &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Poll a job and print its timeline as it progresses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), opts, cmd, args[0], untilDone)
		},
	}

	cmd.Flags().BoolVar(&untilDone, "until-done", false, "Exit once the shortlist is printed or the job fails")

	return cmd
}

func runWatch(ctx context.Context, opts *rootOptions, cmd *cobra.Command, jobID string, untilDone bool) error {

	cfg := opts.cfg

	source, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	listeners := poller.Listeners{render.NewPrinter(cmd.OutOrStdout())}

	publisher, closePublisher, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	if publisher != nil {
		listeners = append(listeners, publisher)
	}

	done := make(chan struct{})
	var once sync.Once
	var failure error
	finish := func(err error) {
		once.Do(func() {
			failure = err
			close(done)
		})
	}

	if untilDone {
		listeners = append(listeners, poller.ListenerFuncs{
			Update: func(u poller.Update) {
				if finished(u.Snapshot) {
					finish(nil)
				}
			},
			Results: func(poller.Results) { finish(nil) },
			// the session fetches results once, so a failed fetch is final
			Failure: func(f poller.Failure) {
				if f.Stage == poller.StageResults {
					finish(f)
				}
			},
		})
	}

	coordinator := newCoordinator(cfg, source, listeners)
	defer coordinator.Close()

	sessionID, err := coordinator.Activate(ctx, jobID)
	if err != nil {
		return fmt.Errorf("watch job %s: %w", jobID, err)
	}

	log.Info().
		Str("job_id", jobID).
		Str("session_id", sessionID.String()).
		Msg("Watching job, press Ctrl+C to stop")

	select {
	case <-ctx.Done():
		return nil
	case <-done:
	}

	if failure != nil {
		return fmt.Errorf("watch job %s: %w", jobID, failure)
	}

	return nil
}

// finished reports whether a job will never produce results: it failed, or
// it completed without shortlisting anyone.
func finished(job models.JobStatus) bool {
	switch job.Status {
	case models.StatusError:
		return true
	case models.StatusCompleted:
		return job.ShortlistedCount <= 0
	}
	return false
}
