package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shortlist-monitor/cmd/monitor/commands"

	"github.com/oklog/run"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execute() error {

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				log.Debug().Msg("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		g.Add(
			func() error {
				return commands.NewCommand().ExecuteContext(ctx)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}
