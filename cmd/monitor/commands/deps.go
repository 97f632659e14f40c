package commands

import (
	"context"
	"fmt"

	"shortlist-monitor/internal/config"
	"shortlist-monitor/internal/jobapi"
	"shortlist-monitor/internal/objectstore"
	"shortlist-monitor/internal/poller"
	"shortlist-monitor/internal/postgresdb"
	"shortlist-monitor/internal/s3"
	"shortlist-monitor/internal/valkeydb"

	"github.com/rs/zerolog/log"
)

func noop() {}

// newSource builds the job report source selected by source.kind. The
// returned func releases its connections.
func newSource(ctx context.Context, cfg config.Config) (poller.Source, func(), error) {

	switch cfg.Source.Kind {
	case config.SourceHTTP:
		client, err := jobapi.New(cfg.API.BaseURL, cfg.API.Timeout)
		if err != nil {
			return nil, noop, fmt.Errorf("create api client: %w", err)
		}
		return client, noop, nil

	case config.SourcePostgres:
		store, err := postgresdb.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("connect to postgres: %w", err)
		}
		return store, store.Close, nil

	case config.SourceS3:
		fileStore, err := s3.NewFileStore(ctx, s3.S3Config{
			EndpointURL: cfg.S3.EndpointURL,
			Region:      cfg.S3.Region,
			AccessKey:   cfg.S3.AccessKey,
			SecretKey:   cfg.S3.SecretKey,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("create s3 file store: %w", err)
		}

		source, err := objectstore.New(fileStore, cfg.S3.Bucket, cfg.S3.Prefix)
		if err != nil {
			return nil, noop, err
		}
		return source, noop, nil
	}

	return nil, noop, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
}

// newPublisher returns nil when no Valkey server is configured.
func newPublisher(ctx context.Context, cfg config.Config) (poller.Listener, func(), error) {

	if cfg.Valkey.URL == "" {
		return nil, noop, nil
	}

	client, err := valkeydb.New(ctx, cfg.Valkey.URL, cfg.Valkey.Password)
	if err != nil {
		return nil, noop, fmt.Errorf("connect to valkey: %w", err)
	}

	log.Info().
		Str("component", "valkeydb").
		Str("channel_prefix", cfg.Valkey.ChannelPrefix).
		Msg("Publishing job events")

	return valkeydb.NewPublisher(client.Client, cfg.Valkey.ChannelPrefix, cfg.Valkey.PublishTimeout), client.Close, nil
}

func newCoordinator(cfg config.Config, source poller.Source, listener poller.Listener) *poller.Coordinator {
	return poller.New(source, listener,
		poller.WithInterval(cfg.Poll.Interval),
		poller.WithRequestTimeout(cfg.Poll.RequestTimeout),
		poller.WithFetchOnActivate(cfg.Poll.FetchOnActivate),
	)
}
