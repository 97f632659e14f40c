package s3

import (
	"context"
	"errors"
	"fmt"

	apperrors "shortlist-monitor/internal/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog/log"
)

type FileStore struct {
	Client     *s3.Client
	downloader *manager.Downloader
}

type S3Config struct {
	EndpointURL string
	Region      string
	AccessKey   string
	SecretKey   string
}

func NewFileStore(ctx context.Context, conf S3Config) (*FileStore, error) {

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(conf.Region),
	}

	// without static keys the default credential chain applies
	if conf.AccessKey != "" || conf.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, "")
		opts = append(opts, config.WithCredentialsProvider(creds))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	if conf.EndpointURL != "" {
		cfg.BaseEndpoint = aws.String(conf.EndpointURL)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &FileStore{
		Client:     client,
		downloader: manager.NewDownloader(client),
	}, nil
}

// Download reads a whole object into memory.
func (fs *FileStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {

	buf := manager.NewWriteAtBuffer([]byte{})

	n, err := fs.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return nil, classify(bucket, key, err)
	}

	log.Debug().
		Str("component", "s3").
		Str("bucket", bucket).
		Str("key", key).
		Int64("bytes", n).
		Msg("Downloaded object")

	return buf.Bytes(), nil
}

func classify(bucket, key string, err error) error {

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("object s3://%s/%s: %w", bucket, key, apperrors.ErrNotFound)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("object s3://%s/%s: %w", bucket, key, apperrors.ErrNotFound)
		case "NoSuchBucket", "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("failed to download s3://%s/%s: %s: %w: %w", bucket, key, apiErr.ErrorCode(), apperrors.ErrTransport, apperrors.ErrPermanentFailure)
		}
	}

	return fmt.Errorf("failed to download s3://%s/%s: %v: %w", bucket, key, err, apperrors.ErrTransport)
}
