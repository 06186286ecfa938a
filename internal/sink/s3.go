package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/agungatd/daily-data-fetcher/internal/config"
	"github.com/agungatd/daily-data-fetcher/internal/metrics"
)

// PutObjectAPI is the slice of the S3 client the archive needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3 builds an archive sink from the default AWS credential chain.
func NewS3(ctx context.Context, cfg config.ArchiveConfig) (Sink, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3WithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func NewS3WithClient(client PutObjectAPI, bucket, prefix string) Sink {
	return &s3Sink{client: client, bucket: bucket, prefix: prefix}
}

func (s *s3Sink) Name() string { return "s3" }

// Key is <prefix>/<grouping key>/<run id>.json.
func (s *s3Sink) Key(run Run) string {
	return path.Join(s.prefix, metrics.GroupingKey(run.Category), run.ID+".json")
}

// Push uploads the bytes that were written to the local report.
func (s *s3Sink) Push(ctx context.Context, run Run) error {
	if len(run.Report) == 0 {
		return errors.New("no report bytes to archive")
	}
	key := s.Key(run)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(run.Report),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}
