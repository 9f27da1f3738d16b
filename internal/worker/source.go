package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cenkalti/backoff/v5"
)

// MaxResumeBytes bounds a résumé text object
const MaxResumeBytes = 1 << 20

// Source loads résumé text for a job
type Source interface {
	Fetch(ctx context.Context, key string) (string, error)
}

// S3Options locates the bucket holding résumé text objects
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// getObjectAPIClient is the subset of *s3.Client used by S3Source
type getObjectAPIClient interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads plain-text résumés from an S3-compatible bucket
type S3Source struct {
	client    getObjectAPIClient
	bucket    string
	retryBase time.Duration
	maxTries  uint
}

// NewS3Source builds a client from the default AWS chain, with static
// credentials and a custom endpoint when given.
func NewS3Source(ctx context.Context, opts S3Options) (*S3Source, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 source requires a bucket")
	}
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return newS3Source(client, opts.Bucket), nil
}

func newS3Source(client getObjectAPIClient, bucket string) *S3Source {
	return &S3Source{client: client, bucket: bucket, retryBase: 500 * time.Millisecond, maxTries: 3}
}

// Fetch downloads key, retrying transient failures. Missing objects and
// non-text content fail immediately.
func (s *S3Source) Fetch(ctx context.Context, key string) (string, error) {
	operation := func() (string, error) {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var missing *s3types.NoSuchKey
			if errors.As(err, &missing) || ctx.Err() != nil {
				return "", backoff.Permanent(fmt.Errorf("failed to get object %s: %w", key, err))
			}
			return "", fmt.Errorf("failed to get object %s: %w", key, err)
		}
		defer out.Body.Close()

		if ct := aws.ToString(out.ContentType); ct != "" && !strings.HasPrefix(ct, "text/") {
			return "", backoff.Permanent(fmt.Errorf("object %s has unsupported content type %q", key, ct))
		}
		data, err := io.ReadAll(io.LimitReader(out.Body, MaxResumeBytes+1))
		if err != nil {
			return "", fmt.Errorf("failed to read object %s: %w", key, err)
		}
		if len(data) > MaxResumeBytes {
			return "", backoff.Permanent(fmt.Errorf("object %s exceeds %d bytes", key, MaxResumeBytes))
		}
		if !utf8.Valid(data) {
			return "", backoff.Permanent(fmt.Errorf("object %s is not valid UTF-8 text", key))
		}
		return string(data), nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryBase
	bo.MaxInterval = 5 * time.Second
	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(s.maxTries))
}
