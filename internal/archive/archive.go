// Package archive keeps a durable copy of every contact submission in S3.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ranjit-agency/site/internal/domain"
)

// S3API is the subset of the S3 client the archiver calls.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Options configures NewS3Archiver.
type Options struct {
	Bucket  string
	Prefix  string
	Region  string
	Profile string
}

// S3Archiver writes submissions to <prefix>/YYYY/MM/DD/<id>.json.
type S3Archiver struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Archiver loads AWS credentials from the default chain.
func NewS3Archiver(ctx context.Context, o Options) (*S3Archiver, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(o.Profile))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return New(s3.NewFromConfig(awsCfg), o.Bucket, o.Prefix), nil
}

// New wraps an existing client.
func New(client S3API, bucket, prefix string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for a submission.
func (a *S3Archiver) Key(s domain.ContactSubmission) string {
	return path.Join(a.prefix, s.CreatedAt.UTC().Format("2006/01/02"), s.ID+".json")
}

func (a *S3Archiver) Name() string { return "s3-archive" }

// Handle uploads the submission as JSON.
func (a *S3Archiver) Handle(ctx context.Context, s domain.ContactSubmission) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	key := a.Key(s)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"archived_at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return nil
}

// Ping checks the bucket is reachable with the configured credentials.
func (a *S3Archiver) Ping(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	return err
}
