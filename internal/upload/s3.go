package upload

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Backend stores uploads in an S3-compatible bucket.
type S3Backend struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// S3Options configures the primary blob store backend.
type S3Options struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// NewS3Backend returns nil when credentials are incomplete; the caller simply
// omits it from the chain.
func NewS3Backend(opts S3Options) *S3Backend {
	if opts.Bucket == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil
	}

	s3opts := s3.Options{
		Region:       opts.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		UsePathStyle: true,
	}
	if opts.Endpoint != "" {
		s3opts.BaseEndpoint = aws.String(opts.Endpoint)
	}

	return &S3Backend{
		client:    s3.New(s3opts),
		bucket:    opts.Bucket,
		publicURL: strings.TrimSuffix(opts.PublicURL, "/"),
	}
}

func (b *S3Backend) Name() string { return "s3" }

func (b *S3Backend) Store(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := "uploads/" + filename

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	if b.publicURL != "" {
		return b.publicURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", b.bucket, key), nil
}
