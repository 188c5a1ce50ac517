// Package s3 implements storage.ObjectStore on AWS S3, where the production
// pipeline keeps its archives, extracted files, registry document, and
// processed output.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"

	"tripdata/internal/storage"
)

// Option configures a Store.
type Option func(*Store)

// WithRegion sets the AWS region used when building the session.
func WithRegion(region string) Option {
	return func(s *Store) { s.region = region }
}

// WithClient injects a prebuilt S3 API client (used by tests).
func WithClient(c Client) Option {
	return func(s *Store) { s.api = c }
}

// Client is the subset of the S3 API the store uses.
type Client interface {
	GetObjectWithContext(aws.Context, *awss3.GetObjectInput, ...request.Option) (*awss3.GetObjectOutput, error)
	PutObjectWithContext(aws.Context, *awss3.PutObjectInput, ...request.Option) (*awss3.PutObjectOutput, error)
	ListObjectsV2PagesWithContext(aws.Context, *awss3.ListObjectsV2Input, func(*awss3.ListObjectsV2Output, bool) bool, ...request.Option) error
	CopyObjectWithContext(aws.Context, *awss3.CopyObjectInput, ...request.Option) (*awss3.CopyObjectOutput, error)
	DeleteObjectWithContext(aws.Context, *awss3.DeleteObjectInput, ...request.Option) (*awss3.DeleteObjectOutput, error)
}

// Store is an S3-bucket-backed object store.
type Store struct {
	bucket string
	region string
	api    Client
}

// New builds a Store for bucket. Without WithClient, a shared-config AWS
// session is created (credentials resolve the usual way: env, profile, role).
func New(bucket string, opts ...Option) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3: bucket must not be empty")
	}
	s := &Store{bucket: bucket}
	for _, opt := range opts {
		opt(s)
	}
	if s.api == nil {
		cfg := aws.NewConfig()
		if s.region != "" {
			cfg = cfg.WithRegion(s.region)
		}
		sess, err := session.NewSessionWithOptions(session.Options{
			Config:            *cfg,
			SharedConfigState: session.SharedConfigEnable,
		})
		if err != nil {
			return nil, fmt.Errorf("s3: create session: %w", err)
		}
		s.api = awss3.New(sess)
	}
	return s, nil
}

// Get fetches an object. NoSuchKey maps to storage.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.api.GetObjectWithContext(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3: get %s: %w", key, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("s3: get %s: %w", key, err)
	}
	return out.Body, nil
}

// Put uploads an object. The body is buffered: PutObject needs a seekable
// reader and the files this pipeline moves are comfortably memory-sized.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("s3: put %s: read body: %w", key, err)
	}
	in := &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(b),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.api.PutObjectWithContext(ctx, in); err != nil {
		return fmt.Errorf("s3: put %s: %w", key, err)
	}
	return nil
}

// List pages through ListObjectsV2 and returns all keys under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.api.ListObjectsV2PagesWithContext(ctx, &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}, func(page *awss3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("s3: list %s: %w", prefix, err)
	}
	return keys, nil
}

// Move archives an object with the S3 idiom: server-side copy, then delete.
func (s *Store) Move(ctx context.Context, src, dst string) error {
	_, err := s.api.CopyObjectWithContext(ctx, &awss3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(dst),
		CopySource: aws.String(url.PathEscape(s.bucket + "/" + src)),
	})
	if err != nil {
		return fmt.Errorf("s3: copy %s -> %s: %w", src, dst, err)
	}
	if _, err := s.api.DeleteObjectWithContext(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(src),
	}); err != nil {
		return fmt.Errorf("s3: delete %s after copy: %w", src, err)
	}
	return nil
}

func isNotFound(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case awss3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
