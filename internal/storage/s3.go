package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the subset of *s3.Client used here.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 stores uploads in a bucket and keeps a local cache copy for loading.
type S3 struct {
	client s3API
	bucket string
	prefix string
	cache  *Local
	logger *slog.Logger
}

// NewS3 builds an S3 backend from the default AWS credential chain, with
// optional static credentials and a custom endpoint for S3-compatible
// services such as MinIO.
func NewS3(ctx context.Context, cfg Config, logger *slog.Logger) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage.bucket is required for s3 storage")
	}
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newS3WithClient(client, cfg, logger)
}

func newS3WithClient(client s3API, cfg Config, logger *slog.Logger) (*S3, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}
	cache, err := NewLocal(dir)
	if err != nil {
		return nil, err
	}
	return &S3{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		cache:  cache,
		logger: logger,
	}, nil
}

func newS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		opts = append(opts, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...), nil
}

func (s *S3) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Put caches r locally, then uploads the cached file.
func (s *S3) Put(ctx context.Context, key string, r io.Reader) (Object, error) {
	local, err := s.cache.Put(ctx, key, r)
	if err != nil {
		return Object{}, err
	}

	f, err := os.Open(local.Path)
	if err != nil {
		return Object{}, fmt.Errorf("failed to reopen cached upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	objectKey := s.objectKey(key)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          f,
		ContentLength: aws.Int64(local.Size),
		ContentType:   aws.String("text/csv"),
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload to S3: %w", err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.bucket, objectKey)
	s.logger.Debug("stored upload", slog.String("location", location), slog.Int64("bytes", local.Size))
	return Object{Location: location, Path: local.Path, Size: local.Size}, nil
}

// Fetch returns the cached copy of location, downloading it when missing.
func (s *S3) Fetch(ctx context.Context, location string) (string, error) {
	bucket, key, err := parseS3URL(location)
	if err != nil {
		return "", err
	}
	name := path.Base(key)
	if cached, err := s.cache.resolve(name); err == nil {
		if _, statErr := os.Stat(cached); statErr == nil {
			return cached, nil
		}
	}

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get S3 object: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	obj, err := s.cache.Put(ctx, name, resp.Body)
	if err != nil {
		return "", err
	}
	return obj.Path, nil
}

// Delete removes the object and its cached copy.
func (s *S3) Delete(ctx context.Context, location string) error {
	bucket, key, err := parseS3URL(location)
	if err != nil {
		return err
	}
	if cached, err := s.cache.resolve(path.Base(key)); err == nil {
		if err := s.cache.Delete(ctx, cached); err != nil {
			return err
		}
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete S3 object: %w", err)
	}
	return nil
}

// parseS3URL splits s3://bucket/key.
func parseS3URL(url string) (bucket, key string, err error) {
	if !strings.HasPrefix(url, "s3://") {
		return "", "", fmt.Errorf("invalid S3 URL: %s", url)
	}
	parts := strings.SplitN(strings.TrimPrefix(url, "s3://"), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid S3 URL: %s", url)
	}
	return parts[0], parts[1], nil
}
