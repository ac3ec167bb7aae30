package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	cfg "github.com/achacynthia/expensetrack-backend/internal/config"
)

// S3ReceiptStore implements ReceiptStore using AWS S3
type S3ReceiptStore struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3ReceiptStore creates a new S3 receipt store
func NewS3ReceiptStore(ctx context.Context, s3cfg cfg.S3Config) (*S3ReceiptStore, error) {
	// Build AWS config options
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(s3cfg.Region),
	}

	// Add credentials if provided
	if s3cfg.AccessKeyID != "" && s3cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3cfg.AccessKeyID,
				s3cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with optional endpoint override for MinIO/LocalStack
	var client *s3.Client
	if s3cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	store := &S3ReceiptStore{
		client: client,
		bucket: s3cfg.Bucket,
		region: s3cfg.Region,
	}

	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// ensureBucket creates the bucket if it doesn't exist (private bucket, no public policy)
func (s *S3ReceiptStore) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) && !strings.Contains(err.Error(), "NotFound") {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload stores an object and returns its URL
func (s *S3ReceiptStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectPath),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", objectPath, err)
	}
	return s.GenerateURL(objectPath), nil
}

// Delete removes an object
func (s *S3ReceiptStore) Delete(ctx context.Context, objectPath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectPath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectPath, err)
	}
	return nil
}

// GenerateURL returns the canonical URL for an object
func (s *S3ReceiptStore) GenerateURL(objectPath string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectPath)
}
