package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client handles poster image storage. It implements pipeline.BlobStore.
type S3Client struct {
	client     *s3.Client
	bucketName string
	region     string
}

// S3Config holds configuration for the S3 client
type S3Config struct {
	BucketName string
	Region     string
	Profile    string // AWS profile to use
}

// NewS3Client creates a new S3 client with AWS SDK v2
func NewS3Client(ctx context.Context) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	bucketName := os.Getenv("S3_BUCKET_NAME")
	if bucketName == "" {
		bucketName = "yovibe-event-media"
	}

	return &S3Client{
		client:     s3.NewFromConfig(cfg),
		bucketName: bucketName,
		region:     cfg.Region,
	}, nil
}

// NewS3ClientWithConfig creates an S3 client with custom configuration
func NewS3ClientWithConfig(ctx context.Context, s3Config S3Config) (*S3Client, error) {
	var cfg aws.Config
	var err error

	if s3Config.Profile != "" {
		cfg, err = config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(s3Config.Profile))
	} else {
		cfg, err = config.LoadDefaultConfig(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if s3Config.Region != "" {
		cfg.Region = s3Config.Region
	}

	return &S3Client{
		client:     s3.NewFromConfig(cfg),
		bucketName: s3Config.BucketName,
		region:     cfg.Region,
	}, nil
}

// UploadImage stores raw image bytes under the given key and returns the
// publicly resolvable URL
func (s *S3Client) UploadImage(ctx context.Context, data []byte, key string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}
	key = strings.TrimPrefix(key, "/")

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("image/jpeg"),
		CacheControl: aws.String("public, max-age=86400"),
		Metadata: map[string]string{
			"uploaded-by": "yovibe-events-scraper",
			"upload-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return s.PublicURL(key), nil
}

// PublicURL generates the public URL for an object in the bucket
func (s *S3Client) PublicURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key)
}

// BucketName returns the configured bucket name
func (s *S3Client) BucketName() string {
	return s.bucketName
}
