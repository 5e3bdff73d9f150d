package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"farrier-backend/internal/config"
)

// Archiver uploads generated invoice PDFs to S3-compatible object storage so
// a copy survives outside the database. Optional: a nil Archiver is a no-op.
type Archiver struct {
	client *s3.Client
	bucket string
}

// NewArchiver returns nil (and no error) when archive storage is not configured
func NewArchiver(cfg *config.Config) (*Archiver, error) {
	if cfg.Archive.Bucket == "" || cfg.Archive.AccessKey == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	region := cfg.Archive.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			"",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure archive client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
		}
	})

	return &Archiver{client: client, bucket: cfg.Archive.Bucket}, nil
}

// Upload stores an object. Errors are returned, not fatal; callers treat
// archival as best-effort.
func (a *Archiver) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if a == nil {
		return nil
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Printf("[Archive] Uploaded %s (%d bytes)", key, len(data))
	return nil
}
