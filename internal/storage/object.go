package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Andessonreis/corre-aqui-dash/internal/config"
)

// ObjectStorage stores files in an S3-compatible bucket (AWS S3 or Cloudflare R2)
type ObjectStorage struct {
	name    string
	client  *s3.Client
	bucket  string
	baseURL string
	// R2 has no per-object ACLs
	publicACL bool
}

// NewS3Storage creates an AWS S3 backed driver
func NewS3Storage(cfg *config.StorageConfig) (*ObjectStorage, error) {
	if cfg.AWSBucket == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}
	if cfg.AWSAccessKeyID == "" || cfg.AWSSecretAccessKey == "" {
		return nil, fmt.Errorf("AWS credentials are required")
	}

	region := cfg.AWSRegion
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &ObjectStorage{
		name:      "s3",
		client:    s3.NewFromConfig(awsCfg),
		bucket:    cfg.AWSBucket,
		baseURL:   fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.AWSBucket, region),
		publicACL: true,
	}, nil
}

// NewR2Storage creates a Cloudflare R2 backed driver
func NewR2Storage(cfg *config.StorageConfig) (*ObjectStorage, error) {
	if cfg.R2Bucket == "" {
		return nil, fmt.Errorf("R2 bucket name is required")
	}
	if cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" {
		return nil, fmt.Errorf("R2 credentials are required")
	}
	if cfg.R2AccountID == "" {
		return nil, fmt.Errorf("R2 account ID is required")
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	baseURL := strings.TrimSuffix(cfg.R2PublicURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://pub-%s.r2.dev", cfg.R2Bucket)
	}

	return &ObjectStorage{
		name:    "r2",
		client:  client,
		bucket:  cfg.R2Bucket,
		baseURL: baseURL,
	}, nil
}

func (o *ObjectStorage) Name() string { return o.name }

func (o *ObjectStorage) Upload(ctx context.Context, file io.Reader, key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	// PutObject needs a seekable body to compute the payload hash
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(o.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ContentType(key)),
	}
	if o.publicACL {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	if _, err := o.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload to %s: %w", o.name, err)
	}

	return o.PublicURL(key), nil
}

func (o *ObjectStorage) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	_, err = o.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", o.name, err)
	}
	return nil
}

func (o *ObjectStorage) PublicURL(key string) string {
	key, _ = cleanKey(key)
	return o.baseURL + "/" + key
}

func (o *ObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	key, err := cleanKey(key)
	if err != nil {
		return false, err
	}

	_, err = o.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check %s object existence: %w", o.name, err)
	}
	return true, nil
}

func (o *ObjectStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	result, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from %s: %w", o.name, err)
	}
	return result.Body, nil
}
