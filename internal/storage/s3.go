package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps images in an S3 bucket and references them by public URL.
type S3Store struct {
	client S3API
	bucket string
	region string
}

// NewS3Store wraps an existing client.
func NewS3Store(client S3API, bucket, region string) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region}
}

// NewS3StoreFromCredentials loads the AWS configuration for region. Static
// credentials are used when accessKey is set; otherwise the default
// provider chain applies.
func NewS3StoreFromCredentials(ctx context.Context, bucket, region, accessKey, secretKey string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewS3Store(s3.NewFromConfig(cfg), bucket, region), nil
}

// Save uploads the image and returns its public link.
func (s *S3Store) Save(ctx context.Context, img *Image) (string, error) {
	key := path.Join(imageDir, uuid.New().String()+img.Ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", key, err)
	}
	return s.PublicLink(key), nil
}

// Delete removes the object behind ref. References outside the bucket are
// ignored.
func (s *S3Store) Delete(ctx context.Context, ref string) error {
	key := s.ObjectKey(ref)
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}
	return nil
}

// PublicLink returns the virtual-hosted URL of key.
func (s *S3Store) PublicLink(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// ObjectKey extracts the object key from a link made by PublicLink.
func (s *S3Store) ObjectKey(link string) string {
	key, ok := strings.CutPrefix(link, s.PublicLink(""))
	if !ok {
		return ""
	}
	return key
}
