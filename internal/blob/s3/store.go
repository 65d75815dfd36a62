// Package s3 resolves pre-signed object URLs against an S3-compatible
// bucket. The service itself never proxies image bytes; clients upload
// and fetch directly against the signed URLs.
package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/kailas-cloud/herbadex/internal/config"
	"github.com/kailas-cloud/herbadex/internal/domain"
)

// presigner is the subset of s3.PresignClient the store uses.
type presigner interface {
	PresignPutObject(
		ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions),
	) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(
		ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions),
	) (*v4.PresignedHTTPRequest, error)
}

// Store issues pre-signed upload and fetch URLs for scan blobs.
type Store struct {
	presign   presigner
	bucket    string
	keyPrefix string
	uploadTTL time.Duration
	fetchTTL  time.Duration
}

// New builds a store from configuration. A non-empty endpoint switches
// the client to path-style addressing for MinIO-style deployments.
func New(ctx context.Context, cfg *config.StorageConfig) (*Store, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if cfg.Endpoint != "" {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})

	return &Store{
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
		uploadTTL: time.Duration(cfg.UploadTTLSec) * time.Second,
		fetchTTL:  time.Duration(cfg.FetchTTLSec) * time.Second,
	}, nil
}

// ResolveUploadTarget mints a fresh object key and a pre-signed PUT URL
// bound to the declared content type.
func (s *Store) ResolveUploadTarget(ctx context.Context, contentType string) (domain.UploadTarget, error) {
	key := s.keyPrefix + uuid.NewString()

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.uploadTTL))
	if err != nil {
		return domain.UploadTarget{}, fmt.Errorf("presign upload: %w: %w", domain.ErrBlobResolution, err)
	}

	return domain.UploadTarget{
		Key:       key,
		URL:       req.URL,
		ExpiresAt: time.Now().Add(s.uploadTTL),
	}, nil
}

// ResolveFetchURL returns a pre-signed GET URL for a stored object. The
// URL is what gets handed to the vision provider and to browsers.
func (s *Store) ResolveFetchURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.fetchTTL))
	if err != nil {
		return "", fmt.Errorf("presign fetch %s: %w: %w", key, domain.ErrBlobResolution, err)
	}
	return req.URL, nil
}
