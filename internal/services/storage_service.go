// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/hearthline/commerce-api/internal/config"
)

// ObjectStorage persists encoded image variants by key.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

type StorageService struct {
	s3Client *s3.S3
	config   config.AWSConfig
	log      *logrus.Entry

	// local holds objects when no AWS credentials are configured.
	mu    sync.RWMutex
	local map[string][]byte
}

func NewStorageService(cfg config.AWSConfig, log *logrus.Entry) (*StorageService, error) {
	if cfg.AccessKeyID == "" {
		// Return service without S3 for local development
		log.Warn("AWS credentials not configured, storing images in memory")
		return &StorageService{config: cfg, log: log, local: make(map[string][]byte)}, nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   cfg,
		log:      log,
	}, nil
}

func (s *StorageService) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if s.s3Client == nil {
		s.mu.Lock()
		s.local[key] = append([]byte(nil), data...)
		s.mu.Unlock()
		return nil
	}

	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	}

	if _, err := s.s3Client.PutObjectWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	return nil
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	if s.s3Client == nil {
		s.mu.Lock()
		delete(s.local, key)
		s.mu.Unlock()
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", key, err)
	}
	return nil
}

// Object returns a locally stored object. It is only populated when S3 is
// not configured.
func (s *StorageService) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.local[key]
	return data, ok
}

// PublicBaseURL is the URL prefix objects are served from.
func (s *StorageService) PublicBaseURL() string {
	if s.config.CloudFrontURL != "" {
		return s.config.CloudFrontURL
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.config.S3Bucket, s.config.Region)
}

// Local reports whether objects are held in memory instead of S3.
func (s *StorageService) Local() bool {
	return s.s3Client == nil
}
