package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GCSStore keeps files in a Google Cloud Storage bucket
type GCSStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
	logger  *logrus.Logger
}

// NewGCSStore creates a GCS-backed store
func NewGCSStore(cfg Config, logger *logrus.Logger) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required for gcs storage")
	}

	var opts []option.ClientOption
	if cfg.GCPKeyFilename != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCPKeyFilename))
	}
	if cfg.GCPEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.GCPEndpoint))
	}

	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://storage.googleapis.com/%s", cfg.Bucket)
	}

	return &GCSStore{client: client, bucket: cfg.Bucket, baseURL: baseURL, logger: logger}, nil
}

func (s *GCSStore) Name() string {
	return ProviderGCS
}

// Store streams content into a new object
func (s *GCSStore) Store(ctx context.Context, content io.Reader, path, contentType string) (string, error) {
	writer := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, content); err != nil {
		writer.Close()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"bucket": s.bucket,
			"path":   path,
		}).Error("Failed to upload to GCS")
		return "", unavailable(err)
	}
	if err := writer.Close(); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"bucket": s.bucket,
			"path":   path,
		}).Error("Failed to finalize GCS upload")
		return "", unavailable(err)
	}

	s.logger.WithFields(logrus.Fields{
		"bucket": s.bucket,
		"path":   path,
	}).Info("Uploaded file to GCS")
	return publicURL(s.baseURL, path), nil
}

// Delete removes an object; a missing object is not an error
func (s *GCSStore) Delete(ctx context.Context, path string) error {
	err := s.client.Bucket(s.bucket).Object(path).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return unavailable(err)
	}
	return nil
}
