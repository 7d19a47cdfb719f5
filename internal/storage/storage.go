package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrStorageUnavailable wraps every provider failure
var ErrStorageUnavailable = errors.New("file storage unavailable")

// Provider names
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
	ProviderGCS   = "gcs"
	ProviderAzure = "azure"
)

// FileStore persists uploaded files and returns a durable locator
type FileStore interface {
	Store(ctx context.Context, content io.Reader, path, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
	Name() string
}

// Config selects and configures the storage provider
type Config struct {
	Provider      string
	Bucket        string
	PublicBaseURL string

	LocalBasePath string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	AWSForcePathStyle  bool

	GCPProjectID   string
	GCPKeyFilename string
	GCPEndpoint    string

	AzureAccountName      string
	AzureAccountKey       string
	AzureConnectionString string
	AzureEndpoint         string
}

// New builds the configured provider
func New(cfg Config, logger *logrus.Logger) (FileStore, error) {
	if logger == nil {
		logger = logrus.New()
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderLocal:
		return NewLocalStore(cfg.LocalBasePath, cfg.PublicBaseURL, logger)
	case ProviderS3:
		return NewS3Store(cfg, logger)
	case ProviderGCS:
		return NewGCSStore(cfg, logger)
	case ProviderAzure:
		return NewAzureStore(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// publicURL joins a configured base URL and an object path
func publicURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
