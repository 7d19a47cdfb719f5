package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/sirupsen/logrus"
)

// AzureStore keeps files in an Azure Blob Storage container
type AzureStore struct {
	containerURL azblob.ContainerURL
	logger       *logrus.Logger
	baseURL      string
}

// NewAzureStore creates an Azure-backed store; Bucket names the container
func NewAzureStore(cfg Config, logger *logrus.Logger) (*AzureStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("container is required for azure storage")
	}

	accountName, accountKey := cfg.AzureAccountName, cfg.AzureAccountKey
	if cfg.AzureConnectionString != "" {
		var err error
		accountName, accountKey, err = parseConnectionString(cfg.AzureConnectionString)
		if err != nil {
			return nil, fmt.Errorf("failed to parse connection string: %w", err)
		}
	}

	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	endpoint := cfg.AzureEndpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}

	serviceURL := azblob.NewServiceURL(*u, azblob.NewPipeline(credential, azblob.PipelineOptions{}))
	containerURL := serviceURL.NewContainerURL(cfg.Bucket)

	return &AzureStore{containerURL: containerURL, logger: logger, baseURL: cfg.PublicBaseURL}, nil
}

func parseConnectionString(connStr string) (string, string, error) {
	var accountName, accountKey string
	for _, part := range strings.Split(connStr, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "AccountName":
			accountName = kv[1]
		case "AccountKey":
			accountKey = kv[1]
		}
	}
	if accountName == "" || accountKey == "" {
		return "", "", fmt.Errorf("connection string missing AccountName or AccountKey")
	}
	return accountName, accountKey, nil
}

func (s *AzureStore) Name() string {
	return ProviderAzure
}

// Store uploads content as a block blob
func (s *AzureStore) Store(ctx context.Context, content io.Reader, path, contentType string) (string, error) {
	blobURL := s.containerURL.NewBlockBlobURL(path)

	_, err := azblob.UploadStreamToBlockBlob(ctx, content, blobURL, azblob.UploadStreamToBlockBlobOptions{
		BufferSize:      4 * 1024 * 1024,
		MaxBuffers:      3,
		BlobHTTPHeaders: azblob.BlobHTTPHeaders{ContentType: contentType},
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"container": s.containerURL.String(),
			"blob":      path,
		}).Error("Failed to upload to Azure Blob Storage")
		return "", unavailable(err)
	}

	if s.baseURL != "" {
		return publicURL(s.baseURL, path), nil
	}
	blob := blobURL.URL()
	blob.RawQuery = ""
	return blob.String(), nil
}

// Delete removes a blob
func (s *AzureStore) Delete(ctx context.Context, path string) error {
	blobURL := s.containerURL.NewBlockBlobURL(path)
	_, err := blobURL.Delete(ctx, azblob.DeleteSnapshotsOptionInclude, azblob.BlobAccessConditions{})
	if err != nil {
		if stgErr, ok := err.(azblob.StorageError); ok && stgErr.ServiceCode() == azblob.ServiceCodeBlobNotFound {
			return nil
		}
		return unavailable(err)
	}
	return nil
}
