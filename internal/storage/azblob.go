package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/Azure/azure-pipeline-go/pipeline"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-storage-blob-go/azblob"
)

const storageTokenScope = "https://storage.azure.com/.default"

// AzureBlobStorage implements Backend on an Azure Storage container
type AzureBlobStorage struct {
	account   string
	container string
	prefix    string
	url       azblob.ContainerURL
	ensured   bool
}

// NewAzureBlobStorage creates a backend for azurerm://<account>/<container>/<prefix>
func NewAzureBlobStorage(account, container, prefix string, credential azblob.Credential) (*AzureBlobStorage, error) {
	if account == "" || container == "" {
		return nil, fmt.Errorf("Azure storage account and container are required")
	}

	// Azure Storage URL format: https://<account>.blob.core.windows.net/<container>
	containerURL, err := url.Parse(fmt.Sprintf("https://%s.blob.core.windows.net/%s", account, container))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Azure container URL: %w", err)
	}

	return newAzureBlobStorageAt(account, container, prefix, *containerURL, azblob.NewPipeline(credential, azblob.PipelineOptions{})), nil
}

func newAzureBlobStorageAt(account, container, prefix string, containerURL url.URL, p pipeline.Pipeline) *AzureBlobStorage {
	return &AzureBlobStorage{
		account:   account,
		container: container,
		prefix:    prefix,
		url:       azblob.NewContainerURL(containerURL, p),
	}
}

// AzureBlobCredential returns a shared key credential when a key is given,
// otherwise an Azure AD bearer token for Storage obtained from tokenCredential.
func AzureBlobCredential(ctx context.Context, account, accountKey string, tokenCredential azcore.TokenCredential) (azblob.Credential, error) {
	if accountKey != "" {
		cred, err := azblob.NewSharedKeyCredential(account, accountKey)
		if err != nil {
			return nil, fmt.Errorf("invalid storage account key for %s: %w", account, err)
		}
		return cred, nil
	}

	if tokenCredential == nil {
		return nil, fmt.Errorf("no credential for storage account %s: set storage.azure.account_key or log in to Azure", account)
	}

	token, err := tokenCredential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{storageTokenScope}})
	if err != nil {
		return nil, fmt.Errorf("failed to get storage token for %s: %w", account, err)
	}
	// a backup write finishes well within the token lifetime, so no refresher
	return azblob.NewTokenCredential(token.Token, nil), nil
}

// Put uploads the artifact as a block blob
func (s *AzureBlobStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := s.ensureContainer(ctx); err != nil {
		return "", err
	}

	blobURL := s.url.NewBlockBlobURL(s.blobName(key))
	_, err := azblob.UploadBufferToBlockBlob(ctx, data, blobURL, azblob.UploadToBlockBlobOptions{
		BlobHTTPHeaders: azblob.BlobHTTPHeaders{ContentType: contentType},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", s.Location(key), err)
	}

	return s.Location(key), nil
}

// Get downloads the artifact
func (s *AzureBlobStorage) Get(ctx context.Context, key string) ([]byte, error) {
	blobURL := s.url.NewBlobURL(s.blobName(key))

	response, err := blobURL.Download(ctx, 0, azblob.CountToEnd, azblob.BlobAccessConditions{}, false, azblob.ClientProvidedKeyOptions{})
	if err != nil {
		if stgErr, ok := err.(azblob.StorageError); ok && stgErr.ServiceCode() == azblob.ServiceCodeBlobNotFound {
			return nil, fmt.Errorf("%s: %w", s.Location(key), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download %s: %w", s.Location(key), err)
	}
	body := response.Body(azblob.RetryReaderOptions{})
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Azure blob content: %w", err)
	}
	return data, nil
}

// Location returns azurerm://<account>/<container>/<blob>
func (s *AzureBlobStorage) Location(key string) string {
	return fmt.Sprintf("%s://%s/%s/%s", SchemeAzure, s.account, s.container, s.blobName(key))
}

func (s *AzureBlobStorage) Close() error {
	return nil
}

// ensureContainer creates the container unless it already exists
func (s *AzureBlobStorage) ensureContainer(ctx context.Context) error {
	if s.ensured {
		return nil
	}

	_, err := s.url.Create(ctx, azblob.Metadata{}, azblob.PublicAccessNone)
	if err != nil {
		stgErr, ok := err.(azblob.StorageError)
		if !ok || stgErr.ServiceCode() != azblob.ServiceCodeContainerAlreadyExists {
			return fmt.Errorf("failed to create container %s in %s: %w", s.container, s.account, err)
		}
	}

	s.ensured = true
	return nil
}

func (s *AzureBlobStorage) blobName(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}
