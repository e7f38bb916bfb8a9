package publish

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureProvider uploads reports to an Azure Blob Storage container.
type AzureProvider struct {
	Container        string
	connectionString string
}

// NewAzureProvider creates a new AzureProvider.
func NewAzureProvider(container, connectionString string) *AzureProvider {
	return &AzureProvider{Container: container, connectionString: connectionString}
}

func (a *AzureProvider) Name() string { return "azure" }

// Upload sends a local file to the container as a block blob.
func (a *AzureProvider) Upload(ctx context.Context, localPath, remotePath string) error {
	if a.Container == "" || a.connectionString == "" {
		return errors.New("azure container and connection string are required")
	}
	if err := requireArgs(localPath, remotePath); err != nil {
		return err
	}

	client, err := azblob.NewClientFromConnectionString(a.connectionString, nil)
	if err != nil {
		return fmt.Errorf("failed to create azure blob client: %w", err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	if _, err := client.UploadFile(ctx, a.Container, remotePath, f, nil); err != nil {
		return fmt.Errorf("azure upload to %s/%s failed: %w", a.Container, remotePath, err)
	}
	return nil
}
