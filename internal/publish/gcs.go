package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSProvider uploads reports to a Google Cloud Storage bucket. Without a
// credentials file Application Default Credentials are used.
type GCSProvider struct {
	Bucket          string
	credentialsFile string
	endpoint        string
}

// NewGCSProvider creates a new GCSProvider.
func NewGCSProvider(bucket, credentialsFile, endpoint string) *GCSProvider {
	return &GCSProvider{Bucket: bucket, credentialsFile: credentialsFile, endpoint: endpoint}
}

func (g *GCSProvider) Name() string { return "gcs" }

// Upload streams a local file into the bucket.
func (g *GCSProvider) Upload(ctx context.Context, localPath, remotePath string) error {
	if g.Bucket == "" {
		return errors.New("gcs bucket is required")
	}
	if err := requireArgs(localPath, remotePath); err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	var opts []option.ClientOption
	if g.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(g.credentialsFile))
	}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create gcs client: %w", err)
	}
	defer client.Close()

	w := client.Bucket(g.Bucket).Object(remotePath).NewWriter(ctx)
	w.ContentType = contentType(localPath)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs upload to %s/%s failed: %w", g.Bucket, remotePath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs upload to %s/%s failed: %w", g.Bucket, remotePath, err)
	}
	return nil
}
