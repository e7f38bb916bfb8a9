package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Backblaze/blazer/b2"
)

// B2Provider uploads reports to a Backblaze B2 bucket.
type B2Provider struct {
	Bucket         string
	accountID      string
	applicationKey string

	bucket *b2.Bucket
}

// NewB2Provider creates a new B2Provider.
func NewB2Provider(bucket, accountID, applicationKey string) *B2Provider {
	return &B2Provider{Bucket: bucket, accountID: accountID, applicationKey: applicationKey}
}

func (b *B2Provider) Name() string { return "b2" }

// Upload streams a local file into the bucket.
func (b *B2Provider) Upload(ctx context.Context, localPath, remotePath string) error {
	if b.Bucket == "" || b.accountID == "" || b.applicationKey == "" {
		return errors.New("b2 bucket, account id and application key are required")
	}
	if err := requireArgs(localPath, remotePath); err != nil {
		return err
	}

	bucket, err := b.open(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	w := bucket.Object(remotePath).NewWriter(ctx, b2.WithAttrsOption(&b2.Attrs{ContentType: contentType(localPath)}))
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("b2 upload to %s/%s failed: %w", b.Bucket, remotePath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("b2 upload to %s/%s failed: %w", b.Bucket, remotePath, err)
	}
	return nil
}

// open authorizes once per provider; reports upload as a pair.
func (b *B2Provider) open(ctx context.Context) (*b2.Bucket, error) {
	if b.bucket != nil {
		return b.bucket, nil
	}
	client, err := b2.NewClient(ctx, b.accountID, b.applicationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize b2 account: %w", err)
	}
	bucket, err := client.Bucket(ctx, b.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to open b2 bucket %s: %w", b.Bucket, err)
	}
	b.bucket = bucket
	return bucket, nil
}
