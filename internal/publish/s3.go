package publish

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Provider uploads reports to an S3-compatible bucket. Without static keys
// the default AWS credential chain is used.
type S3Provider struct {
	Bucket          string
	Region          string
	Endpoint        string
	accessKeyID     string
	secretAccessKey string

	uploader *manager.Uploader
}

// NewS3Provider creates a new S3Provider.
func NewS3Provider(bucket, region, endpoint, accessKeyID, secretAccessKey string) *S3Provider {
	return &S3Provider{
		Bucket:          bucket,
		Region:          region,
		Endpoint:        endpoint,
		accessKeyID:     accessKeyID,
		secretAccessKey: secretAccessKey,
	}
}

func (s *S3Provider) Name() string { return "s3" }

// Upload sends a local file to the bucket.
func (s *S3Provider) Upload(ctx context.Context, localPath, remotePath string) error {
	if s.Bucket == "" {
		return errors.New("s3 bucket is required")
	}
	if err := requireArgs(localPath, remotePath); err != nil {
		return err
	}

	uploader, err := s.client(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(remotePath),
		Body:        f,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return fmt.Errorf("s3 upload to %s/%s failed: %w", s.Bucket, remotePath, err)
	}
	return nil
}

func (s *S3Provider) client(ctx context.Context) (*manager.Uploader, error) {
	if s.uploader != nil {
		return s.uploader, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if s.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.Region))
	}
	if s.accessKeyID != "" && s.secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.accessKeyID, s.secretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
			o.UsePathStyle = true
		}
	})
	s.uploader = manager.NewUploader(client)
	return s.uploader, nil
}
