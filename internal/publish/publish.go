package publish

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/TravisRivera14/DriverAid/internal/config"
	"github.com/TravisRivera14/DriverAid/internal/logging"
)

var log = logging.L("publish")

// ErrDisabled is returned by New when no provider is configured.
var ErrDisabled = errors.New("report publishing is not configured")

// Provider uploads a local file to a remote store.
type Provider interface {
	Name() string
	Upload(ctx context.Context, localPath, remotePath string) error
}

// New builds the provider named by cfg.Provider.
func New(cfg config.PublishConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "":
		return nil, ErrDisabled
	case "local":
		return NewLocalProvider(cfg.LocalPath), nil
	case "s3":
		return NewS3Provider(cfg.Bucket, cfg.Region, cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey), nil
	case "gcs":
		return NewGCSProvider(cfg.Bucket, cfg.CredentialsFile, cfg.Endpoint), nil
	case "azure":
		return NewAzureProvider(cfg.Bucket, cfg.ConnectionString), nil
	case "b2":
		return NewB2Provider(cfg.Bucket, cfg.AccountID, cfg.ApplicationKey), nil
	default:
		return nil, fmt.Errorf("unknown publish provider %q", cfg.Provider)
	}
}

// RemotePath returns the object key for localPath under prefix.
func RemotePath(prefix, localPath string) string {
	name := filepath.Base(localPath)
	prefix = strings.Trim(strings.ReplaceAll(prefix, `\`, "/"), "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Files uploads every path under prefix and returns the remote keys that
// succeeded. Failures are collected rather than stopping the batch.
func Files(ctx context.Context, p Provider, prefix string, paths ...string) ([]string, error) {
	var (
		uploaded []string
		errs     []error
	)
	for _, local := range paths {
		remote := RemotePath(prefix, local)
		if err := p.Upload(ctx, local, remote); err != nil {
			log.Warn("report upload failed", "provider", p.Name(), "file", local, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(local), err))
			continue
		}
		log.Info("report uploaded", "provider", p.Name(), "remote", remote)
		uploaded = append(uploaded, remote)
	}
	return uploaded, errors.Join(errs...)
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func requireArgs(localPath, remotePath string) error {
	if localPath == "" {
		return errors.New("local source path is required")
	}
	if remotePath == "" {
		return errors.New("remote path is required")
	}
	return nil
}
