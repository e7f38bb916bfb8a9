package drivers

import (
	"context"
	"errors"
)

var (
	// ErrDriverNotFound is returned by UpdateOne for an id outside the last scan.
	ErrDriverNotFound = errors.New("driver not found")
	// ErrNoMatchingUpdate is returned by UpdateOne when no candidate title matches the driver.
	ErrNoMatchingUpdate = errors.New("no matching update")
)

// OfflineFailureCode is the exit code reported when an offline install could not
// start (missing folder, installer unavailable).
const OfflineFailureCode = -1

// RawDevice is one entry reported by an inventory source. Missing fields are
// empty strings. VersionLatest is only known to the sample source.
type RawDevice struct {
	Device           string `yaml:"device"`
	Provider         string `yaml:"provider"`
	VersionInstalled string `yaml:"version_installed"`
	VersionLatest    string `yaml:"version_latest"`
	HardwareID       string `yaml:"hardware_id"`
}

// InventorySource lists the installed drivers.
type InventorySource interface {
	List(ctx context.Context) ([]RawDevice, error)
}

// UpdateSource lists and installs driver updates from an update service.
// Exit codes are informational; callers treat them as best-effort.
type UpdateSource interface {
	ListCandidates(ctx context.Context) ([]string, error)
	InstallAll(ctx context.Context) (int, error)
	InstallMatching(ctx context.Context, title string) (int, error)
}

// PackageInstaller installs driver packages from a local folder.
type PackageInstaller interface {
	InstallFromFolder(ctx context.Context, path string) (int, string)
}

// Reporter writes the driver table to an HTML and a CSV file in folder.
type Reporter interface {
	Write(folder, title string, rows []Driver) (htmlPath, csvPath string, err error)
}

// Session is a backend owning one in-memory driver set. Returned slices are
// copies; only session methods mutate records.
type Session interface {
	// Name labels the backend in banners and report titles.
	Name() string
	Scan(ctx context.Context) ([]Driver, error)
	Outdated(ctx context.Context) ([]Driver, error)
	UpdateAll(ctx context.Context) (updated, skipped int, err error)
	UpdateOne(ctx context.Context, id int) error
	ExportReport(ctx context.Context, folder string) (htmlPath, csvPath string, err error)
	ManualLinks(ctx context.Context) ([]ManualLink, error)
	InstallOffline(ctx context.Context, folder string) (int, string)
	// SupportsOffline reports whether InstallOffline can reach a package installer.
	SupportsOffline() bool
}
