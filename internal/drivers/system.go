package drivers

import (
	"context"
	"fmt"

	"github.com/TravisRivera14/DriverAid/internal/logging"
)

var log = logging.L("drivers")

// SystemSession reconciles the live driver inventory against the update
// service. Failures of the update service are absorbed: they are logged and
// the before/after scan comparison stands in for a result.
type SystemSession struct {
	inventory  InventorySource
	updates    UpdateSource
	installer  PackageInstaller
	reporter   Reporter
	catalogURL string

	drivers []Driver
	titles  []string
	scanned bool
}

// SystemSessionConfig wires the collaborators of a SystemSession.
type SystemSessionConfig struct {
	Inventory  InventorySource
	Updates    UpdateSource
	Installer  PackageInstaller
	Reporter   Reporter
	CatalogURL string
}

// NewSystemSession creates a session over the live system. Inventory and
// Updates are required.
func NewSystemSession(cfg SystemSessionConfig) (*SystemSession, error) {
	if cfg.Inventory == nil {
		return nil, fmt.Errorf("system session: inventory source is required")
	}
	if cfg.Updates == nil {
		return nil, fmt.Errorf("system session: update source is required")
	}
	return &SystemSession{
		inventory:  cfg.Inventory,
		updates:    cfg.Updates,
		installer:  cfg.Installer,
		reporter:   cfg.Reporter,
		catalogURL: cfg.CatalogURL,
	}, nil
}

// Name returns the backend label.
func (s *SystemSession) Name() string {
	return "Windows"
}

// refreshCandidates queries the update service. A failed query counts as
// "no candidates".
func (s *SystemSession) refreshCandidates(ctx context.Context) {
	titles, err := s.updates.ListCandidates(ctx)
	if err != nil {
		log.Warn("driver update query failed", "error", err)
		titles = nil
	}
	s.titles = titles
}

// Scan replaces the driver set with a fresh inventory reconciled against the
// current update candidates.
func (s *SystemSession) Scan(ctx context.Context) ([]Driver, error) {
	raw, err := s.inventory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list installed drivers: %w", err)
	}

	s.refreshCandidates(ctx)
	s.drivers = Reconcile(raw, s.titles, s.catalogURL)
	s.scanned = true

	log.Info("scan completed", "drivers", len(s.drivers),
		"candidates", len(s.titles), "outdated", countOutdated(s.drivers))
	return copyDrivers(s.drivers), nil
}

func (s *SystemSession) ensureScanned(ctx context.Context) error {
	if s.scanned {
		return nil
	}
	_, err := s.Scan(ctx)
	return err
}

// Outdated returns the Outdated records, scanning first if needed.
func (s *SystemSession) Outdated(ctx context.Context) ([]Driver, error) {
	if err := s.ensureScanned(ctx); err != nil {
		return nil, err
	}
	return filterOutdated(s.drivers), nil
}

// UpdateAll installs every available driver update, then re-scans. updated is
// the drop in the outdated count, never negative and never above the new total.
// A non-zero exit from the installer is absorbed; an error means nothing was
// installed and is returned without a re-scan.
func (s *SystemSession) UpdateAll(ctx context.Context) (int, int, error) {
	if err := s.ensureScanned(ctx); err != nil {
		return 0, 0, err
	}

	s.refreshCandidates(ctx)
	code, err := s.updates.InstallAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("install all driver updates: %w", err)
	}
	if code != 0 {
		log.Warn("install all driver updates exited non-zero", "exitCode", code)
	}

	before := countOutdated(s.drivers)
	if _, err := s.Scan(ctx); err != nil {
		return 0, 0, err
	}
	after := countOutdated(s.drivers)

	total := len(s.drivers)
	updated := max(before-after, 0)
	updated = min(updated, total)
	skipped := total - updated

	log.Info("update all completed", "updated", updated, "skipped", skipped)
	return updated, skipped, nil
}

// UpdateOne installs the first update whose title mentions the driver and
// re-scans. A nil error means the install was issued, not that the driver
// version changed; many driver updates only apply after a restart.
func (s *SystemSession) UpdateOne(ctx context.Context, id int) error {
	if err := s.ensureScanned(ctx); err != nil {
		return err
	}

	target, ok := findDriver(s.drivers, id)
	if !ok {
		return fmt.Errorf("driver %d: %w", id, ErrDriverNotFound)
	}

	if len(s.titles) == 0 {
		s.refreshCandidates(ctx)
	}

	title, ok := firstMatchingTitle(*target, s.titles)
	if !ok {
		return fmt.Errorf("driver %d (%s): %w", id, target.Device, ErrNoMatchingUpdate)
	}

	dlog := logging.ForDriver(log, id)
	dlog.Info("installing driver update", "device", target.Device, "title", title)
	code, err := s.updates.InstallMatching(ctx, title)
	if err != nil {
		return fmt.Errorf("driver %d (%s): install %q: %w", id, target.Device, title, err)
	}
	if code != 0 {
		dlog.Warn("driver update install exited non-zero", "exitCode", code)
	}

	if _, err := s.Scan(ctx); err != nil {
		return err
	}
	return nil
}

// ExportReport writes the HTML and CSV reports, scanning first if needed.
func (s *SystemSession) ExportReport(ctx context.Context, folder string) (string, string, error) {
	if s.reporter == nil {
		return "", "", fmt.Errorf("no report writer configured")
	}
	if err := s.ensureScanned(ctx); err != nil {
		return "", "", err
	}
	return s.reporter.Write(folder, "DriverAid - Report (Windows)", copyDrivers(s.drivers))
}

// ManualLinks lists the catalog link of every driver, scanning first if needed.
func (s *SystemSession) ManualLinks(ctx context.Context) ([]ManualLink, error) {
	if err := s.ensureScanned(ctx); err != nil {
		return nil, err
	}
	return manualLinks(s.drivers), nil
}

// InstallOffline installs every package under folder. The installer's exit
// code and output are returned unchanged; the driver set is not re-scanned
// because freshly staged packages often need a restart to show up.
func (s *SystemSession) InstallOffline(ctx context.Context, folder string) (int, string) {
	abs, code, msg := checkFolder(folder)
	if code != 0 {
		return code, msg
	}
	if s.installer == nil {
		return OfflineFailureCode, "no package installer configured"
	}

	code, out := s.installer.InstallFromFolder(ctx, abs)
	log.Info("offline install finished", "folder", abs, "exitCode", code)
	return code, out
}

// SupportsOffline reports whether a package installer is wired.
func (s *SystemSession) SupportsOffline() bool {
	return s.installer != nil
}
