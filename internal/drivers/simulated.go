package drivers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TravisRivera14/DriverAid/internal/logging"
)

// SimulatedSession serves a fixed inventory whose latest versions are known,
// so status is a plain version comparison and updates only rewrite the
// installed version in memory.
type SimulatedSession struct {
	reporter   Reporter
	catalogURL string
	drivers    []Driver
}

// NewSimulatedSession loads the inventory once; later scans refresh that set.
func NewSimulatedSession(ctx context.Context, inv InventorySource, reporter Reporter, catalogURL string) (*SimulatedSession, error) {
	raw, err := inv.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sample inventory: %w", err)
	}

	s := &SimulatedSession{
		reporter:   reporter,
		catalogURL: catalogURL,
		drivers:    buildDrivers(raw),
	}
	s.refresh()
	return s, nil
}

// Name returns the backend label.
func (s *SimulatedSession) Name() string {
	return "Simulated"
}

func (s *SimulatedSession) refresh() {
	for i := range s.drivers {
		s.drivers[i].ID = i + 1
		s.drivers[i].RefreshStatus(s.catalogURL)
	}
}

// Scan recomputes every status and returns the driver table.
func (s *SimulatedSession) Scan(ctx context.Context) ([]Driver, error) {
	s.refresh()
	log.Info("scan completed", "drivers", len(s.drivers), "outdated", countOutdated(s.drivers))
	return copyDrivers(s.drivers), nil
}

// Outdated returns the Outdated records of the current set.
func (s *SimulatedSession) Outdated(ctx context.Context) ([]Driver, error) {
	return filterOutdated(s.drivers), nil
}

// UpdateAll marks every outdated driver as installed at its latest version.
func (s *SimulatedSession) UpdateAll(ctx context.Context) (int, int, error) {
	updated, skipped := 0, 0
	for i := range s.drivers {
		d := &s.drivers[i]
		d.RefreshStatus(s.catalogURL)
		if d.Status != StatusOutdated {
			skipped++
			continue
		}
		d.VersionInstalled = d.VersionLatest
		d.RefreshStatus(s.catalogURL)
		updated++
	}
	log.Info("update all completed", "updated", updated, "skipped", skipped)
	return updated, skipped, nil
}

// UpdateOne sets the driver's installed version to its latest version. A driver
// that is already current stays Updated.
func (s *SimulatedSession) UpdateOne(ctx context.Context, id int) error {
	d, ok := findDriver(s.drivers, id)
	if !ok {
		return fmt.Errorf("driver %d: %w", id, ErrDriverNotFound)
	}
	d.VersionInstalled = d.VersionLatest
	d.RefreshStatus(s.catalogURL)
	logging.ForDriver(log, id).Info("driver updated", "version", d.VersionInstalled)
	return nil
}

// ExportReport writes the HTML and CSV reports into folder.
func (s *SimulatedSession) ExportReport(ctx context.Context, folder string) (string, string, error) {
	return s.reporter.Write(folder, "DriverAid - Report (simulated)", copyDrivers(s.drivers))
}

// ManualLinks lists the catalog link of every driver.
func (s *SimulatedSession) ManualLinks(ctx context.Context) ([]ManualLink, error) {
	return manualLinks(s.drivers), nil
}

// InstallOffline validates folder but never installs: there is no package
// installer behind the simulated backend.
func (s *SimulatedSession) InstallOffline(ctx context.Context, folder string) (int, string) {
	abs, code, msg := checkFolder(folder)
	if code != 0 {
		return code, msg
	}
	return OfflineFailureCode, fmt.Sprintf("offline install is not available on the %s backend (folder: %s)", s.Name(), abs)
}

// SupportsOffline reports false.
func (s *SimulatedSession) SupportsOffline() bool {
	return false
}

// checkFolder resolves folder and returns a non-zero code with a message when it
// is not an existing directory.
func checkFolder(folder string) (string, int, string) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return folder, OfflineFailureCode, fmt.Sprintf("invalid folder %q: %v", folder, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return abs, OfflineFailureCode, fmt.Sprintf("folder does not exist: %s", abs)
	}
	return abs, 0, ""
}
