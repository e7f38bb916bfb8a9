package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TravisRivera14/DriverAid/internal/config"
	"github.com/TravisRivera14/DriverAid/internal/drivers"
	"github.com/TravisRivera14/DriverAid/internal/publish"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DRIVERAID_REQUIRE_ADMIN", "false")
	t.Setenv("DRIVERAID_PUBLISH_PROVIDER", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "DriverAid v"+version) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestScanCommandSimulated(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "scan", "--backend", "simulated", "--reports-dir", dir)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	for _, want := range []string{"Driver inventory", "Intel I219-V Network Adapter", "Updated", "Outdated"} {
		if !strings.Contains(out, want) {
			t.Errorf("scan output missing %q:\n%s", want, out)
		}
	}
	activity, err := os.ReadFile(filepath.Join(dir, "activity.log"))
	if err != nil {
		t.Fatalf("expected activity log in reports dir: %v", err)
	}
	for _, want := range []string{`msg="session started"`, "sessionId=", "backend=Simulated", `msg="session finished"`} {
		if !strings.Contains(string(activity), want) {
			t.Errorf("activity log missing %q:\n%s", want, activity)
		}
	}
}

func TestUpdateCommandFlags(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLI(t, "update", "--backend", "simulated", "--reports-dir", dir); err == nil {
		t.Fatal("expected error when neither --all nor --id is given")
	}
	if _, err := runCLI(t, "update", "--all", "--id", "1", "--backend", "simulated", "--reports-dir", dir); err == nil {
		t.Fatal("expected error when both --all and --id are given")
	}

	out, err := runCLI(t, "update", "--all", "--backend", "simulated", "--reports-dir", dir)
	if err != nil {
		t.Fatalf("update --all failed: %v", err)
	}
	if !strings.Contains(out, "Updated: 4 | Skipped: 1") {
		t.Fatalf("unexpected output %q", out)
	}

	_, err = runCLI(t, "update", "--id", "99", "--backend", "simulated", "--reports-dir", dir)
	if !errors.Is(err, drivers.ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}
}

func TestReportCommandWritesFiles(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "report", "--backend", "simulated", "--reports-dir", dir)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !strings.Contains(out, "Reports created:") {
		t.Fatalf("unexpected output %q", out)
	}
	htmlFiles, _ := filepath.Glob(filepath.Join(dir, "DriverAid-Report-*.html"))
	csvFiles, _ := filepath.Glob(filepath.Join(dir, "DriverAid-Report-*.csv"))
	if len(htmlFiles) != 1 || len(csvFiles) != 1 {
		t.Fatalf("expected one html and one csv, got %v %v", htmlFiles, csvFiles)
	}
}

func TestReportPublishWithoutProvider(t *testing.T) {
	_, err := runCLI(t, "report", "--publish", "--backend", "simulated", "--reports-dir", t.TempDir())
	if !errors.Is(err, publish.ErrDisabled) {
		t.Fatalf("expected publish disabled error, got %v", err)
	}
}

func TestInstallOfflineSimulatedExitCode(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "install-offline", dir, "--backend", "simulated", "--reports-dir", dir)

	var exitErr *exitCodeError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected exitCodeError, got %v", err)
	}
	if exitErr.code != drivers.OfflineFailureCode {
		t.Fatalf("expected code %d, got %d", drivers.OfflineFailureCode, exitErr.code)
	}
	if !strings.Contains(out, "not available") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestUnknownBackendIsFatal(t *testing.T) {
	_, err := runCLI(t, "scan", "--backend", "bogus", "--reports-dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("expected invalid configuration error, got %v", err)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "driveraid.yaml")
	if err := os.WriteFile(path, []byte("backend: system\nreports_dir: from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(&globalFlags{cfgFile: path, backend: "simulated"})
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Backend != "simulated" {
		t.Errorf("flag should override backend, got %q", cfg.Backend)
	}
	if cfg.ReportsDir != "from-file" {
		t.Errorf("reports_dir should come from the file, got %q", cfg.ReportsDir)
	}
}

func TestBuildSessionSampleFile(t *testing.T) {
	dir := t.TempDir()
	sample := filepath.Join(dir, "sample.yaml")
	fixture := `drivers:
  - device: Test NIC
    provider: Contoso
    version_installed: 1.0.0
    version_latest: 1.0.1
    hardware_id: PCI\VEN_1234
`
	if err := os.WriteFile(sample, []byte(fixture), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Backend = drivers.BackendSimulated
	cfg.SampleFile = sample

	session, err := buildSession(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildSession failed: %v", err)
	}
	rows, err := session.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Device != "Test NIC" || rows[0].Status != drivers.StatusOutdated {
		t.Fatalf("unexpected rows %+v", rows)
	}

	cfg.SampleFile = filepath.Join(dir, "missing.yaml")
	if _, err := buildSession(context.Background(), cfg); err == nil {
		t.Fatal("expected error for missing sample file")
	}
}
