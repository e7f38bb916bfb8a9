package inventory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSampleSourceReturnsFiveDeterministicDrivers(t *testing.T) {
	src := NewSampleSource()

	first, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(first) != 5 {
		t.Fatalf("expected 5 sample drivers, got %d", len(first))
	}

	equal := 0
	for _, d := range first {
		if d.VersionLatest == "" {
			t.Fatalf("sample driver %q has no latest version", d.Device)
		}
		if d.VersionInstalled == d.VersionLatest {
			equal++
		}
	}
	if equal != 1 || first[2].VersionInstalled != first[2].VersionLatest {
		t.Fatalf("expected only the third driver to be current, got %d current", equal)
	}

	first[0].Device = "changed"
	second, _ := src.List(context.Background())
	if second[0].Device == "changed" {
		t.Fatal("List must return a copy")
	}
}

func TestLoadSampleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	content := `drivers:
  - device: Bluetooth Radio
    provider: Qualcomm
    version_installed: "10.0.0.1"
    version_latest: "10.0.0.4"
    hardware_id: USB\VID_0CF3&PID_E300
  - device: Touchpad
    provider: Synaptics
    version_installed: "19.5.1"
    version_latest: "19.5.1"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := LoadSampleFile(path)
	if err != nil {
		t.Fatalf("LoadSampleFile: %v", err)
	}
	devices, _ := src.List(context.Background())
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[0].HardwareID != `USB\VID_0CF3&PID_E300` {
		t.Fatalf("unexpected hardware id %q", devices[0].HardwareID)
	}
	if devices[1].HardwareID != "" {
		t.Fatalf("missing field must be empty, got %q", devices[1].HardwareID)
	}
}

func TestLoadSampleFileRejectsEmptyFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("drivers: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadSampleFile(path)
	if err == nil || !strings.Contains(err.Error(), "no drivers") {
		t.Fatalf("expected empty fixture error, got %v", err)
	}
}
