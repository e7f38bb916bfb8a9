package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/TravisRivera14/DriverAid/internal/drivers"
)

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

func sampleRows() []drivers.Driver {
	return []drivers.Driver{
		{ID: 1, Device: "Intel(R) Wi-Fi 6 AX201", Provider: "Intel", VersionInstalled: "22.10.0.7", VersionLatest: "22.20.0.6", Status: drivers.StatusOutdated, ManualLink: "https://catalog.example/?q=PCI\\VEN_8086"},
		{ID: 2, Device: `Realtek "HD" Audio, rev <b>`, Provider: "Realtek", VersionInstalled: "6.0.9235.1", VersionLatest: "6.0.9235.1", Status: drivers.StatusUpdated, ManualLink: "https://catalog.example/?q=HDAUDIO"},
	}
}

func TestWriteCreatesBothFilesWithSameTimestamp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	w := NewWriter(stubClock{now: time.Date(2026, 3, 9, 14, 5, 7, 0, time.Local)})

	htmlPath, csvPath, err := w.Write(dir, "DriverAid - Report (simulated)", sampleRows())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if filepath.Base(htmlPath) != "DriverAid-Report-20260309-140507.html" {
		t.Errorf("unexpected html name %q", filepath.Base(htmlPath))
	}
	if filepath.Base(csvPath) != "DriverAid-Report-20260309-140507.csv" {
		t.Errorf("unexpected csv name %q", filepath.Base(csvPath))
	}
	if filepath.Dir(htmlPath) != dir || filepath.Dir(csvPath) != dir {
		t.Errorf("files not written to %q: %q %q", dir, htmlPath, csvPath)
	}
}

func TestWriteCSVHasHeaderAndOneRowPerDriver(t *testing.T) {
	w := NewWriter(stubClock{now: time.Now()})
	_, csvPath, err := w.Write(t.TempDir(), "title", sampleRows())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("csv parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "ID,Device,Provider,Installed,Latest,Status,Link" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[2][1] != `Realtek "HD" Audio, rev <b>` {
		t.Errorf("device with quotes and comma not round-tripped: %q", records[2][1])
	}
	if records[1][5] != "Outdated" {
		t.Errorf("unexpected status %q", records[1][5])
	}
}

func TestWriteHTMLEscapesAndLinks(t *testing.T) {
	w := NewWriter(stubClock{now: time.Now()})
	htmlPath, _, err := w.Write(t.TempDir(), "DriverAid - Report (Windows)", sampleRows())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)
	if !strings.Contains(page, "<h1>DriverAid - Report (Windows)</h1>") {
		t.Error("missing title heading")
	}
	if strings.Contains(page, "<b>") {
		t.Error("device name must be escaped")
	}
	if strings.Count(page, "<tr><td>") != 2 {
		t.Errorf("expected 2 driver rows, got %d", strings.Count(page, "<tr><td>"))
	}
	if !strings.Contains(page, `href="https://catalog.example/?q=HDAUDIO"`) {
		t.Error("missing manual link")
	}
}

func TestWriteEmptyTable(t *testing.T) {
	w := NewWriter(nil)
	htmlPath, csvPath, err := w.Write(t.TempDir(), "empty", nil)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, _ := os.ReadFile(csvPath)
	if strings.TrimSpace(string(data)) != "ID,Device,Provider,Installed,Latest,Status,Link" {
		t.Errorf("expected header only, got %q", data)
	}
	if _, err := os.Stat(htmlPath); err != nil {
		t.Errorf("html not written: %v", err)
	}
}

func TestWriteFolderIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewWriter(nil).Write(file, "t", sampleRows()); err == nil {
		t.Fatal("expected error when folder is a regular file")
	}
}
