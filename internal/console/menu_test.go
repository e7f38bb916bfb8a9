package console

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/TravisRivera14/DriverAid/internal/drivers"
	"github.com/TravisRivera14/DriverAid/internal/inventory"
	"github.com/TravisRivera14/DriverAid/internal/report"
)

func newTestMenu(t *testing.T, input string, cfg MenuConfig) (*Menu, *bytes.Buffer) {
	t.Helper()
	if cfg.Session == nil {
		session, err := drivers.NewSimulatedSession(context.Background(), inventory.NewSampleSource(), report.NewWriter(nil), "")
		if err != nil {
			t.Fatalf("NewSimulatedSession: %v", err)
		}
		cfg.Session = session
	}
	var out bytes.Buffer
	cfg.In = strings.NewReader(input)
	cfg.Out = &out
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = t.TempDir()
	}
	if cfg.DriversDir == "" {
		cfg.DriversDir = "drivers"
	}
	cfg.HostDesc = "test-os"
	cfg.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return NewMenu(cfg), &out
}

func TestMenuScanUpdateAllFlow(t *testing.T) {
	m, out := newTestMenu(t, "1\n\n2\n\n3\n\n2\n\n0\n", MenuConfig{})
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Detected operating system: test-os",
		"Driver inventory",
		"UHD Graphics",
		"Outdated drivers",
		"Updated: 4 | Skipped: 1",
		"Everything is up to date",
		"Goodbye",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(text, "7) Install drivers") {
		t.Error("offline option must be hidden on the simulated backend")
	}
}

func TestMenuUpdateOneInputs(t *testing.T) {
	m, out := newTestMenu(t, "4\nabc\n\n4\n99\n\n4\n1\n\n0\n", MenuConfig{})
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "Invalid ID") {
		t.Error("expected invalid ID message")
	}
	if !strings.Contains(text, "ID not found") {
		t.Error("expected not-found message")
	}
	if !strings.Contains(text, "Updated") {
		t.Error("expected success message")
	}
}

func TestMenuInvalidAndHiddenOptions(t *testing.T) {
	m, out := newTestMenu(t, "9\n\n7\n\n0\n", MenuConfig{})
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n := strings.Count(out.String(), "Invalid option"); n != 2 {
		t.Fatalf("expected 2 invalid option messages, got %d", n)
	}
}

func TestMenuEndOfInputExits(t *testing.T) {
	m, _ := newTestMenu(t, "1\n", MenuConfig{})
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run should end cleanly at EOF, got %v", err)
	}
}

func TestMenuStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, _ := newTestMenu(t, "1\n\n0\n", MenuConfig{})
	if err := m.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMenuExportPublishes(t *testing.T) {
	var published []string
	cfg := MenuConfig{
		Publish: func(ctx context.Context, paths ...string) ([]string, error) {
			published = append(published, paths...)
			return []string{"remote/a.html"}, errors.New("csv failed")
		},
	}
	m, out := newTestMenu(t, "5\n\n0\n", cfg)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(published) != 2 {
		t.Fatalf("expected both report files published, got %v", published)
	}
	for _, p := range published {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("published file %s does not exist: %v", p, err)
		}
	}
	text := out.String()
	if !strings.Contains(text, "Reports created:") || !strings.Contains(text, "published remote/a.html") {
		t.Errorf("unexpected export output:\n%s", text)
	}
	if !strings.Contains(text, "Publishing failed: csv failed") {
		t.Error("expected publish failure to be shown")
	}
}

func TestMenuManualLinks(t *testing.T) {
	m, out := newTestMenu(t, "6\n\n0\n", MenuConfig{})
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Manual download links") || !strings.Contains(text, drivers.DefaultCatalogURL) {
		t.Errorf("expected catalog links in output:\n%s", text)
	}
}

type offlineSession struct {
	drivers.Session
	folder string
	code   int
}

func (o *offlineSession) SupportsOffline() bool { return true }

func (o *offlineSession) InstallOffline(ctx context.Context, folder string) (int, string) {
	o.folder = folder
	return o.code, "pnputil output"
}

func TestMenuOfflineInstallDefaultsFolder(t *testing.T) {
	base, err := drivers.NewSimulatedSession(context.Background(), inventory.NewSampleSource(), report.NewWriter(nil), "")
	if err != nil {
		t.Fatal(err)
	}
	session := &offlineSession{Session: base}
	restartChecked := false
	cfg := MenuConfig{
		Session:    session,
		DriversDir: "C:/drivers",
		PendingRestart: func() (bool, []string) {
			restartChecked = true
			return true, []string{"component servicing restart pending"}
		},
	}
	m, out := newTestMenu(t, "7\n\n\n0\n", cfg)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if session.folder != "C:/drivers" {
		t.Fatalf("expected default folder, got %q", session.folder)
	}
	text := out.String()
	if !strings.Contains(text, "7) Install drivers from folder C:/drivers") {
		t.Error("offline option should be listed")
	}
	if !strings.Contains(text, "Offline install finished") || !strings.Contains(text, "pnputil output") {
		t.Errorf("unexpected offline output:\n%s", text)
	}
	if !restartChecked || !strings.Contains(text, "A restart is pending") {
		t.Error("expected pending restart notice")
	}
}

func TestOfflineResultMessages(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "Offline install finished"},
		{-1, "check the path or permissions"},
		{259, "non-zero code"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		OfflineResult(&buf, NewStyles(false), tt.code, "")
		if !strings.Contains(buf.String(), tt.want) || !strings.Contains(buf.String(), "(no output)") {
			t.Errorf("code %d: unexpected output %q", tt.code, buf.String())
		}
	}
}

func TestPlainStylesLeaveTextUntouched(t *testing.T) {
	s := NewStyles(false)
	if got := s.Status(drivers.StatusOutdated); got != "Outdated" {
		t.Fatalf("Status = %q", got)
	}
	if got := s.Status(""); got != "Unknown" {
		t.Fatalf("empty status should render Unknown, got %q", got)
	}
}

type blockedSession struct {
	drivers.Session
}

func (b *blockedSession) UpdateAll(ctx context.Context) (int, int, error) {
	return 0, 0, errors.New("install all driver updates: preflight check \"disk_space\" failed")
}

func (b *blockedSession) UpdateOne(ctx context.Context, id int) error {
	return errors.New("driver 1: preflight check \"disk_space\" failed")
}

func TestMenuBlockedInstallIsNotReportedAsSuccess(t *testing.T) {
	base, err := drivers.NewSimulatedSession(context.Background(), inventory.NewSampleSource(), report.NewWriter(nil), "")
	if err != nil {
		t.Fatal(err)
	}
	m, out := newTestMenu(t, "3\n\n4\n1\n\n0\n", MenuConfig{Session: &blockedSession{Session: base}})
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	text := out.String()
	if strings.Contains(text, "Updated: ") || strings.Contains(text, "Updated\n") {
		t.Errorf("blocked install must not print success:\n%s", text)
	}
	if n := strings.Count(text, `preflight check "disk_space" failed`); n != 2 {
		t.Errorf("expected both failures shown, got %d:\n%s", n, text)
	}
}
