package patching

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/TravisRivera14/DriverAid/internal/executor"
)

// mockExec returns an ExecFunc that returns the given stdout/stderr/exitCode.
func mockExec(stdout, stderr string, exitCode int, err error) executor.ExecFunc {
	return func(ctx context.Context, name string, args []string) (string, string, int, error) {
		return stdout, stderr, exitCode, err
	}
}

type call struct {
	name string
	args []string
}

// recordingExec captures every invocation and answers with stdout.
func recordingExec(calls *[]call, stdout string) executor.ExecFunc {
	return func(ctx context.Context, name string, args []string) (string, string, int, error) {
		*calls = append(*calls, call{name: name, args: append([]string(nil), args...)})
		return stdout, "", 0, nil
	}
}

func lastScript(calls []call) string {
	if len(calls) == 0 {
		return ""
	}
	args := calls[len(calls)-1].args
	return args[len(args)-1]
}

func TestScanParsesArray(t *testing.T) {
	output := `[{"Title":"Intel - Display - 31.0.101.4502","KB":"","MaxDownloadSize":1048576,"IsDownloaded":false,"IsInstalled":false},
{"Title":"Realtek Semiconductor Corp. - Net - 10.68","KB":"KB123","MaxDownloadSize":2048,"IsDownloaded":true,"IsInstalled":false}]`

	source := NewWindowsUpdateSource(mockExec(output, "", 0, nil))
	updates, err := source.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].Title != "Intel - Display - 31.0.101.4502" {
		t.Errorf("updates[0].Title = %q", updates[0].Title)
	}
	if updates[1].KB != "KB123" || !updates[1].IsDownloaded {
		t.Errorf("unexpected second update: %+v", updates[1])
	}
}

func TestScanParsesSingleObject(t *testing.T) {
	output := `{"Title":"Intel - Display - 31.0.101.4502","KB":"","MaxDownloadSize":1048576,"IsDownloaded":false,"IsInstalled":false}`

	source := NewWindowsUpdateSource(mockExec(output, "", 0, nil))
	titles, err := source.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}
	if len(titles) != 1 || titles[0] != "Intel - Display - 31.0.101.4502" {
		t.Fatalf("unexpected titles: %v", titles)
	}
}

func TestScanEmptyOutputs(t *testing.T) {
	for _, output := range []string{"", "  \r\n", "[]", "null"} {
		source := NewWindowsUpdateSource(mockExec(output, "", 0, nil))
		updates, err := source.Scan(context.Background())
		if err != nil {
			t.Fatalf("Scan(%q) failed: %v", output, err)
		}
		if len(updates) != 0 {
			t.Fatalf("Scan(%q) expected no updates, got %d", output, len(updates))
		}
	}
}

func TestScanMalformedOutput(t *testing.T) {
	source := NewWindowsUpdateSource(mockExec("WARNING: something odd", "", 0, nil))
	if _, err := source.Scan(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestScanExecError(t *testing.T) {
	source := NewWindowsUpdateSource(mockExec("", "", -1, errors.New("powershell not found")))
	if _, err := source.Scan(context.Background()); err == nil {
		t.Fatal("expected error when PowerShell cannot start")
	}
}

func TestScanNonZeroExitWithoutOutput(t *testing.T) {
	source := NewWindowsUpdateSource(mockExec("", "module missing", 1, nil))
	_, err := source.Scan(context.Background())
	if err == nil || !strings.Contains(err.Error(), "module missing") {
		t.Fatalf("expected error carrying stderr, got %v", err)
	}
}

func TestListCandidatesKeepsEmptyTitles(t *testing.T) {
	output := `[{"Title":""},{"Title":"Realtek - Audio"}]`
	source := NewWindowsUpdateSource(mockExec(output, "", 0, nil))
	titles, err := source.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("expected both titles, got %v", titles)
	}
}

func TestInstallAllScript(t *testing.T) {
	var calls []call
	source := NewWindowsUpdateSource(recordingExec(&calls, ""), WithShell("pwsh"))

	code, err := source.InstallAll(context.Background())
	if err != nil {
		t.Fatalf("InstallAll failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if calls[len(calls)-1].name != "pwsh" {
		t.Fatalf("expected configured shell, got %q", calls[len(calls)-1].name)
	}
	script := lastScript(calls)
	for _, want := range []string{"Install-WindowsUpdate", "-MicrosoftUpdate", "-Category 'Drivers'", "-AcceptAll", "-IgnoreReboot"} {
		if !strings.Contains(script, want) {
			t.Errorf("install script missing %q:\n%s", want, script)
		}
	}
}

func TestInstallAllNonZeroExitIsNotAnError(t *testing.T) {
	source := NewWindowsUpdateSource(mockExec("", "failed", 5, nil))
	code, err := source.InstallAll(context.Background())
	if err != nil {
		t.Fatalf("non-zero exit must not be an error, got %v", err)
	}
	if code != 5 {
		t.Fatalf("expected exit code 5, got %d", code)
	}
}

func TestInstallMatchingQuotesTitle(t *testing.T) {
	var calls []call
	source := NewWindowsUpdateSource(recordingExec(&calls, ""))

	title := `Vendor's "Best" Driver $(Remove-Item C:\) - 1.0`
	if _, err := source.InstallMatching(context.Background(), title); err != nil {
		t.Fatalf("InstallMatching failed: %v", err)
	}

	script := lastScript(calls)
	want := `.Contains('Vendor''s "Best" Driver $(Remove-Item C:\) - 1.0')`
	if !strings.Contains(script, want) {
		t.Fatalf("expected single-quoted literal %s in script:\n%s", want, script)
	}
	if !strings.Contains(script, "Install-WindowsUpdate -Updates $u -AcceptAll -IgnoreReboot") {
		t.Fatalf("expected targeted install in script:\n%s", script)
	}
}

func TestInstallMatchingRejectsEmptyTitle(t *testing.T) {
	var calls []call
	source := NewWindowsUpdateSource(recordingExec(&calls, ""))
	if _, err := source.InstallMatching(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty title")
	}
	if len(calls) != 0 {
		t.Fatalf("expected no PowerShell invocation, got %d", len(calls))
	}
}

func TestQuotePSTypographicQuotes(t *testing.T) {
	got := quotePS("it’s")
	if got != "'it’’s'" {
		t.Fatalf("quotePS = %q", got)
	}
}

func TestInstallFailsOnPreflight(t *testing.T) {
	var calls []call
	source := NewWindowsUpdateSource(recordingExec(&calls, ""),
		WithPreflight(PreflightOptions{CheckDiskSpace: true, MinDiskSpaceGB: 1e12}))

	_, err := source.InstallAll(context.Background())
	var pf *ErrPreflightFailed
	if runtime.GOOS == "windows" && !errors.As(err, &pf) {
		t.Fatalf("expected ErrPreflightFailed, got %v", err)
	}
	if runtime.GOOS != "windows" && err != nil {
		t.Fatalf("expected no preflight failure on this platform, got %v", err)
	}
}
