package patching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TravisRivera14/DriverAid/internal/executor"
	"github.com/TravisRivera14/DriverAid/internal/logging"
)

var log = logging.L("patching")

const importModule = "$ErrorActionPreference='SilentlyContinue'\nImport-Module PSWindowsUpdate -ErrorAction SilentlyContinue\n"

const scanScript = importModule + `$u = Get-WindowsUpdate -MicrosoftUpdate -Category 'Drivers' -IgnoreReboot -ErrorAction SilentlyContinue
if ($u) {
  $u | Select-Object Title,KB,MaxDownloadSize,IsDownloaded,IsInstalled | ConvertTo-Json -Depth 3 -Compress
} else {
  "[]"
}
`

const installAllScript = importModule +
	"Install-WindowsUpdate -MicrosoftUpdate -Category 'Drivers' -AcceptAll -IgnoreReboot -ErrorAction SilentlyContinue | Out-Null\n"

const microsoftUpdateScript = "Try { Add-WUServiceManager -MicrosoftUpdate -Confirm:$false -ErrorAction SilentlyContinue | Out-Null } Catch {}"

// WindowsUpdateSource queries and installs driver-category updates through
// the PSWindowsUpdate PowerShell module.
type WindowsUpdateSource struct {
	exec         executor.ExecFunc
	shell        string
	preflight    *PreflightOptions
	restorePoint bool
}

// Option configures a WindowsUpdateSource.
type Option func(*WindowsUpdateSource)

// WithShell overrides the PowerShell executable (default "powershell").
func WithShell(path string) Option {
	return func(w *WindowsUpdateSource) {
		if path != "" {
			w.shell = path
		}
	}
}

// WithPreflight runs the given checks before every install.
func WithPreflight(opts PreflightOptions) Option {
	return func(w *WindowsUpdateSource) { w.preflight = &opts }
}

// WithRestorePoint requests a System Restore checkpoint before every install.
func WithRestorePoint() Option {
	return func(w *WindowsUpdateSource) { w.restorePoint = true }
}

// NewWindowsUpdateSource creates a source that runs PowerShell through exec.
func NewWindowsUpdateSource(exec executor.ExecFunc, opts ...Option) *WindowsUpdateSource {
	w := &WindowsUpdateSource{exec: exec, shell: "powershell"}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Scan returns the driver updates Microsoft Update currently offers.
func (w *WindowsUpdateSource) Scan(ctx context.Context) ([]DriverUpdate, error) {
	w.ensureMicrosoftUpdate(ctx)

	stdout, stderr, exitCode, err := w.powershell(ctx, scanScript)
	if err != nil {
		return nil, fmt.Errorf("driver update query failed: %w", err)
	}
	if exitCode != 0 && strings.TrimSpace(stdout) == "" {
		return nil, fmt.Errorf("driver update query failed (exit %d): %s", exitCode, strings.TrimSpace(stderr))
	}

	return parseDriverUpdates(stdout)
}

// ListCandidates returns the titles of all offered driver updates.
func (w *WindowsUpdateSource) ListCandidates(ctx context.Context) ([]string, error) {
	updates, err := w.Scan(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(updates))
	for _, u := range updates {
		titles = append(titles, u.Title)
	}
	return titles, nil
}

// InstallAll installs every offered driver update without rebooting.
func (w *WindowsUpdateSource) InstallAll(ctx context.Context) (int, error) {
	if err := w.beforeInstall(ctx, "Before driver updates"); err != nil {
		return -1, err
	}

	_, stderr, exitCode, err := w.powershell(ctx, installAllScript)
	if err != nil {
		return -1, fmt.Errorf("driver update install failed: %w", err)
	}
	if exitCode != 0 {
		log.Warn("driver update install exited non-zero", "exitCode", exitCode, "stderr", strings.TrimSpace(stderr))
	}
	return exitCode, nil
}

// InstallMatching installs the offered driver updates whose title contains title.
func (w *WindowsUpdateSource) InstallMatching(ctx context.Context, title string) (int, error) {
	if strings.TrimSpace(title) == "" {
		return -1, fmt.Errorf("update title must not be empty")
	}
	if err := w.beforeInstall(ctx, "Before driver update: "+title); err != nil {
		return -1, err
	}

	_, stderr, exitCode, err := w.powershell(ctx, installMatchingScript(title))
	if err != nil {
		return -1, fmt.Errorf("driver update install failed: %w", err)
	}
	if exitCode != 0 {
		log.Warn("driver update install exited non-zero", "title", title, "exitCode", exitCode, "stderr", strings.TrimSpace(stderr))
	}
	return exitCode, nil
}

func (w *WindowsUpdateSource) beforeInstall(ctx context.Context, description string) error {
	if w.preflight != nil {
		if err := RunPreflight(*w.preflight).FirstError(); err != nil {
			return err
		}
	}
	if w.restorePoint {
		if err := CreateRestorePoint(description); err != nil {
			log.Debug("restore point creation failed (non-fatal)", "error", err)
		}
	}
	w.ensureMicrosoftUpdate(ctx)
	return nil
}

// ensureMicrosoftUpdate registers the Microsoft Update service so driver
// updates are offered at all. Failures are ignored.
func (w *WindowsUpdateSource) ensureMicrosoftUpdate(ctx context.Context) {
	if _, _, _, err := w.powershell(ctx, importModule+microsoftUpdateScript); err != nil {
		log.Debug("registering Microsoft Update failed", "error", err)
	}
}

func (w *WindowsUpdateSource) powershell(ctx context.Context, script string) (string, string, int, error) {
	return w.exec(ctx, w.shell, executor.PowerShellArgs(script))
}

// installMatchingScript builds a script that re-queries the offered updates
// and installs those whose title contains title. The title is embedded as a
// single-quoted literal so no PowerShell expansion applies to it.
func installMatchingScript(title string) string {
	return importModule + fmt.Sprintf(`$u = Get-WindowsUpdate -MicrosoftUpdate -Category 'Drivers' -IgnoreReboot | Where-Object { $_.Title -and $_.Title.Contains(%s) }
if ($u) {
  Install-WindowsUpdate -Updates $u -AcceptAll -IgnoreReboot -ErrorAction SilentlyContinue | Out-Null
}
`, quotePS(title))
}

// PowerShell treats the typographic single quotes as quote characters too.
var psQuoteEscaper = strings.NewReplacer(
	"'", "''",
	"‘", "‘‘",
	"’", "’’",
	"‚", "‚‚",
	"‛", "‛‛",
)

// quotePS renders s as a PowerShell single-quoted string literal.
func quotePS(s string) string {
	return "'" + psQuoteEscaper.Replace(s) + "'"
}

// parseDriverUpdates accepts ConvertTo-Json output, which is an array for
// several updates and a bare object for exactly one.
func parseDriverUpdates(output string) ([]DriverUpdate, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" || trimmed == "null" || trimmed == "[]" {
		return nil, nil
	}

	var updates []DriverUpdate
	if err := json.Unmarshal([]byte(trimmed), &updates); err == nil {
		return updates, nil
	}

	var single DriverUpdate
	if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
		return nil, fmt.Errorf("failed to parse driver update list: %w", err)
	}
	return []DriverUpdate{single}, nil
}
