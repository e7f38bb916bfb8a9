package patching

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/TravisRivera14/DriverAid/internal/executor"
)

// ModuleName is the PowerShell module that drives Windows Update.
const ModuleName = "PSWindowsUpdate"

const bootstrapScript = `$ErrorActionPreference='SilentlyContinue'
if (-not (Get-PackageProvider -Name NuGet -ListAvailable)) {
  Install-PackageProvider -Name NuGet -MinimumVersion 2.8.5.201 -Force | Out-Null
}
try { Set-PSRepository -Name PSGallery -InstallationPolicy Trusted } catch {}
if (-not (Get-Module -ListAvailable -Name PSWindowsUpdate)) {
  try { Install-Module PSWindowsUpdate -Force } catch {}
}
Import-Module PSWindowsUpdate -ErrorAction SilentlyContinue
try { Add-WUServiceManager -MicrosoftUpdate -Confirm:$false | Out-Null } catch {}
`

// LocalModuleDir returns the bundled PSWindowsUpdate directory under modulesDir
// when it exists, or "" otherwise.
func LocalModuleDir(modulesDir string) string {
	if modulesDir == "" {
		return ""
	}
	dir, err := filepath.Abs(filepath.Join(modulesDir, ModuleName))
	if err != nil {
		return ""
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}
	return dir
}

// ModulePathEnv returns the PSModulePath value with dir prepended. The second
// result is false when dir is empty or already listed.
func ModulePathEnv(dir, current string) (string, bool) {
	if dir == "" {
		return current, false
	}
	for _, entry := range strings.Split(current, ";") {
		if strings.EqualFold(strings.TrimSpace(entry), dir) {
			return current, false
		}
	}
	if current == "" {
		return dir, true
	}
	return dir + ";" + current, true
}

// Bootstrap makes sure PSWindowsUpdate is installed and imported and that the
// Microsoft Update service is registered. It is best effort: the returned
// error only reports that PowerShell itself could not be started.
func Bootstrap(ctx context.Context, exec executor.ExecFunc, shell string) error {
	if shell == "" {
		shell = "powershell"
	}
	_, stderr, exitCode, err := exec(ctx, shell, executor.PowerShellArgs(bootstrapScript))
	if err != nil {
		return fmt.Errorf("failed to run %s bootstrap: %w", ModuleName, err)
	}
	if exitCode != 0 {
		log.Warn("PSWindowsUpdate bootstrap exited non-zero", "exitCode", exitCode, "stderr", strings.TrimSpace(stderr))
	}
	return nil
}
