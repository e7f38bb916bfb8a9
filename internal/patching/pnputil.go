package patching

import (
	"context"
	"fmt"
	"strings"

	"github.com/TravisRivera14/DriverAid/internal/executor"
)

// PnpUtilInstaller installs .inf driver packages from a folder tree with pnputil.
type PnpUtilInstaller struct {
	exec   executor.ExecFunc
	binary string
}

// NewPnpUtilInstaller creates an installer that runs pnputil.exe through exec.
func NewPnpUtilInstaller(exec executor.ExecFunc) *PnpUtilInstaller {
	return &PnpUtilInstaller{exec: exec, binary: "pnputil.exe"}
}

// InstallFromFolder adds and installs every .inf under path, recursing into
// subfolders. It returns pnputil's exit code and combined output, or -1 and
// a message when pnputil could not be started.
func (p *PnpUtilInstaller) InstallFromFolder(ctx context.Context, path string) (int, string) {
	stdout, stderr, exitCode, err := p.exec(ctx, p.binary, PnpUtilArgs(path))
	if err != nil {
		log.Warn("pnputil failed to start", "folder", path, "error", err)
		return -1, fmt.Sprintf("failed to run pnputil: %v", err)
	}
	log.Info("pnputil finished", "folder", path, "exitCode", exitCode)
	return exitCode, stdout + stderr
}

// PnpUtilArgs builds the pnputil arguments for a folder install.
func PnpUtilArgs(folder string) []string {
	win := strings.TrimRight(strings.ReplaceAll(folder, "/", `\`), `\`)
	return []string{"/add-driver", win + `\*.inf`, "/subdirs", "/install"}
}
