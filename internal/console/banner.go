package console

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

const bannerArt = `
   ____       _                 _    _     _
  |  _ \ _ __(_)_   _____ _ __ / \  (_) __| |
  | | | | '__| \ \ / / _ \ '__/ _ \ | |/ _` + "`" + ` |
  | |_| | |  | |\ V /  __/ | / ___ \| | (_| |
  |____/|_|  |_| \_/ \___|_|/_/   \_\_|\__,_|
`

// HostDescription returns a one-line description of the running OS.
func HostDescription() string {
	info, err := host.Info()
	if err != nil || info == nil {
		return runtime.GOOS
	}
	parts := []string{info.OS}
	if info.Platform != "" {
		parts = append(parts, info.Platform)
	}
	if info.PlatformVersion != "" {
		parts = append(parts, info.PlatformVersion)
	}
	if info.KernelArch != "" {
		parts = append(parts, "("+info.KernelArch+")")
	}
	return strings.Join(parts, " ")
}

// Banner prints the title art, the backend in use, and the detected OS.
func Banner(w io.Writer, s Styles, backend, hostDesc string) {
	fmt.Fprint(w, s.Banner(bannerArt))
	fmt.Fprintln(w, s.Banner("        DriverAid ("+backend+")"))
	fmt.Fprintln(w, s.Dim("Detected operating system: "+hostDesc))
}
