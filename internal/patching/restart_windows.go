//go:build windows

package patching

import (
	"golang.org/x/sys/windows/registry"
)

// PendingRestart reports whether Windows has a restart queued, along with the reasons.
// Driver installs usually land under PnP or Component Based Servicing keys.
func PendingRestart() (bool, []string) {
	var reasons []string

	if keyExists(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows\CurrentVersion\WindowsUpdate\Auto Update\RebootRequired`) {
		reasons = append(reasons, "Windows Update requires a restart")
	}
	if keyExists(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows\CurrentVersion\Component Based Servicing\RebootPending`) {
		reasons = append(reasons, "component servicing restart pending")
	}
	if keyExists(registry.LOCAL_MACHINE, `SYSTEM\CurrentControlSet\Control\Session Manager\PendingFileRenameOperations2`) ||
		hasPendingFileRenames() {
		reasons = append(reasons, "pending file rename operations")
	}

	return len(reasons) > 0, reasons
}

func keyExists(root registry.Key, path string) bool {
	k, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	k.Close()
	return true
}

func hasPendingFileRenames() bool {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE,
		`SYSTEM\CurrentControlSet\Control\Session Manager`, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()

	val, _, err := k.GetStringsValue("PendingFileRenameOperations")
	if err != nil {
		return false
	}
	return len(val) > 0
}
