//go:build !windows

package patching

// PendingRestart always reports false off Windows.
func PendingRestart() (bool, []string) {
	return false, nil
}
