//go:build !windows

package patching

import "errors"

// RunPreflight has nothing to check off Windows.
func RunPreflight(_ PreflightOptions) PreflightResult {
	return PreflightResult{OK: true}
}

// CreateRestorePoint is unavailable off Windows.
func CreateRestorePoint(_ string) error {
	return errors.New("system restore is only available on Windows")
}
