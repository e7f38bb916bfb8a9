//go:build !windows

package inventory

import (
	"errors"

	"github.com/TravisRivera14/DriverAid/internal/drivers"
)

// SystemSupported reports whether this platform has a live driver inventory.
const SystemSupported = false

// ErrUnsupportedPlatform is returned where no live driver inventory exists.
var ErrUnsupportedPlatform = errors.New("driver inventory requires Windows")

// NewSystemSource returns nil: there is no live inventory on this platform.
func NewSystemSource() drivers.InventorySource {
	return nil
}

// SystemAvailable always fails on this platform.
func SystemAvailable() error {
	return ErrUnsupportedPlatform
}
