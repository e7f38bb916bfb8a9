package privilege

import "errors"

// Operations that change installed drivers.
const (
	OpMenu           = "menu"
	OpUpdateAll      = "update-all"
	OpUpdateOne      = "update-one"
	OpInstallOffline = "install-offline"
)

// ErrRelaunchUnsupported is returned where no elevation prompt exists.
var ErrRelaunchUnsupported = errors.New("elevated relaunch is only supported on Windows")

// elevatedOperations lists the operations that need an administrator token.
// The interactive menu can reach every operation, so it is included.
var elevatedOperations = map[string]bool{
	OpMenu:           true,
	OpUpdateAll:      true,
	OpUpdateOne:      true,
	OpInstallOffline: true,
}

// RequiresElevation returns true if the operation needs root/admin privileges.
func RequiresElevation(op string) bool {
	return elevatedOperations[op]
}
