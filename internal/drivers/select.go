package drivers

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by Select.
const (
	BackendAuto      = "auto"
	BackendSimulated = "simulated"
	BackendSystem    = "system"
)

// Backends carries everything Select may need. System is nil on platforms
// without a live driver inventory.
type Backends struct {
	// SystemAvailable is the capability probe: nil when the live inventory
	// can be queried on this machine.
	SystemAvailable func() error
	System          func() (Session, error)
	Simulated       func(ctx context.Context) (Session, error)
}

// Select picks the backend once at start-up. "auto" uses the system backend
// wherever the platform has one and the simulated backend elsewhere. A failed
// probe on a platform that has a system backend is a configuration error.
func Select(ctx context.Context, backend string, b Backends) (Session, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendAuto:
		if b.System == nil {
			return b.Simulated(ctx)
		}
		return selectSystem(b)
	case BackendSimulated:
		return b.Simulated(ctx)
	case BackendSystem:
		if b.System == nil {
			return nil, fmt.Errorf("system backend is not available on this platform")
		}
		return selectSystem(b)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func selectSystem(b Backends) (Session, error) {
	if b.SystemAvailable != nil {
		if err := b.SystemAvailable(); err != nil {
			return nil, fmt.Errorf("system backend unavailable: %w", err)
		}
	}
	return b.System()
}
