package privilege

import "testing"

func TestRequiresElevation(t *testing.T) {
	for _, op := range []string{OpMenu, OpUpdateAll, OpUpdateOne, OpInstallOffline} {
		if !RequiresElevation(op) {
			t.Errorf("%s should require elevation", op)
		}
	}
	for _, op := range []string{"scan", "outdated", "report", "links", "version", ""} {
		if RequiresElevation(op) {
			t.Errorf("%s should not require elevation", op)
		}
	}
}
