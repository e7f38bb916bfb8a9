package drivers

import "strings"

// matchesTitle reports whether title mentions the driver's device name or,
// when set, its provider name. Comparison is case-insensitive substring.
//
// This is a heuristic: a device name that differs from the update title yields
// a false negative, and a provider shared by many updates (e.g. "Microsoft")
// yields false positives.
func matchesTitle(d Driver, title string) bool {
	t := strings.ToLower(title)
	if d.Device != "" && strings.Contains(t, strings.ToLower(d.Device)) {
		return true
	}
	if d.Provider != "" && strings.Contains(t, strings.ToLower(d.Provider)) {
		return true
	}
	return false
}

// firstMatchingTitle picks the candidate UpdateOne installs. Each title is tested
// against the device name before the provider name; the first title in service
// order that matches wins.
func firstMatchingTitle(d Driver, titles []string) (string, bool) {
	for _, title := range titles {
		if matchesTitle(d, title) {
			return title, true
		}
	}
	return "", false
}

// buildDrivers turns inventory entries into records with ids 1..N in discovery order.
func buildDrivers(raw []RawDevice) []Driver {
	out := make([]Driver, 0, len(raw))
	for i, r := range raw {
		out = append(out, Driver{
			ID:               i + 1,
			Device:           strings.TrimSpace(r.Device),
			Provider:         strings.TrimSpace(r.Provider),
			VersionInstalled: strings.TrimSpace(r.VersionInstalled),
			VersionLatest:    strings.TrimSpace(r.VersionLatest),
			HardwareID:       strings.TrimSpace(r.HardwareID),
		})
	}
	return out
}

// Reconcile classifies inventory entries against free-text update titles.
// The per-device latest version is not known on this path, so a title that
// mentions the device or provider marks the driver Outdated. With no titles at
// all every unmatched driver is Updated; otherwise unmatched drivers stay Unknown.
func Reconcile(raw []RawDevice, titles []string, catalogURL string) []Driver {
	items := buildDrivers(raw)
	for i := range items {
		d := &items[i]
		d.VersionLatest = ""
		d.Status = StatusUnknown
		d.RefreshStatus(catalogURL)

		matched := false
		for _, title := range titles {
			if matchesTitle(*d, title) {
				matched = true
				break
			}
		}

		switch {
		case matched:
			d.Status = StatusOutdated
		case len(titles) == 0:
			d.Status = StatusUpdated
		}
		d.RefreshStatus(catalogURL)
	}
	return items
}

// countOutdated returns the number of Outdated records.
func countOutdated(items []Driver) int {
	n := 0
	for _, d := range items {
		if d.Status == StatusOutdated {
			n++
		}
	}
	return n
}
