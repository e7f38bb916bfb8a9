package drivers

import "strings"

// DefaultCatalogURL is the Microsoft Update Catalog search endpoint used for manual links.
const DefaultCatalogURL = "https://www.catalog.update.microsoft.com/Search.aspx?q="

// Status classifies a driver against the newest known version.
type Status string

const (
	StatusUpdated  Status = "Updated"
	StatusOutdated Status = "Outdated"
	StatusUnknown  Status = "Unknown"
)

// Driver is one device's driver state within a session.
type Driver struct {
	ID               int    `json:"id"`
	Device           string `json:"device"`
	Provider         string `json:"provider"`
	VersionInstalled string `json:"versionInstalled"`
	VersionLatest    string `json:"versionLatest"`
	HardwareID       string `json:"hardwareId"`
	Status           Status `json:"status"`
	ManualLink       string `json:"manualLink"`
}

// RefreshStatus applies the status derivation rule and fills ManualLink if it is
// still empty. catalogURL is the search prefix the hardware id is appended to.
func (d *Driver) RefreshStatus(catalogURL string) {
	if d.VersionInstalled != "" && d.VersionLatest != "" {
		if d.VersionInstalled == d.VersionLatest {
			d.Status = StatusUpdated
		} else {
			d.Status = StatusOutdated
		}
	} else if d.Status == "" {
		d.Status = StatusUnknown
	}

	if d.ManualLink == "" {
		d.ManualLink = ManualLinkFor(catalogURL, d.HardwareID)
	}
}

// ManualLinkFor builds a catalog search link from the first hardware id in a
// comma-separated list. Returns "" when there is nothing to search for.
func ManualLinkFor(catalogURL, hardwareID string) string {
	first, _, _ := strings.Cut(hardwareID, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return ""
	}
	if catalogURL == "" {
		catalogURL = DefaultCatalogURL
	}
	return catalogURL + strings.ReplaceAll(first, " ", "%20")
}

// ManualLink pairs a driver with its catalog search link.
type ManualLink struct {
	ID     int
	Device string
	Link   string
}

func copyDrivers(src []Driver) []Driver {
	out := make([]Driver, len(src))
	copy(out, src)
	return out
}

func filterOutdated(src []Driver) []Driver {
	out := make([]Driver, 0, len(src))
	for _, d := range src {
		if d.Status == StatusOutdated {
			out = append(out, d)
		}
	}
	return out
}

func manualLinks(src []Driver) []ManualLink {
	links := make([]ManualLink, 0, len(src))
	for _, d := range src {
		links = append(links, ManualLink{ID: d.ID, Device: d.Device, Link: d.ManualLink})
	}
	return links
}

func findDriver(src []Driver, id int) (*Driver, bool) {
	for i := range src {
		if src[i].ID == id {
			return &src[i], true
		}
	}
	return nil, false
}
