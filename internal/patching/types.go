package patching

// DriverUpdate is one driver-category update reported by PSWindowsUpdate.
type DriverUpdate struct {
	Title           string `json:"Title"`
	KB              string `json:"KB"`
	MaxDownloadSize int64  `json:"MaxDownloadSize"`
	IsDownloaded    bool   `json:"IsDownloaded"`
	IsInstalled     bool   `json:"IsInstalled"`
}

// PreflightOptions configures which pre-flight checks to run before installing.
type PreflightOptions struct {
	CheckServiceHealth bool
	CheckDiskSpace     bool
	MinDiskSpaceGB     float64
}

// PreflightResult captures the outcome of all pre-flight checks.
type PreflightResult struct {
	OK     bool
	Checks []PreflightCheck
}

// PreflightCheck is one individual check result.
type PreflightCheck struct {
	Name    string
	Passed  bool
	Message string
}

// FirstError returns the first failed check as an ErrPreflightFailed, or nil if all passed.
func (r PreflightResult) FirstError() error {
	for _, check := range r.Checks {
		if !check.Passed {
			return &ErrPreflightFailed{Check: check.Name, Message: check.Message}
		}
	}
	return nil
}
