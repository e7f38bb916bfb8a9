package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

var validBackends = map[string]bool{
	"auto":      true,
	"simulated": true,
	"system":    true,
}

// requiredPublishFields lists the settings each publish provider cannot run without.
var requiredPublishFields = map[string][]string{
	"local": {"local_path"},
	"s3":    {"bucket"},
	"gcs":   {"bucket"},
	"azure": {"bucket", "connection_string"},
	"b2":    {"bucket", "account_id", "application_key"},
}

// ValidationResult separates problems that must stop startup from those
// that were auto-corrected.
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

// HasFatals reports whether any fatal problem was found.
func (r ValidationResult) HasFatals() bool {
	return len(r.Fatals) > 0
}

// All returns fatals followed by warnings.
func (r ValidationResult) All() []error {
	all := make([]error, 0, len(r.Fatals)+len(r.Warnings))
	all = append(all, r.Fatals...)
	return append(all, r.Warnings...)
}

// Validate checks the config and returns all errors found. Out-of-range values
// are clamped to safe defaults and every problem is logged as a warning.
func (c *Config) Validate() []error {
	errs := c.ValidateTiered().All()
	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}
	return errs
}

// ValidateTiered checks the config, clamping what it can. Values that would
// make the run meaningless (unknown backend, unusable publish target) are fatal.
func (c *Config) ValidateTiered() ValidationResult {
	var result ValidationResult
	def := Default()

	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if !validBackends[c.Backend] {
		result.Fatals = append(result.Fatals, fmt.Errorf("backend %q is not valid (use auto, simulated, system)", c.Backend))
	}

	if c.CatalogURL != "" {
		u, err := url.Parse(c.CatalogURL)
		if err != nil {
			result.Fatals = append(result.Fatals, fmt.Errorf("catalog_url %q is not a valid URL: %w", c.CatalogURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			result.Fatals = append(result.Fatals, fmt.Errorf("catalog_url scheme must be http or https, got %q", u.Scheme))
		}
	}

	for _, dir := range []struct {
		key   string
		value *string
		def   string
	}{
		{"reports_dir", &c.ReportsDir, def.ReportsDir},
		{"drivers_dir", &c.DriversDir, def.DriversDir},
		{"modules_dir", &c.ModulesDir, def.ModulesDir},
	} {
		if strings.TrimSpace(*dir.value) == "" {
			result.Warnings = append(result.Warnings, fmt.Errorf("%s is empty, using %q", dir.key, dir.def))
			*dir.value = dir.def
		}
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
		c.LogLevel = def.LogLevel
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
		c.LogFormat = def.LogFormat
	}

	if c.LogMaxSizeMB < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_max_size_mb %d is below minimum 1, clamping", c.LogMaxSizeMB))
		c.LogMaxSizeMB = 1
	} else if c.LogMaxSizeMB > 500 {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_max_size_mb %d exceeds maximum 500, clamping", c.LogMaxSizeMB))
		c.LogMaxSizeMB = 500
	}

	if c.LogMaxBackups < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_max_backups %d is below minimum 1, clamping", c.LogMaxBackups))
		c.LogMaxBackups = 1
	} else if c.LogMaxBackups > 20 {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_max_backups %d exceeds maximum 20, clamping", c.LogMaxBackups))
		c.LogMaxBackups = 20
	}

	if c.MinDiskSpaceGB < 0 {
		result.Warnings = append(result.Warnings, fmt.Errorf("min_disk_space_gb %.1f is negative, clamping to 0", c.MinDiskSpaceGB))
		c.MinDiskSpaceGB = 0
	}

	if strings.TrimSpace(c.PowerShellPath) == "" {
		c.PowerShellPath = def.PowerShellPath
	}

	c.Publish.Provider = strings.ToLower(strings.TrimSpace(c.Publish.Provider))
	if c.Publish.Provider != "" {
		required, ok := requiredPublishFields[c.Publish.Provider]
		if !ok {
			result.Fatals = append(result.Fatals, fmt.Errorf("publish.provider %q is not valid (use local, s3, gcs, azure, b2)", c.Publish.Provider))
		}
		for _, field := range required {
			if c.Publish.value(field) == "" {
				result.Fatals = append(result.Fatals, fmt.Errorf("publish.%s is required for provider %q", field, c.Publish.Provider))
			}
		}
	}

	return result
}

func (p PublishConfig) value(field string) string {
	switch field {
	case "local_path":
		return strings.TrimSpace(p.LocalPath)
	case "bucket":
		return strings.TrimSpace(p.Bucket)
	case "connection_string":
		return strings.TrimSpace(p.ConnectionString)
	case "account_id":
		return strings.TrimSpace(p.AccountID)
	case "application_key":
		return strings.TrimSpace(p.ApplicationKey)
	default:
		return ""
	}
}
