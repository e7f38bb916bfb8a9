package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

type Config struct {
	ReportsDir            string        `mapstructure:"reports_dir"`
	DriversDir            string        `mapstructure:"drivers_dir"`
	ModulesDir            string        `mapstructure:"modules_dir"`
	LogLevel              string        `mapstructure:"log_level"`
	LogFormat             string        `mapstructure:"log_format"`
	LogMaxSizeMB          int           `mapstructure:"log_max_size_mb"`
	LogMaxBackups         int           `mapstructure:"log_max_backups"`
	Backend               string        `mapstructure:"backend"`
	SampleFile            string        `mapstructure:"sample_file"`
	CatalogURL            string        `mapstructure:"catalog_url"`
	RequireAdmin          bool          `mapstructure:"require_admin"`
	BootstrapUpdateModule bool          `mapstructure:"bootstrap_update_module"`
	PowerShellPath        string        `mapstructure:"powershell_path"`
	RestorePoint          bool          `mapstructure:"restore_point"`
	MinDiskSpaceGB        float64       `mapstructure:"min_disk_space_gb"`
	Publish               PublishConfig `mapstructure:"publish"`
}

// PublishConfig selects where exported reports are uploaded. An empty
// Provider disables publishing.
type PublishConfig struct {
	Provider         string `mapstructure:"provider"`
	Prefix           string `mapstructure:"prefix"`
	LocalPath        string `mapstructure:"local_path"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	CredentialsFile  string `mapstructure:"credentials_file"`
	ConnectionString string `mapstructure:"connection_string"`
	AccountID        string `mapstructure:"account_id"`
	ApplicationKey   string `mapstructure:"application_key"`
}

func Default() *Config {
	return &Config{
		ReportsDir:            "reports",
		DriversDir:            "drivers",
		ModulesDir:            "modules",
		LogLevel:              "info",
		LogFormat:             "text",
		LogMaxSizeMB:          10,
		LogMaxBackups:         3,
		Backend:               "auto",
		RequireAdmin:          true,
		BootstrapUpdateModule: true,
		PowerShellPath:        "powershell",
		RestorePoint:          true,
		MinDiskSpaceGB:        2,
	}
}

// Load reads driveraid.yaml from the given file or the standard search path,
// overlays DRIVERAID_* environment variables, and unmarshals onto Default().
// A missing config file is not an error.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("driveraid")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("DRIVERAID")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// bindEnv registers every key so AutomaticEnv values reach Unmarshal even
// when no config file mentions them.
func bindEnv(v *viper.Viper) {
	keys := []string{
		"reports_dir", "drivers_dir", "modules_dir",
		"log_level", "log_format", "log_max_size_mb", "log_max_backups",
		"backend", "sample_file", "catalog_url",
		"require_admin", "bootstrap_update_module",
		"powershell_path", "restore_point", "min_disk_space_gb",
		"publish.provider", "publish.prefix", "publish.local_path",
		"publish.bucket", "publish.region", "publish.endpoint",
		"publish.access_key_id", "publish.secret_access_key",
		"publish.credentials_file", "publish.connection_string",
		"publish.account_id", "publish.application_key",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "DriverAid")
	case "darwin":
		return "/Library/Application Support/DriverAid"
	default:
		return "/etc/driveraid"
	}
}
