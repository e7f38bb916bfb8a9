package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/google/uuid"

	"github.com/TravisRivera14/DriverAid/internal/config"
	"github.com/TravisRivera14/DriverAid/internal/console"
	"github.com/TravisRivera14/DriverAid/internal/drivers"
	"github.com/TravisRivera14/DriverAid/internal/executor"
	"github.com/TravisRivera14/DriverAid/internal/inventory"
	"github.com/TravisRivera14/DriverAid/internal/logging"
	"github.com/TravisRivera14/DriverAid/internal/patching"
	"github.com/TravisRivera14/DriverAid/internal/privilege"
	"github.com/TravisRivera14/DriverAid/internal/publish"
	"github.com/TravisRivera14/DriverAid/internal/report"
)

var log = logging.L("cli")

// errRelaunched means an elevated copy was started and this process should exit quietly.
var errRelaunched = errors.New("relaunched with elevation")

// app holds everything one command invocation needs.
type app struct {
	cfg       *config.Config
	session   drivers.Session
	publisher publish.Provider
	styles    console.Styles
	hostDesc  string
	sessionID string
	logFile   io.Closer
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.backend != "" {
		cfg.Backend = flags.backend
	}
	if flags.reportsDir != "" {
		cfg.ReportsDir = flags.reportsDir
	}

	result := cfg.ValidateTiered()
	for _, w := range result.Warnings {
		slog.Warn("config validation", "error", w)
	}
	if result.HasFatals() {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(result.Fatals...))
	}
	return cfg, nil
}

// newApp prepares logging, elevation and the backend session for op.
func newApp(ctx context.Context, flags *globalFlags, op string) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	if err := ensureElevated(cfg, op); err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		styles:    console.NewStyles(console.IsTerminal()),
		hostDesc:  console.HostDescription(),
		sessionID: uuid.NewString(),
	}

	if err := a.initLogging(); err != nil {
		return nil, err
	}

	session, err := buildSession(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.session = session

	logging.BeginSession(a.sessionID, session.Name())
	log.Info("session started", "os", a.hostDesc, "version", version, "operation", op)

	publisher, err := publish.New(cfg.Publish)
	switch {
	case errors.Is(err, publish.ErrDisabled):
	case err != nil:
		a.Close()
		return nil, err
	default:
		a.publisher = publisher
	}

	return a, nil
}

// ensureElevated relaunches through UAC when the operation needs an
// administrator token. A failed relaunch is logged and the run continues.
func ensureElevated(cfg *config.Config, op string) error {
	if !cfg.RequireAdmin || runtime.GOOS != "windows" || !privilege.RequiresElevation(op) {
		return nil
	}
	if privilege.IsElevated() {
		return nil
	}
	if err := privilege.RelaunchElevated(os.Args[1:]); err != nil {
		slog.Warn("could not relaunch with elevation, continuing", "error", err)
		return nil
	}
	return errRelaunched
}

func (a *app) initLogging() error {
	activity, err := logging.OpenActivityLog(a.cfg.ReportsDir, logging.ActivityOptions{
		MaxSizeMB:  a.cfg.LogMaxSizeMB,
		MaxBackups: a.cfg.LogMaxBackups,
	})
	if err != nil {
		return err
	}
	logging.Init(a.cfg.LogFormat, a.cfg.LogLevel, activity)
	a.logFile = activity
	return nil
}

// Close ends the session stamp and closes the activity log.
func (a *app) Close() {
	if a.logFile == nil {
		return
	}
	if a.session != nil {
		log.Info("session finished")
	}
	logging.EndSession()
	_ = a.logFile.Close()
	a.logFile = nil
}

// publishFunc returns nil when no publish provider is configured.
func (a *app) publishFunc() console.PublishFunc {
	if a.publisher == nil {
		return nil
	}
	return func(ctx context.Context, paths ...string) ([]string, error) {
		return publish.Files(ctx, a.publisher, a.cfg.Publish.Prefix, paths...)
	}
}

// buildSession selects and constructs the backend session named by cfg.Backend.
func buildSession(ctx context.Context, cfg *config.Config) (drivers.Session, error) {
	backends := drivers.Backends{
		SystemAvailable: inventory.SystemAvailable,
		Simulated: func(ctx context.Context) (drivers.Session, error) {
			return newSimulatedSession(ctx, cfg)
		},
	}
	if inventory.SystemSupported {
		backends.System = func() (drivers.Session, error) {
			return newSystemSession(ctx, cfg)
		}
	}
	return drivers.Select(ctx, cfg.Backend, backends)
}

func newSimulatedSession(ctx context.Context, cfg *config.Config) (drivers.Session, error) {
	var source drivers.InventorySource = inventory.NewSampleSource()
	if cfg.SampleFile != "" {
		fixture, err := inventory.LoadSampleFile(cfg.SampleFile)
		if err != nil {
			return nil, err
		}
		source = fixture
	}
	session, err := drivers.NewSimulatedSession(ctx, source, report.NewWriter(nil), cfg.CatalogURL)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func newSystemSession(ctx context.Context, cfg *config.Config) (drivers.Session, error) {
	var env []string
	if dir := patching.LocalModuleDir(cfg.ModulesDir); dir != "" {
		if value, changed := patching.ModulePathEnv(dir, os.Getenv("PSModulePath")); changed {
			env = append(env, "PSModulePath="+value)
			log.Info("using bundled PSWindowsUpdate module", "path", dir)
		}
	}
	exec := executor.New(env...).Exec()

	if cfg.BootstrapUpdateModule {
		if err := patching.Bootstrap(ctx, exec, cfg.PowerShellPath); err != nil {
			log.Warn("PSWindowsUpdate bootstrap failed", "error", err)
		}
	}

	opts := []patching.Option{
		patching.WithShell(cfg.PowerShellPath),
		patching.WithPreflight(patching.PreflightOptions{
			CheckServiceHealth: true,
			CheckDiskSpace:     cfg.MinDiskSpaceGB > 0,
			MinDiskSpaceGB:     cfg.MinDiskSpaceGB,
		}),
	}
	if cfg.RestorePoint {
		opts = append(opts, patching.WithRestorePoint())
	}

	session, err := drivers.NewSystemSession(drivers.SystemSessionConfig{
		Inventory:  inventory.NewSystemSource(),
		Updates:    patching.NewWindowsUpdateSource(exec, opts...),
		Installer:  patching.NewPnpUtilInstaller(exec),
		Reporter:   report.NewWriter(nil),
		CatalogURL: cfg.CatalogURL,
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}
