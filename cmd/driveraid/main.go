package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/TravisRivera14/DriverAid/internal/console"
	"github.com/TravisRivera14/DriverAid/internal/patching"
	"github.com/TravisRivera14/DriverAid/internal/privilege"
	"github.com/TravisRivera14/DriverAid/internal/publish"
)

var version = "0.1.0"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	cfgFile    string
	backend    string
	reportsDir string
}

// exitCodeError carries a process exit code out of a command.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "driveraid",
		Short: "Driver inventory and update assistant",
		Long: `DriverAid inventories installed device drivers, flags the ones with an
available update, installs updates online or from a local folder, and exports
HTML and CSV reports. Without a subcommand it opens the interactive menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          withApp(flags, privilege.OpMenu, runMenu),
	}

	rootCmd.PersistentFlags().StringVar(&flags.cfgFile, "config", "", "config file (default is ./driveraid.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.backend, "backend", "", "backend: auto, simulated or system")
	rootCmd.PersistentFlags().StringVar(&flags.reportsDir, "reports-dir", "", "folder for reports and the activity log")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "menu",
			Short: "Open the interactive menu",
			RunE:  withApp(flags, privilege.OpMenu, runMenu),
		},
		&cobra.Command{
			Use:   "scan",
			Short: "Scan and list all drivers",
			RunE:  withApp(flags, "scan", runScan),
		},
		&cobra.Command{
			Use:   "outdated",
			Short: "List drivers with an available update",
			RunE:  withApp(flags, "outdated", runOutdated),
		},
		newUpdateCmd(flags),
		newReportCmd(flags),
		&cobra.Command{
			Use:   "links",
			Short: "Print the manual download link for every driver",
			RunE:  withApp(flags, "links", runLinks),
		},
		&cobra.Command{
			Use:   "install-offline [folder]",
			Short: "Install every .inf driver package under a folder with pnputil",
			Args:  cobra.MaximumNArgs(1),
			RunE:  withApp(flags, privilege.OpInstallOffline, runInstallOffline),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "DriverAid v%s\n", version)
			},
		},
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	var exitErr *exitCodeError
	switch {
	case err == nil, errors.Is(err, errRelaunched):
		return
	case errors.As(err, &exitErr):
		if exitErr.code < 0 {
			os.Exit(1)
		}
		os.Exit(exitErr.code)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type appRunFunc func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error

// withApp wraps a command body with config, logging and session setup.
func withApp(flags *globalFlags, op string, run appRunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx, flags, op)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := run(ctx, cmd, a, args); err != nil {
			var exitErr *exitCodeError
			if !errors.As(err, &exitErr) {
				log.Error("command failed", "operation", op, "error", err)
			}
			return err
		}
		return nil
	}
}

func runMenu(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	menu := console.NewMenu(console.MenuConfig{
		Session:        a.session,
		In:             cmd.InOrStdin(),
		Out:            cmd.OutOrStdout(),
		Styles:         a.styles,
		ReportsDir:     a.cfg.ReportsDir,
		DriversDir:     a.cfg.DriversDir,
		HostDesc:       a.hostDesc,
		ClearScreen:    console.IsTerminal(),
		Publish:        a.publishFunc(),
		PendingRestart: patching.PendingRestart,
	})
	err := menu.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runScan(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	rows, err := a.session.Scan(ctx)
	if err != nil {
		return err
	}
	console.Header(cmd.OutOrStdout(), a.styles, "Driver inventory", time.Now())
	console.DriverTable(cmd.OutOrStdout(), a.styles, rows)
	return nil
}

func runOutdated(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	rows, err := a.session.Outdated(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	console.Header(out, a.styles, "Outdated drivers", time.Now())
	if len(rows) == 0 {
		fmt.Fprintln(out, a.styles.Success("\nEverything is up to date"))
		return nil
	}
	console.DriverTable(out, a.styles, rows)
	return nil
}

func newUpdateCmd(flags *globalFlags) *cobra.Command {
	var (
		all bool
		id  int
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Install driver updates (--all or --id N)",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if all == cmd.Flags().Changed("id") {
				return errors.New("specify exactly one of --all or --id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				return withApp(flags, privilege.OpUpdateAll, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
					updated, skipped, err := a.session.UpdateAll(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), a.styles.Banner(fmt.Sprintf("Updated: %d | Skipped: %d", updated, skipped)))
					restartNotice(cmd, a)
					return nil
				})(cmd, args)
			}
			return withApp(flags, privilege.OpUpdateOne, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
				if err := a.session.UpdateOne(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.styles.Success(fmt.Sprintf("Driver %d updated", id)))
				restartNotice(cmd, a)
				return nil
			})(cmd, args)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "install every available driver update")
	cmd.Flags().IntVar(&id, "id", 0, "install the update matching the driver with this ID")
	return cmd
}

func newReportCmd(flags *globalFlags) *cobra.Command {
	var (
		dir         string
		publishFlag bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the driver table as HTML and CSV",
		RunE: withApp(flags, "report", func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			folder := dir
			if folder == "" {
				folder = a.cfg.ReportsDir
			}
			htmlPath, csvPath, err := a.session.ExportReport(ctx, folder)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, a.styles.Success("Reports created:"))
			fmt.Fprintln(out, "•", htmlPath)
			fmt.Fprintln(out, "•", csvPath)

			if !publishFlag {
				return nil
			}
			if a.publisher == nil {
				return publish.ErrDisabled
			}
			remote, err := publish.Files(ctx, a.publisher, a.cfg.Publish.Prefix, htmlPath, csvPath)
			for _, name := range remote {
				fmt.Fprintln(out, "published", name)
			}
			return err
		}),
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output folder (default is reports_dir)")
	cmd.Flags().BoolVar(&publishFlag, "publish", false, "upload both files to the configured publish provider")
	return cmd
}

func runLinks(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	links, err := a.session.ManualLinks(ctx)
	if err != nil {
		return err
	}
	console.LinkList(cmd.OutOrStdout(), links)
	return nil
}

func runInstallOffline(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	folder := a.cfg.DriversDir
	if len(args) == 1 {
		folder = args[0]
	}

	code, output := a.session.InstallOffline(ctx, folder)
	console.OfflineResult(cmd.OutOrStdout(), a.styles, code, output)
	if code == 0 {
		restartNotice(cmd, a)
		return nil
	}
	return &exitCodeError{code: code}
}

func restartNotice(cmd *cobra.Command, a *app) {
	if pending, reasons := patching.PendingRestart(); pending {
		fmt.Fprintln(cmd.OutOrStdout(), a.styles.Warning("A restart is pending: "+strings.Join(reasons, "; ")))
	}
}
