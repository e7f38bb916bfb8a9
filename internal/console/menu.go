package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/TravisRivera14/DriverAid/internal/drivers"
	"github.com/TravisRivera14/DriverAid/internal/logging"
)

var log = logging.L("console")

// PublishFunc uploads exported report files and returns their remote names.
type PublishFunc func(ctx context.Context, paths ...string) ([]string, error)

// RestartFunc reports whether the OS has a restart pending, with reasons.
type RestartFunc func() (bool, []string)

// MenuConfig wires a Menu to a session and its surroundings.
type MenuConfig struct {
	Session    drivers.Session
	In         io.Reader
	Out        io.Writer
	Styles     Styles
	ReportsDir string
	DriversDir string
	HostDesc   string
	// ClearScreen redraws the banner on a clean screen between iterations.
	ClearScreen bool
	// Publish is optional; when set, exported reports are uploaded.
	Publish PublishFunc
	// PendingRestart is optional; when set, it is consulted after installs.
	PendingRestart RestartFunc
	Now            func() time.Time
}

// Menu is the interactive numbered-option loop.
type Menu struct {
	cfg MenuConfig
	in  *bufio.Scanner
	out io.Writer
	s   Styles
}

// NewMenu creates a Menu.
func NewMenu(cfg MenuConfig) *Menu {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Menu{
		cfg: cfg,
		in:  bufio.NewScanner(cfg.In),
		out: cfg.Out,
		s:   cfg.Styles,
	}
}

// Run shows the menu until the user exits, input ends, or ctx is cancelled.
// Cancellation is only observed between iterations.
func (m *Menu) Run(ctx context.Context) error {
	m.banner()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printOptions()
		choice, ok := m.prompt("\nChoose an option: ")
		if !ok {
			fmt.Fprintln(m.out)
			return nil
		}

		var err error
		switch choice {
		case "1":
			err = m.scan(ctx)
		case "2":
			err = m.outdated(ctx)
		case "3":
			err = m.updateAll(ctx)
		case "4":
			err = m.updateOne(ctx)
		case "5":
			err = m.exportReport(ctx)
		case "6":
			err = m.manualLinks(ctx)
		case "7":
			if !m.cfg.Session.SupportsOffline() {
				fmt.Fprintln(m.out, m.s.Failure("Invalid option"))
				break
			}
			m.installOffline(ctx)
		case "0":
			fmt.Fprintln(m.out, m.s.Dim("\nThanks for using DriverAid. Goodbye!"))
			return nil
		default:
			fmt.Fprintln(m.out, m.s.Failure("Invalid option"))
		}
		if err != nil {
			log.Error("menu operation failed", "option", choice, "error", err)
			fmt.Fprintln(m.out, m.s.Failure("Error: "+err.Error()))
		}

		if !m.pause() {
			return nil
		}
		if m.cfg.ClearScreen {
			fmt.Fprint(m.out, "\033[H\033[2J")
			m.banner()
		}
	}
}

func (m *Menu) banner() {
	Banner(m.out, m.s, m.cfg.Session.Name(), m.cfg.HostDesc)
}

func (m *Menu) printOptions() {
	fmt.Fprintln(m.out, "\n"+m.s.Title("Main menu"))
	fmt.Fprintln(m.out, "1) Scan and inventory drivers")
	fmt.Fprintln(m.out, "2) Show outdated drivers only")
	fmt.Fprintln(m.out, "3) Update ALL")
	fmt.Fprintln(m.out, "4) Update one (choose by ID)")
	fmt.Fprintln(m.out, "5) Generate report (HTML and CSV)")
	fmt.Fprintln(m.out, "6) Show manual download links")
	if m.cfg.Session.SupportsOffline() {
		fmt.Fprintf(m.out, "7) Install drivers from folder %s (OFFLINE, requires Admin)\n", m.cfg.DriversDir)
	}
	fmt.Fprintln(m.out, "0) Exit")
}

// prompt prints label and reads one trimmed line. ok is false at end of input.
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) pause() bool {
	_, ok := m.prompt(m.s.Dim("\nPress Enter to continue..."))
	return ok
}

func (m *Menu) header(title string) {
	Header(m.out, m.s, title, m.cfg.Now())
}

func (m *Menu) scan(ctx context.Context) error {
	rows, err := m.cfg.Session.Scan(ctx)
	if err != nil {
		return err
	}
	m.header("Driver inventory")
	DriverTable(m.out, m.s, rows)
	return nil
}

func (m *Menu) outdated(ctx context.Context) error {
	rows, err := m.cfg.Session.Outdated(ctx)
	if err != nil {
		return err
	}
	m.header("Outdated drivers")
	if len(rows) == 0 {
		fmt.Fprintln(m.out, m.s.Success("\nEverything is up to date"))
		return nil
	}
	DriverTable(m.out, m.s, rows)
	return nil
}

func (m *Menu) updateAll(ctx context.Context) error {
	updated, skipped, err := m.cfg.Session.UpdateAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, m.s.Banner(fmt.Sprintf("\nUpdated: %d | Skipped: %d", updated, skipped)))
	m.restartNotice()
	return nil
}

func (m *Menu) updateOne(ctx context.Context) error {
	raw, ok := m.prompt("Enter the ID of the driver to update: ")
	if !ok {
		return nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		fmt.Fprintln(m.out, m.s.Failure("Invalid ID"))
		return nil
	}

	err = m.cfg.Session.UpdateOne(ctx, id)
	switch {
	case err == nil:
		fmt.Fprintln(m.out, m.s.Success("Updated"))
		m.restartNotice()
	case errors.Is(err, drivers.ErrDriverNotFound):
		fmt.Fprintln(m.out, m.s.Failure("ID not found"))
	case errors.Is(err, drivers.ErrNoMatchingUpdate):
		fmt.Fprintln(m.out, m.s.Warning("No matching update available for this driver"))
	default:
		return err
	}
	return nil
}

func (m *Menu) exportReport(ctx context.Context) error {
	htmlPath, csvPath, err := m.cfg.Session.ExportReport(ctx, m.cfg.ReportsDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, m.s.Success("\nReports created:"))
	fmt.Fprintln(m.out, "•", htmlPath)
	fmt.Fprintln(m.out, "•", csvPath)

	if m.cfg.Publish == nil {
		return nil
	}
	remote, err := m.cfg.Publish(ctx, htmlPath, csvPath)
	for _, name := range remote {
		fmt.Fprintln(m.out, m.s.Dim("  published "+name))
	}
	if err != nil {
		fmt.Fprintln(m.out, m.s.Warning("Publishing failed: "+err.Error()))
	}
	return nil
}

func (m *Menu) manualLinks(ctx context.Context) error {
	links, err := m.cfg.Session.ManualLinks(ctx)
	if err != nil {
		return err
	}
	m.header("Manual download links")
	LinkList(m.out, links)
	return nil
}

func (m *Menu) installOffline(ctx context.Context) {
	m.header("OFFLINE install from " + m.cfg.DriversDir)
	fmt.Fprintln(m.out, m.s.Dim("Place packages with .INF files inside the folder (searched recursively)."))

	path, ok := m.prompt(fmt.Sprintf("Folder path (Enter for default: %s): ", m.cfg.DriversDir))
	if !ok {
		return
	}
	if path == "" {
		path = m.cfg.DriversDir
	}

	code, output := m.cfg.Session.InstallOffline(ctx, path)
	OfflineResult(m.out, m.s, code, output)
	if code == 0 {
		m.restartNotice()
	}
}

// OfflineResult prints the exit code, the tool output, and a verdict line.
func OfflineResult(w io.Writer, s Styles, code int, output string) {
	fmt.Fprintln(w, "\nReturn code:", code)
	if strings.TrimSpace(output) == "" {
		fmt.Fprintln(w, "(no output)")
	} else {
		fmt.Fprintln(w, output)
	}
	switch code {
	case 0:
		fmt.Fprintln(w, s.Success("\nOffline install finished (a restart may be required)."))
	case drivers.OfflineFailureCode:
		fmt.Fprintln(w, s.Failure("\nError: check the path or permissions (run as Administrator)."))
	default:
		fmt.Fprintln(w, s.Warning("\npnputil returned a non-zero code. Review the details above."))
	}
}

func (m *Menu) restartNotice() {
	if m.cfg.PendingRestart == nil {
		return
	}
	if pending, reasons := m.cfg.PendingRestart(); pending {
		fmt.Fprintln(m.out, m.s.Warning("A restart is pending: "+strings.Join(reasons, "; ")))
	}
}
