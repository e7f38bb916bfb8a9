package console

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gosuri/uitable"

	"github.com/TravisRivera14/DriverAid/internal/drivers"
)

const maxColWidth = 60

// Header prints a bold title followed by the current time.
func Header(w io.Writer, s Styles, title string, now time.Time) {
	fmt.Fprintf(w, "\n%s  %s\n", s.Title(title), s.Dim("("+now.Format("2006-01-02 15:04:05")+")"))
}

// DriverTable prints one row per driver. Status is the last column so its
// colour codes never shift the alignment of other cells.
func DriverTable(w io.Writer, s Styles, rows []drivers.Driver) {
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.Separator = " | "

	table.AddRow("ID", "Device", "Provider", "Installed", "Latest", "Status")
	for _, d := range rows {
		table.AddRow(strconv.Itoa(d.ID), d.Device, d.Provider, d.VersionInstalled, d.VersionLatest, s.Status(d.Status))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, table)
}

// LinkList prints one "id | device -> link" line per driver.
func LinkList(w io.Writer, links []drivers.ManualLink) {
	table := uitable.New()
	table.Separator = " "
	for _, l := range links {
		table.AddRow(fmt.Sprintf("%2d |", l.ID), l.Device, "->", l.Link)
	}
	fmt.Fprintln(w, table)
}
