package report

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/TravisRivera14/DriverAid/internal/drivers"
	"github.com/TravisRivera14/DriverAid/internal/logging"
)

var log = logging.L("report")

// FilePrefix starts every report file name.
const FilePrefix = "DriverAid-Report-"

// timestampLayout renders YYYYMMDD-HHMMSS.
const timestampLayout = "20060102-150405"

// Clock abstracts time retrieval so file names are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Header is the column order shared by the HTML table and the CSV file.
var Header = []string{"ID", "Device", "Provider", "Installed", "Latest", "Status", "Link"}

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>DriverAid Report</title>
<style>body{font-family:Segoe UI, Arial} table{border-collapse:collapse;width:100%}
th,td{border:1px solid #ddd;padding:8px} th{background:#f2f2f2}
.Updated{color:#1a7f37} .Outdated{color:#9a6700} .Unknown{color:#cf222e}</style></head>
<body><h1>{{.Title}}</h1>
<p>Generated: {{.Generated}}</p>
<table><thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr><td>{{.ID}}</td><td>{{.Device}}</td><td>{{.Provider}}</td><td>{{.VersionInstalled}}</td><td>{{.VersionLatest}}</td><td class="{{.Status}}">{{.Status}}</td><td><a href="{{.ManualLink}}" target="_blank">Catalog</a></td></tr>
{{- end}}
</tbody></table></body></html>
`))

// Writer renders driver tables to timestamped HTML and CSV files.
type Writer struct {
	clock Clock
}

// NewWriter creates a Writer. A nil clock uses the real time.
func NewWriter(clock Clock) *Writer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Writer{clock: clock}
}

// Write creates folder if needed and writes both report files, named with
// the same second-resolution timestamp. It returns both paths.
func (w *Writer) Write(folder, title string, rows []drivers.Driver) (string, string, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", "", fmt.Errorf("create report folder: %w", err)
	}

	now := w.clock.Now()
	base := FilePrefix + now.Format(timestampLayout)
	htmlPath := filepath.Join(folder, base+".html")
	csvPath := filepath.Join(folder, base+".csv")

	if err := writeHTML(htmlPath, title, now, rows); err != nil {
		return "", "", err
	}
	if err := writeCSV(csvPath, rows); err != nil {
		return "", "", err
	}

	log.Info("report exported", "html", htmlPath, "csv", csvPath, "rows", len(rows))
	return htmlPath, csvPath, nil
}

func writeHTML(path, title string, now time.Time, rows []drivers.Driver) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close html report: %w", cerr)
		}
	}()

	data := struct {
		Title     string
		Generated string
		Header    []string
		Rows      []drivers.Driver
	}{
		Title:     title,
		Generated: now.Format("2006-01-02 15:04:05"),
		Header:    Header,
		Rows:      rows,
	}
	if err := page.Execute(f, data); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

func writeCSV(path string, rows []drivers.Driver) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close csv report: %w", cerr)
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, d := range rows {
		record := []string{
			strconv.Itoa(d.ID),
			d.Device,
			d.Provider,
			d.VersionInstalled,
			d.VersionLatest,
			string(d.Status),
			d.ManualLink,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", d.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv report: %w", err)
	}
	return nil
}
