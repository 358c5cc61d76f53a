package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/robgonnella/portsweep/internal/scanner"
)

// Format output format of a report
type Format string

const (
	// FormatText human readable lines
	FormatText Format = "text"
	// FormatJSON structured output
	FormatJSON Format = "json"
)

var (
	colorOpen   = color.New(color.FgGreen, color.Bold)
	colorClosed = color.New(color.FgRed)
	colorBanner = color.New(color.FgYellow)
	colorTarget = color.New(color.FgCyan, color.Bold)
)

type targetJSON struct {
	Target  string               `json:"target"`
	Address string               `json:"address"`
	Results []scanner.PortResult `json:"results"`
}

// Reporter renders scan reports as text or json
type Reporter struct {
	format Format
}

// New returns a new Reporter for format
func New(format Format) *Reporter {
	return &Reporter{format: format}
}

// Line formats a single result as "Port <port>: <status>" with an optional
// banner suffix
func Line(res scanner.PortResult) string {
	line := fmt.Sprintf("Port %5d: %s", res.Port, res.Status)

	if res.Banner != "" {
		line += " | Banner: " + res.Banner
	}

	return line
}

// Render returns the uncolored representation of reports
func (r *Reporter) Render(reports []*scanner.Report) ([]byte, error) {
	if r.format == FormatJSON {
		return renderJSON(reports)
	}

	buff := new(bytes.Buffer)

	renderText(buff, reports, false)

	return buff.Bytes(), nil
}

// Print writes reports to w, coloring text output unless color is disabled
func (r *Reporter) Print(w io.Writer, reports []*scanner.Report) error {
	if r.format == FormatJSON {
		data, err := renderJSON(reports)

		if err != nil {
			return err
		}

		_, err = w.Write(data)

		return err
	}

	renderText(w, reports, !color.NoColor)

	return nil
}

func renderJSON(reports []*scanner.Report) ([]byte, error) {
	var payload any

	if len(reports) == 1 {
		payload = reports[0].Results
	} else {
		targets := []targetJSON{}

		for _, rep := range reports {
			targets = append(targets, targetJSON{
				Target:  rep.Target,
				Address: rep.Address,
				Results: rep.Results,
			})
		}

		payload = targets
	}

	data, err := json.MarshalIndent(payload, "", "  ")

	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}

func renderText(w io.Writer, reports []*scanner.Report, colorize bool) {
	for i, rep := range reports {
		if len(reports) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}

			header := fmt.Sprintf("Target %s (%s)", rep.Target, rep.Address)

			if colorize {
				header = colorTarget.Sprint(header)
			}

			fmt.Fprintln(w, header)
		}

		for _, res := range rep.Results {
			if !colorize {
				fmt.Fprintln(w, Line(res))
				continue
			}

			fmt.Fprintln(w, colorLine(res))
		}
	}
}

func colorLine(res scanner.PortResult) string {
	status := colorClosed.Sprint(res.Status)

	if res.Status == scanner.StatusOpen {
		status = colorOpen.Sprint(res.Status)
	}

	line := fmt.Sprintf("Port %5d: %s", res.Port, status)

	if res.Banner != "" {
		line += " | Banner: " + colorBanner.Sprint(res.Banner)
	}

	return line
}
