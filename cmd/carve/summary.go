package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arloliu/carve/extract"
	"github.com/arloliu/carve/format"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)  // green
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true) // yellow
	styleInput = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))             // cyan
	styleFaint = lipgloss.NewStyle().Faint(true)
)

// summaryLine renders one result, e.g.
//
//	✓ recovery.jsonlz4  1.2 MB MozLZ4  rows 1,204  skipped 0  duplicates 0  updated 17-Jan-2014 10:11:12  12ms
func summaryLine(r result) string {
	mark := styleOK.Render("✓")
	if r.stats.Skipped > 0 || r.truncated {
		mark = styleWarn.Render("!")
	}

	size := humanize.Bytes(uint64(r.rawSize)) //nolint:gosec
	if r.compression != format.CompressionNone {
		size += " " + r.compression.String()
	}
	if r.truncated {
		size += " " + styleWarn.Render("truncated")
	}

	parts := []string{
		mark + " " + styleInput.Render(r.input),
		styleFaint.Render(size),
		"rows " + humanize.Comma(int64(r.stats.Rows)),
		"skipped " + humanize.Comma(int64(r.stats.Skipped)),
		"duplicates " + humanize.Comma(int64(r.stats.Duplicates)),
	}
	if r.stamp != "" {
		parts = append(parts, "updated "+r.stamp)
	}
	parts = append(parts, styleFaint.Render(r.elapsed.Round(time.Millisecond).String()))

	return strings.Join(parts, "  ")
}

// printSummary writes one line per result and a total for several inputs.
func printSummary(w io.Writer, results []result) {
	var total extract.Stats
	var size int
	for _, r := range results {
		fmt.Fprintln(w, summaryLine(r))
		total.Add(r.stats)
		size += r.rawSize
	}

	if len(results) > 1 {
		fmt.Fprintf(w, "%s %d inputs  %s  rows %s  skipped %s  duplicates %s\n",
			styleOK.Render("Σ"),
			len(results),
			humanize.Bytes(uint64(size)), //nolint:gosec
			humanize.Comma(int64(total.Rows)),
			humanize.Comma(int64(total.Skipped)),
			humanize.Comma(int64(total.Duplicates)))
	}
}
