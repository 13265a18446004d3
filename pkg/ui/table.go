package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/srodi/appmem/pkg/types"
)

var (
	headerStyle = []color.Attribute{color.Bold, color.FgYellow}
	footerStyle = []color.Attribute{color.FgHiBlack}
)

const (
	minNameWidth     = len("Application")
	defaultNameWidth = 35
	// numbers take " Num" + " Memory(MB)" + " %" + " Cum.%" columns plus separators.
	numericWidth = 1 + 4 + 1 + 12 + 1 + 8 + 1 + 8
	bytesPerMB   = 1024 * 1024
)

// TableOptions controls how the report table is laid out.
type TableOptions struct {
	// Color styles the header and footer. The caller decides, so color.NoColor
	// is not consulted here.
	Color bool
	// Width is the terminal width in columns, zero when unknown.
	Width int
}

// nameWidth fits the application column to the longest name without
// overflowing the terminal.
func (o TableOptions) nameWidth(rows []types.RankedRow) int {
	limit := defaultNameWidth
	if o.Width > 0 && o.Width-numericWidth > limit {
		limit = o.Width - numericWidth
	}
	width := minNameWidth
	for _, row := range rows {
		if n := utf8.RuneCountInString(row.Name); n > width {
			width = n
		}
	}
	if width > limit {
		width = limit
	}
	return width
}

// RenderTable writes the ranked rows as an aligned table. An empty report
// still prints the header.
func RenderTable(w io.Writer, rep types.Report, opts TableOptions) error {
	bw := bufio.NewWriter(w)
	nameWidth := opts.nameWidth(rep.Rows)

	header := fmt.Sprintf("%-*s %4s %12s %8s %8s", nameWidth, "Application", "Num", "Memory(MB)", "%", "Cum.%")
	if opts.Color {
		header = styled(headerStyle, header)
	}
	fmt.Fprintln(bw, header)

	for _, row := range rep.Rows {
		fmt.Fprintf(bw, "%-*s %4d %12.2f %7.2f%% %7.2f%%\n",
			nameWidth, truncate(row.Name, nameWidth), row.Count, row.TotalMemoryMB, row.Percent, row.CumulativePercent)
	}

	if rep.Processes > 0 {
		footer := Footer(rep)
		if opts.Color {
			footer = styled(footerStyle, footer)
		}
		fmt.Fprintln(bw, footer)
	}
	return bw.Flush()
}

// Footer summarizes the whole snapshot, including groups cut by the row limit.
func Footer(rep types.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total: %d processes in %d applications, %.2f MB",
		rep.Processes, rep.Groups, float64(rep.GrandTotalBytes)/bytesPerMB)
	if rep.SystemTotalBytes > 0 {
		fmt.Fprintf(&b, " (%.2f%% of %.2f MB system memory)",
			100*float64(rep.GrandTotalBytes)/float64(rep.SystemTotalBytes), float64(rep.SystemTotalBytes)/bytesPerMB)
	}
	if len(rep.Rows) < rep.Groups {
		fmt.Fprintf(&b, "; showing top %d of %d", len(rep.Rows), rep.Groups)
	}
	return b.String()
}

func styled(attrs []color.Attribute, s string) string {
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	if width <= 3 {
		return string([]rune(s)[:width])
	}
	return string([]rune(s)[:width-3]) + "..."
}
