package presentation

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"lascopc/internal/domain"
	appErrors "lascopc/internal/errors"
	"lascopc/internal/pipeline"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#85DCB0")).Bold(true)
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E85D75")).Bold(true)
)

type Printer struct {
	Writer io.Writer
	// Styled colours the status tags; leave off when output is not a terminal.
	Styled bool
}

// PrintResults prints one line per result, in the given order, followed by
// the totals line.
func (p Printer) PrintResults(results []domain.Result) {
	for _, r := range results {
		fmt.Fprintln(p.Writer, p.formatResult(r))
	}
	fmt.Fprintln(p.Writer)
	fmt.Fprintln(p.Writer, FormatSummary(domain.Summarize(results)))
}

// PrintDryRun shows the pipeline that would be executed for one input.
func (p Printer) PrintDryRun(spec pipeline.Spec) error {
	data, err := spec.Indented()
	if err != nil {
		return err
	}
	fmt.Fprintf(p.Writer, "# %s\n%s\n", filepath.Base(spec.Reader().Filename()), data)
	return nil
}

func (p Printer) formatResult(r domain.Result) string {
	name := filepath.Base(r.InputPath)
	out := filepath.Base(r.OutputPath)

	switch {
	case r.Status == domain.StatusSkipped:
		return fmt.Sprintf("%s %s : skipped, %s already exists", p.tag("SKIP", skipStyle), name, out)
	case r.Status == domain.StatusFailed:
		return fmt.Sprintf("%s %s : %s  (%s)", p.tag("NG", failStyle), name, appErrors.UserMessage(r.Err), FormatDuration(r.Elapsed))
	case r.DryRun:
		return fmt.Sprintf("%s %s : would write %s", p.tag("DRY", skipStyle), name, out)
	default:
		return fmt.Sprintf("%s %s : OK -> %s (%s)  (%s)", p.tag("OK", okStyle), name, out, humanize.Bytes(uint64(r.OutputBytes)), FormatDuration(r.Elapsed))
	}
}

func (p Printer) tag(label string, style lipgloss.Style) string {
	tag := "[" + label + "]"
	if !p.Styled {
		return tag
	}
	return style.Render(tag)
}

func FormatSummary(s domain.Summary) string {
	return fmt.Sprintf("Summary: %d converted | %d skipped | %d failed | total %s | mean %s",
		s.Converted, s.Skipped, s.Failed, FormatDuration(s.TotalElapsed), FormatDuration(s.MeanElapsed))
}

// FormatDuration renders short durations with one decimal ("12.3s") and
// longer ones as "4m 5s" or "1h 2m 3s".
func FormatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	total := int(sec)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}
