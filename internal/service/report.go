package service

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"quiz-ai-cache/internal/domain"
)

var statusIcons = map[domain.ItemStatus]string{
	domain.StatusCached:           "📦",
	domain.StatusSuccess:          "✅",
	domain.StatusSaveFailed:       "⚠️",
	domain.StatusGenerationFailed: "❌",
}

// ConsoleReporter prints one progress line per finished item.
type ConsoleReporter struct {
	w io.Writer
}

// NewConsoleReporter creates a reporter writing to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// Report implements Reporter.
func (r *ConsoleReporter) Report(total int, res domain.ItemResult) {
	line := fmt.Sprintf("[%d/%d] %s Q%s %s/%s: %s (%.1fs)",
		res.Item.Seq, total, statusIcons[res.Status],
		res.Item.Question.ID, res.Item.Language, res.Item.Type,
		res.Status, res.Duration.Seconds())
	if res.Err != nil {
		line += " - " + res.Err.Error()
	}
	fmt.Fprintln(r.w, line)
}

// RunInfo describes a cache run for the start banner.
type RunInfo struct {
	RunID       string
	Start, End  int
	Languages   []domain.Language
	Types       []domain.ContentType
	Force       bool
	Workers     int
	Credentials int
	Provider    string
	Model       string
	Questions   int
	Items       int
}

// WriteBanner prints the run parameters.
func WriteBanner(w io.Writer, info RunInfo) {
	langs := make([]string, len(info.Languages))
	for i, l := range info.Languages {
		langs[i] = string(l)
	}
	types := make([]string, len(info.Types))
	for i, t := range info.Types {
		types[i] = string(t)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run\t%s\n", info.RunID)
	fmt.Fprintf(tw, "Range\t%d-%d\n", info.Start, info.End)
	fmt.Fprintf(tw, "Languages\t%s\n", strings.Join(langs, ", "))
	fmt.Fprintf(tw, "Types\t%s\n", strings.Join(types, ", "))
	fmt.Fprintf(tw, "Force\t%t\n", info.Force)
	fmt.Fprintf(tw, "Workers\t%d\n", info.Workers)
	fmt.Fprintf(tw, "Model\t%s/%s (%d keys)\n", info.Provider, info.Model, info.Credentials)
	fmt.Fprintf(tw, "Questions\t%d\n", info.Questions)
	fmt.Fprintf(tw, "Work items\t%d\n", info.Items)
	_ = tw.Flush()
}

// WriteSummary prints the aggregate outcome table.
func WriteSummary(w io.Writer, s domain.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Status\tCount\t\n")
	fmt.Fprintf(tw, "success\t%d\t\n", s.Success)
	fmt.Fprintf(tw, "cached\t%d\t\n", s.Cached)
	fmt.Fprintf(tw, "failed\t%d\t\n", s.Failed())
	if s.NotRun > 0 {
		fmt.Fprintf(tw, "not run\t%d\t\n", s.NotRun)
	}
	fmt.Fprintf(tw, "total\t%d\t\n", s.Total)
	_ = tw.Flush()
}
