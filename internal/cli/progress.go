package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/mvp-joe/repo-digest/internal/snapshot"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements snapshot.ProgressReporter with a progress bar.
// All output goes to stderr so stdout stays free for the snapshot itself.
type CLIProgressReporter struct {
	quiet   bool
	verbose bool
	out     io.Writer
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet, verbose bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:   quiet,
		verbose: verbose,
		out:     os.Stderr,
	}
}

func (c *CLIProgressReporter) OnSelectComplete(totalFiles int) {
	if c.quiet {
		return
	}
	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Reading files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

// OnFileProcessed is called from worker goroutines; the bar serializes Add.
func (c *CLIProgressReporter) OnFileProcessed(path string) {
	if c.quiet || c.fileBar == nil {
		return
	}
	_ = c.fileBar.Add(1)
}

func (c *CLIProgressReporter) OnComplete(stats *snapshot.Stats) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		_ = c.fileBar.Finish()
		c.fileBar = nil
	}
	writeSummary(c.out, stats, c.verbose)
}

func writeSummary(out io.Writer, stats *snapshot.Stats, verbose bool) {
	fmt.Fprintf(out, "✓ Snapshot complete: %s files, %s with content (%s bytes) in %.1fs\n",
		formatNumber(stats.Files),
		formatNumber(stats.Contents),
		formatNumber(int(stats.Bytes)),
		stats.Duration.Seconds())

	if !verbose {
		return
	}
	fmt.Fprintf(out, "  Build:      %s (%s mode)\n", stats.BuildID, stats.Mode)
	fmt.Fprintf(out, "  Extracted:  %s\n", formatNumber(stats.Extracted))
	fmt.Fprintf(out, "  Fallbacks:  %s\n", formatNumber(stats.Fallbacks))
	fmt.Fprintf(out, "  Failed:     %s\n", formatNumber(stats.Failed))
	fmt.Fprintf(out, "  Bytes read: %s\n", formatNumber(int(stats.ReadBytes)))

	reasons := make([]string, 0, len(stats.Skipped))
	for reason := range stats.Skipped {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(out, "  Skipped %s: %s\n", reason, formatNumber(stats.Skipped[snapshot.SkipReason(reason)]))
	}
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := fmt.Sprintf("%d", n)
	if n < 1000 {
		return str
	}

	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
