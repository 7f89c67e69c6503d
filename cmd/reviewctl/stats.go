package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/ReviewSentiment/internal/domain"
)

const statsTimeLayout = "2006-01-02 15:04 MST"

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review counts per sentiment",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	stats, err := b.Stats(ctx)
	if err != nil {
		return err
	}
	renderStats(cmd.OutOrStdout(), stats)
	return nil
}

// renderStats writes the per-label breakdown of stats to w.
func renderStats(w io.Writer, stats *domain.Stats) {
	fmt.Fprintln(w, titleStyle.Render("Review statistics"))

	counts := stats.Counts
	if counts.Total == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No reviews stored."))
		return
	}

	fmt.Fprintf(w, "Total reviews: %d\n", counts.Total)
	for _, s := range domain.ValidSentiments() {
		n := counts.Of(s)
		fmt.Fprintf(w, "  %s %5d %s  %s\n",
			sentimentStyle(s).Render(fmt.Sprintf("%-8s", s)),
			n,
			fmt.Sprintf("(%5.1f%%)", counts.Percent(n)),
			mutedStyle.Render(s.Description()),
		)
	}

	if stats.First != nil && stats.Last != nil {
		fmt.Fprintf(w, "First review: %s\n", formatStatsTime(*stats.First))
		fmt.Fprintf(w, "Last review:  %s\n", formatStatsTime(*stats.Last))
	}
}

func formatStatsTime(t time.Time) string {
	return t.UTC().Format(statsTimeLayout)
}
