package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagearbor/ai-skill-eval-kit/internal/aggregate"
)

func newAggregateCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "aggregate <folder>...",
		Short: "Combine report folders into a CSV summary and organization statistics",
		Long: "Scan each folder recursively for report JSON files. The folder name is the period.\n" +
			"Writes " + aggregate.SummaryFile + ", " + aggregate.StatsFile + " and " + aggregate.CombinedFile + " to --output.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Searching for reports in %d folder(s)...\n", len(args))

			c, err := aggregate.Collect(args, a.logger)
			if err != nil {
				if errors.Is(err, aggregate.ErrNoReports) {
					return exitError(exitGeneric, "no valid reports found")
				}
				return err
			}
			for _, pc := range c.Counts {
				fmt.Fprintf(out, "Processing %s: %d reports\n", pc.Period, pc.Count)
			}
			fmt.Fprintf(out, "\nFound %d valid reports across %d period(s)\n", len(c.Entries), len(c.Periods()))

			stats := aggregate.Compute(c.Entries, a.now())
			w, err := aggregate.WriteFiles(output, c.Entries, stats)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "\nWritten:")
			fmt.Fprintf(out, "  - %s (%d rows)\n", w.Summary, len(c.Entries))
			fmt.Fprintf(out, "  - %s\n", w.Stats)
			fmt.Fprintf(out, "  - %s\n", w.Combined)

			fmt.Fprintln(out, "\nStats:")
			fmt.Fprintf(out, "  Average Score: %d\n", stats.AverageScore)
			if stats.LowestDimension != "" {
				fmt.Fprintf(out, "  Lowest Dimension: %s (avg level: %.1f)\n",
					stats.LowestDimension, stats.DimensionAverages[stats.LowestDimension])
			}
			var parts []string
			for _, level := range []string{"1", "2", "3"} {
				if n := stats.ByLevel[level]; n > 0 {
					parts = append(parts, fmt.Sprintf("L%s=%d", level, n))
				}
			}
			if len(parts) > 0 {
				fmt.Fprintf(out, "  Level Distribution: %s\n", strings.Join(parts, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", ".", "Directory for the output files")
	return cmd
}
