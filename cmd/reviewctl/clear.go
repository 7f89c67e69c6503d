package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored review",
	Long: `Delete every stored review and flush the review cache.

This is the only way reviews are ever removed.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")
}

func runClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	stats, err := b.Stats(ctx)
	if err != nil {
		return err
	}
	if stats.Counts.Total == 0 {
		fmt.Fprintln(out, mutedStyle.Render("Database is already empty."))
		return nil
	}

	if !clearYes {
		prompt := fmt.Sprintf("This will delete %d reviews. Continue?", stats.Counts.Total)
		ok, err := confirm(cmd.InOrStdin(), out, warningStyle.Render(prompt))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, mutedStyle.Render("Cancelled."))
			return nil
		}
	}

	n, err := b.Clear(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Deleted %d reviews.", n)))
	return nil
}
