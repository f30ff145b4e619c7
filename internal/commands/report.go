package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/report"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/statement"
)

func newReportCommand() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print monthly per-category totals from a classified output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			txns, err := statement.ReadOutputFile(inputPath)
			if err != nil {
				return err
			}
			if txns == nil {
				return fmt.Errorf("no classified output at %s", inputPath)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MONTH\tCATEGORY\tTOTAL")
			for _, s := range report.MonthlySums(txns) {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Month, s.Category, s.Total.StringFixed(2))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "classified output CSV (required)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
