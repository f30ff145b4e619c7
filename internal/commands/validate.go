package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/category"
)

func newValidateCommand() *cobra.Command {
	var mappingPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a category mapping file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := category.Load(mappingPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			keywords := 0
			for _, c := range mapping.Categories() {
				keywords += len(c.Keywords)
			}
			fmt.Fprintf(out, "%d categories, %d keywords", len(mapping.Categories()), keywords)
			if rules := mapping.Rules(); len(rules) > 0 {
				fmt.Fprintf(out, ", %d amount rules", len(rules))
			}
			fmt.Fprintln(out)

			for _, d := range mapping.Duplicates() {
				fmt.Fprintf(out, "warning: keyword %q appears in %q and %q; %q wins\n",
					d.Keyword, d.First, d.Second, d.First)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mappingPath, "mapping", "", "category mapping YAML file (required)")
	_ = cmd.MarkFlagRequired("mapping")

	return cmd
}
