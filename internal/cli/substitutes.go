package cli

import (
	"fmt"
	"text/tabwriter"

	"cooksy/internal/core/recipe"

	"github.com/spf13/cobra"
)

func newSubstitutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "substitutes",
		Short: "Tampilkan tabel bahan pengganti",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BAHAN\tPENGGANTI\tALASAN")
			for _, s := range recipe.Substitutions() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Ingredient, s.Substitute, s.Reason)
			}
			return tw.Flush()
		},
	}
}
