package cli

import (
	"fmt"
	"io"
	"strings"

	"cooksy/internal/core/assistant"
	"cooksy/internal/pkg/common"

	"github.com/spf13/cobra"
)

func newSearchCommand() *cobra.Command {
	var (
		top    int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <bahan, bahan, ...>",
		Short: "Cari resep serupa di dataset tanpa memanggil model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("bahan tidak boleh kosong")
			}

			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			defer common.Sync()

			index, err := assistant.LoadIndex(cfg)
			if err != nil {
				return err
			}

			result := assistant.Search(index, query, top, cfg.Corpus.MinimalistMax)
			if asJSON {
				out, err := common.ToJSON(result)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			printSearchResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 3, "jumlah resep yang ditampilkan")
	cmd.Flags().BoolVar(&asJSON, "json", false, "tampilkan hasil dalam format JSON")
	return cmd
}

func printSearchResult(w io.Writer, result *assistant.SearchResult) {
	fmt.Fprintf(w, "Bahan (%d): %s\n", len(result.Ingredients), strings.Join(result.Ingredients, ", "))
	fmt.Fprintln(w, noticeColor(result.ModeNotice))

	if len(result.Matches) == 0 {
		fmt.Fprintln(w, dimColor("Tidak ada resep yang cukup mirip di dataset."))
		return
	}
	for i, m := range result.Matches {
		fmt.Fprintf(w, "%d. %s %s\n", i+1, m.Record.Title, dimColor(fmt.Sprintf("(skor %.3f)", m.Score)))
		fmt.Fprintf(w, "   %s\n", m.Record.RawIngredients)
	}
}
