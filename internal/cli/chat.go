package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cooksy/internal/core/ai/stream"
	"cooksy/internal/core/assistant"
	"cooksy/internal/pkg/common"

	"github.com/spf13/cobra"
)

var exitWords = map[string]bool{"exit": true, "quit": true, "keluar": true}

func newChatCommand() *cobra.Command {
	var saveDir string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ngobrol dengan Cooksy di terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true)
			if err != nil {
				return err
			}
			defer common.Sync()

			res, err := assistant.Setup(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer res.Close()

			return runChat(cmd.Context(), assistant.NewService(res), cmd.InOrStdin(), cmd.OutOrStdout(), saveDir)
		},
	}

	cmd.Flags().StringVarP(&saveDir, "save-dir", "s", "", "folder untuk menyimpan resep sebagai file .txt")
	return cmd
}

// runChat 互動式對話，讀到 EOF 或結束指令時返回
func runChat(ctx context.Context, svc *assistant.Service, in io.Reader, out io.Writer, saveDir string) error {
	sess := svc.Sessions().Create()
	defer svc.Sessions().Delete(sess.ID)

	for _, entry := range sess.Visible() {
		fmt.Fprintf(out, "%s %s\n\n", botColor("Cooksy:"), entry.Content)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, userColor("Kamu: "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if exitWords[strings.ToLower(text)] {
			fmt.Fprintln(out, botColor("Cooksy:"), "Sampai jumpa, Foodie! 👋")
			return nil
		}

		turn, err := svc.HandleTurn(ctx, sess, text)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, noticeColor(turn.IntentNotice))
		if turn.ModeNotice != "" {
			fmt.Fprintln(out, noticeColor(turn.ModeNotice))
		}
		if turn.Inspiration != nil {
			fmt.Fprintln(out, dimColor(fmt.Sprintf("Inspirasi: %s (skor %.2f)", turn.Inspiration.Record.Title, turn.Inspiration.Score)))
		}

		fmt.Fprint(out, botColor("Cooksy: "))
		for part := range turn.Fragments() {
			fmt.Fprint(out, part)
		}
		fmt.Fprint(out, "\n\n")

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if turn.IsRecipe() && turn.Status() == stream.StatusCompleted {
			saveRecipe(out, saveDir, turn.FileName(), turn.Text())
		}
	}
}

func saveRecipe(out io.Writer, dir, name, content string) {
	if dir == "" {
		fmt.Fprintln(out, dimColor("Nama file resep: "+name))
		return
	}

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintln(out, errorColor("Gagal menyimpan resep: "+err.Error()))
		return
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		fmt.Fprintln(out, errorColor("Gagal menyimpan resep: "+err.Error()))
		return
	}
	fmt.Fprintln(out, dimColor("Resep disimpan di "+path))
}
