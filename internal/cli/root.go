// Package cli 提供 cooksy 終端指令
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cooksy/internal/infrastructure/config"
	"cooksy/internal/pkg/common"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	noticeColor = color.New(color.FgYellow).SprintFunc()
	botColor    = color.New(color.FgGreen, color.Bold).SprintFunc()
	userColor   = color.New(color.FgCyan, color.Bold).SprintFunc()
	errorColor  = color.New(color.FgRed).SprintFunc()
	dimColor    = color.New(color.Faint).SprintFunc()
)

// NewRootCommand 建立 cooksy 根指令
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cooksy",
		Short:         "Cooksy, teman masak virtual di terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newChatCommand(), newSearchCommand(), newSubstitutesCommand())
	return root
}

// Execute 執行根指令，失敗時以非零狀態結束
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorColor(userMessage(err)))
		cancel()
		os.Exit(1)
	}
}

// userMessage 設定與資料錯誤只顯示給使用者看的訊息
func userMessage(err error) string {
	var ce *common.CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return err.Error()
}

// loadConfig 載入設定並把日誌導向檔案，避免干擾終端輸出
func loadConfig(requireToken bool) (*config.Config, error) {
	load := config.Load
	if requireToken {
		load = config.LoadConfig
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := common.InitFileLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}
