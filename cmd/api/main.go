package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cooksy/internal/api"
	"cooksy/internal/core/assistant"
	"cooksy/internal/infrastructure/config"
	"cooksy/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定，缺少憑證時直接結束
	cfg, err := config.LoadConfig()
	if err != nil {
		var ce *common.CustomError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.Message)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		}
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := assistant.Setup(ctx, cfg)
	if err != nil {
		common.LogError("資源初始化失敗", zap.Error(err))
		os.Exit(1)
	}
	defer res.Close()

	router, stop := api.SetupRouter(cfg, assistant.NewService(res))
	defer stop()

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 等待中斷信號或啟動失敗
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			common.LogError("Failed to start server", zap.Error(err))
			return
		}
	}

	common.LogInfo("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
