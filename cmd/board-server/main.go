package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/park285/cheese-board/internal/app"
	appcfg "github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/obslog"
	"go.uber.org/zap"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = obslog.L().Sync() }()

	cfg, err := appcfg.Load()
	if err != nil {
		obslog.L().Fatal("config_error", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		obslog.L().Fatal("app_init_error", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	obslog.L().Info("board_server_start",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("ws_addr", cfg.WSAddr),
	)
	if err := a.Run(ctx); err != nil {
		obslog.L().Error("board_server_stopped", zap.Error(err))
		return
	}
	obslog.L().Info("board_server_stopped")
}
