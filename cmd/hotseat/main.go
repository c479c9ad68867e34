package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/park285/cheese-hotseat/internal/app"
	appcfg "github.com/park285/cheese-hotseat/internal/config"
	"github.com/park285/cheese-hotseat/internal/hotseatbuilder"
	"github.com/park285/cheese-hotseat/internal/obslog"
	"github.com/park285/cheese-hotseat/internal/server"
	"github.com/park285/cheese-hotseat/internal/tui"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// the terminal UI owns stdout
	console := cfg.LogToConsole && cfg.Mode != appcfg.ModeTUI
	logFile := ""
	if cfg.LogToFile {
		logFile = cfg.LogFile
	}
	if err := obslog.Init(obslog.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Console: console,
		File:    logFile,
		Caller:  cfg.LogCaller,
	}); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	deps, err := hotseatbuilder.New(cfg)
	if err != nil {
		obslog.L().Fatal("init_failed", zap.Error(err))
	}
	defer func() {
		if err := deps.Close(); err != nil {
			obslog.L().Warn("close_failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case appcfg.ModeTUI:
		err = runTUI(ctx, deps)
	default:
		err = serve(ctx, cfg, deps)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		obslog.L().Error("exit", zap.Error(err))
		obslog.Sync()
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *appcfg.AppConfig, deps *hotseatbuilder.Deps) error {
	m := deps.NewMachine(deps.Renderer.Layout())
	loop := app.NewLoop(m)

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = loop.Run(loopCtx)
	}()

	srv := server.New(loop, deps.Renderer, server.WithSlots(deps.Store), server.WithTitle(deps.Title()))
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(cfg.Addr) }()

	var err error
	select {
	case <-ctx.Done():
		obslog.L().Info("shutdown_signal")
	case <-loop.Exited():
		obslog.L().Info("shutdown_exit_button")
	case err = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cerr := srv.Close(shutdownCtx); cerr != nil {
		obslog.L().Warn("http_shutdown", zap.Error(cerr))
	}
	cancelLoop()
	<-loopDone
	return err
}

func runTUI(ctx context.Context, deps *hotseatbuilder.Deps) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	ui := tui.New(screen, deps.NewMachine(tui.Layout()), deps.Title())
	return ui.Run(ctx)
}
