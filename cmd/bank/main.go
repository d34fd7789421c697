package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/terminal_banking/internal/cli"
	"github.com/SscSPs/terminal_banking/internal/platform/bootstrap"
	"github.com/SscSPs/terminal_banking/internal/platform/config"
	"github.com/SscSPs/terminal_banking/internal/platform/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}

	// Logs go to a file so they never interleave with the menus.
	log, closeLog, err := logger.NewFileLogger(cfg.LogFile, cfg.LogLevel, cfg.IsProduction)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog() //nolint:errcheck
	slog.SetDefault(log)
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to start", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "Failed to start:", err)
		os.Exit(1)
	}
	defer rt.Close()

	app := cli.NewApp(rt.Services.Users, cfg.SavingsInterestRate, cli.NewTerminal(os.Stdin, os.Stdout), log)
	if err := app.Run(ctx); err != nil {
		log.Error("Terminal session failed", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, err)
	}
}
