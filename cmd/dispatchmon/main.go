package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/dispatchmon/internal/config"
	"git.home.luguber.info/inful/dispatchmon/internal/daemon"
	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
	"git.home.luguber.info/inful/dispatchmon/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"dispatchmon.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Run struct{} `cmd:"" help:"Run the dispatch monitor daemon"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	adapter := derrors.NewCLIErrorAdapter(CLI.Verbose, slog.Default())

	var err error
	switch ctx.Command() {
	case "run":
		err = runDaemon()
	case "init":
		err = runInit()
	case "version":
		fmt.Printf("dispatchmon %s (built %s, commit %s)\n", version.Version, version.BuildTime, version.GitCommit)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, adapter.FormatError(err))
		os.Exit(adapter.ExitCodeFor(err))
	}
}

func runInit() error {
	slog.Info("Initializing configuration", slog.String("path", CLI.Config), slog.Bool("force", CLI.Init.Force))
	if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
		return err
	}
	slog.Info("Configuration written", slog.String("path", CLI.Config))
	return nil
}

func runDaemon() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	// The config file may raise the log level; --verbose always wins.
	if !CLI.Verbose {
		config.SetupLogging(cfg.Logging)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.NewWithConfigFile(cfg, CLI.Config)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	slog.Info("Daemon started, waiting for shutdown signal...")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping daemon...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	slog.Info("Daemon stopped successfully")
	return nil
}
