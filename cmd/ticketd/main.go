// Command ticketd serves the ticket store over HTTP JSON-RPC.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/recursivesquircle/ticket-mcp/internal/engine"
	"github.com/recursivesquircle/ticket-mcp/internal/rpc"
	"github.com/recursivesquircle/ticket-mcp/internal/ticket"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	flags := flag.NewFlagSet("ticketd", flag.ContinueOnError)

	var (
		workDir    string
		configPath string
		overrides  ticket.Config
		strict     bool
		noStrict   bool
		verbose    bool
	)

	flags.StringVarP(&workDir, "chdir", "C", "", "run as if started in this directory")
	flags.StringVar(&configPath, "config", "", "config file (default .tickets.json)")
	flags.StringVar(&overrides.RootDir, "root", "", "ticket root directory")
	flags.StringVar(&overrides.Host, "host", "", "listen host")
	flags.IntVar(&overrides.Port, "port", 0, "listen port")
	flags.BoolVar(&strict, "strict", false, "reject writes that fail validation")
	flags.BoolVar(&noStrict, "no-strict", false, "tolerate validation issues on write")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	err := flags.Parse(os.Args[1:])
	if err != nil {
		return err
	}

	if strict {
		value := true
		overrides.Strict = &value
	} else if noStrict {
		value := false
		overrides.Strict = &value
	}

	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	cfg, err := ticket.LoadConfig(workDir, configPath, overrides)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	eng := engine.New(cfg, logger)

	logger.Info("ticket store ready",
		"root", cfg.RootDir,
		"strict", cfg.StrictMode(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := rpc.NewServer(eng, cfg, logger)

	err = srv.Start(ctx)

	// Let any in-flight index regeneration finish before the process exits.
	eng.WaitForIndex()

	return err
}
