package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"diagcheck/internal/config"
	"diagcheck/internal/output"
	"diagcheck/internal/report"
	"diagcheck/ui/tui"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const defaultLogFile = "diagcheck.log"

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Parse("diagcheck-tui", args)
	if err != nil {
		return err
	}
	// The alt screen owns the terminal, so logs always go to a file.
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}
	logs, err := cfg.ConfigureLogging(os.Stderr)
	if err != nil {
		return err
	}
	defer logs.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := cfg.NewPipeline()
	if err != nil {
		return err
	}

	sess := &output.Session{}
	db, err := cfg.OpenDatabase(ctx)
	if err != nil {
		// Runs still work and report the database as disconnected.
		logrus.WithError(err).Warn("database unavailable")
	} else if db != nil {
		sess.DB = db
		defer db.Close()
	}

	return tui.Start(ctx, pipeline, sess, report.NewWriter(cfg.ReportDir))
}
