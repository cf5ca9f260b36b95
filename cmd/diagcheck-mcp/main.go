// Command diagcheck-mcp serves the diagnostic tools over MCP on stdio.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"diagcheck/internal/config"
	"diagcheck/internal/mcpserver"
	"diagcheck/internal/output"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const version = "0.1.0"

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "diagcheck-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Parse("diagcheck-mcp", args)
	if err != nil {
		return err
	}
	// stdout carries the protocol.
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
		logrus.WithError(err).Warn("database unavailable")
	} else if db != nil {
		sess.DB = db
	}

	srv := mcpserver.NewServer(mcpserver.Config{
		ServerName:    "diagcheck",
		ServerVersion: version,
		ReportDir:     cfg.ReportDir,
	}, pipeline, sess)
	defer srv.Close()

	return srv.Start(ctx)
}
