// Command diagcheck runs one diagnostic, prints it and writes the report.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"diagcheck/internal/config"
	"diagcheck/internal/output"
	"diagcheck/internal/report"
	"diagcheck/ui/console"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "diagcheck: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.Parse("diagcheck", args)
	if err != nil {
		return err
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
		logrus.WithError(err).Warn("database unavailable")
	} else if db != nil {
		sess.DB = db
		defer db.Close()
	}

	d, err := pipeline.RunDiagnosis(ctx, sess)
	if err != nil {
		return err
	}

	view := output.BuildDashboard(d)
	console.Print(stdout, view)

	paths, err := report.NewWriter(cfg.ReportDir).Save(view, cfg.ReportFormat)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(stdout, "Report saved: %s\n", p)
	}
	return nil
}
