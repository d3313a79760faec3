// Command i18n-compare reconciles the translation log with a database dump.
// It reads the vehicle_generation_i18n COPY block from a plain-text dump and
// the CSV log, then prints how many keys each side holds, which keys are
// missing on either side, and a sample of content differences.
//
// The exit status is zero whatever the number of differences; only
// unreadable inputs fail the run.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"i18nsync/internal/config"
	"i18nsync/internal/dump"
	"i18nsync/internal/metrics"
	"i18nsync/internal/metrics/prompush"
	"i18nsync/internal/reconcile"
	"i18nsync/internal/translog"
)

const job = "i18n_compare"

// Deps holds the boundaries run() touches so tests can substitute them.
type Deps struct {
	ScanDump       func(ctx context.Context, path string, opts dump.Options) (*dump.Table, error)
	ReadLog        func(path string) ([]translog.Row, error)
	InstallMetrics func(backend, job, url string) (flush func())
	Stdout         io.Writer
}

func defaultDeps() Deps {
	return Deps{
		ScanDump:       dump.ScanFile,
		ReadLog:        translog.ReadFile,
		InstallMetrics: prompush.Install,
		Stdout:         os.Stdout,
	}
}

// run loads both inputs concurrently, compares them and prints the report.
// A failing loader cancels the dump scan.
func run(cfg *config.Config, deps Deps) error {
	flush := deps.InstallMetrics(cfg.MetricsBackend, job, cfg.PushGatewayURL)
	defer flush()

	var (
		tbl  *dump.Table
		rows []translog.Row
	)
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return metrics.Time(job, "scan_dump", func() error {
			var err error
			tbl, err = deps.ScanDump(ctx, cfg.DumpPath, dump.Options{Strict: cfg.StrictArrays})
			return err
		})
	})
	g.Go(func() error {
		return metrics.Time(job, "read_log", func() error {
			var err error
			rows, err = deps.ReadLog(cfg.LogPath)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if tbl.Len() == 0 {
		log.Printf("no COPY block for vehicle_generation_i18n in %s", cfg.DumpPath)
	}
	if tbl.Warnings > 0 {
		log.Printf("%d dump array cells would be rejected by PostgreSQL", tbl.Warnings)
	}

	start := time.Now()
	rep := reconcile.Compare(tbl, translog.Fold(rows, translog.ModeRaw))
	metrics.RecordStep(job, "compare", nil, time.Since(start))

	metrics.RecordRows(job, "dump_rows", tbl.Len())
	metrics.RecordRows(job, "log_rows", len(rows))
	metrics.RecordRows(job, "log_keys", rep.LogKeys)
	metrics.RecordRows(job, "missing_in_backup", len(rep.MissingInBackup))
	metrics.RecordRows(job, "missing_in_log", len(rep.MissingInLog))
	metrics.RecordRows(job, "content_diffs", len(rep.Diffs))
	metrics.RecordRows(job, "array_warnings", tbl.Warnings)

	if err := rep.Print(deps.Stdout, cfg.SampleLimit); err != nil {
		return fmt.Errorf("print report: %w", err)
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg, defaultDeps()); err != nil {
		log.Fatal(err)
	}
}
