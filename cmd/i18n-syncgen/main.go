// Command i18n-syncgen turns the translation log into a migration that
// upserts public.vehicle_generation_i18n in one transaction. Blank snippets
// are dropped, and the generated conflict clause never lets a missing
// summary or an empty array overwrite existing content.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"i18nsync/internal/config"
	"i18nsync/internal/metrics"
	"i18nsync/internal/metrics/prompush"
	"i18nsync/internal/migration"
	"i18nsync/internal/translog"
)

const job = "i18n_syncgen"

// Deps holds the boundaries run() touches so tests can substitute them.
type Deps struct {
	InstallMetrics func(backend, job, url string) (flush func())
	Stdout         io.Writer
}

func defaultDeps() Deps {
	return Deps{
		InstallMetrics: prompush.Install,
		Stdout:         os.Stdout,
	}
}

// run reads the log, renders the upsert and writes it. Nothing is written
// unless every earlier step succeeded.
func run(cfg *config.Config, deps Deps) error {
	if _, err := os.Stat(cfg.LogPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("CSV log not found at %s: %w", cfg.LogPath, err)
		}
		return err
	}

	flush := deps.InstallMetrics(cfg.MetricsBackend, job, cfg.PushGatewayURL)
	defer flush()

	var (
		rows   []translog.Row
		digest uint64
	)
	err := metrics.Time(job, "read_log", func() error {
		f, err := os.Open(cfg.LogPath)
		if err != nil {
			return err
		}
		defer f.Close()
		d := migration.NewDigestReader(f)
		rows, err = translog.ReadRows(d)
		digest = d.Sum()
		return err
	})
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	agg := translog.Fold(rows, translog.ModeTrimmed)

	var script string
	err = metrics.Time(job, "render", func() error {
		var err error
		script, err = migration.Render(agg, migration.Options{Source: cfg.LogPath, Digest: digest})
		return err
	})
	if err != nil {
		return err
	}

	if err := metrics.Time(job, "write", func() error {
		return migration.WriteFile(cfg.OutputPath, script)
	}); err != nil {
		return err
	}

	metrics.RecordRows(job, "log_rows", len(rows))
	metrics.RecordRows(job, "sql_rows", agg.Len())
	fmt.Fprintf(deps.Stdout, "Wrote SQL with %d rows to %s\n", agg.Len(), cfg.OutputPath)
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
