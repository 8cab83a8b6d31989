package cli

import (
	"context"
	"log/slog"

	"github.com/calvinalkan/nmsq/internal/config"
	"github.com/calvinalkan/nmsq/internal/nmsdb"
	"github.com/calvinalkan/nmsq/internal/report"
)

// withDB opens the configured database read-only for the duration of fn.
func withDB(ctx context.Context, cfg config.Config, logger *slog.Logger, fn func(db *nmsdb.DB) error) error {
	db, err := nmsdb.Open(ctx, cfg.DatabaseAbs, logger)
	if err != nil {
		return err
	}

	defer func() { _ = db.Close() }()

	return fn(db)
}

// render writes t to stdout in the configured format.
func render(o *IO, cfg config.Config, t report.Table) error {
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	return report.Write(o, format, t)
}
