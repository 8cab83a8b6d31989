package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/calvinalkan/nmsq/internal/config"
	"github.com/calvinalkan/nmsq/internal/nmsdb"
	"github.com/calvinalkan/nmsq/internal/report"
)

// TopValueCmd returns the top-value command.
func TopValueCmd(cfg config.Config, logger *slog.Logger) *Command {
	fs := newFlagSet("top-value")
	limit := fs.IntP("limit", "n", nmsdb.DefaultTopValueLimit, "Maximum rows to show")

	return &Command{
		Flags: fs,
		Usage: "top-value [flags]",
		Short: "List the most valuable items",
		Long: `List items with a known value, most valuable first.

Values are rounded to whole units. Items with equal value are ordered by
title. Items without a value are left out.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execTopValue(ctx, io, cfg, logger, *limit, args)
		},
	}
}

func execTopValue(ctx context.Context, io *IO, cfg config.Config, logger *slog.Logger, limit int, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	if limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", limit)
	}

	return withDB(ctx, cfg, logger, func(db *nmsdb.DB) error {
		items, err := db.TopValueItems(ctx, limit)
		if err != nil {
			return err
		}

		t := report.Table{Headers: []string{"Title", "Value", "Type", "Rarity", "Symbol"}}
		for _, it := range items {
			t.Rows = append(t.Rows, []string{it.Title, strconv.FormatInt(it.Value, 10), it.Type, it.Rarity, it.Symbol})
		}

		return render(io, cfg, t)
	})
}
