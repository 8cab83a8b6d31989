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

// GroupsCmd returns the groups command.
func GroupsCmd(cfg config.Config, logger *slog.Logger) *Command {
	return &Command{
		Flags: newFlagSet("groups"),
		Usage: "groups",
		Short: "Count items per group",
		Long:  "Count items per group, followed by a TOTAL row. Items without a group are not counted.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			return execGroups(ctx, io, cfg, logger)
		},
	}
}

func execGroups(ctx context.Context, io *IO, cfg config.Config, logger *slog.Logger) error {
	return withDB(ctx, cfg, logger, func(db *nmsdb.DB) error {
		groups, err := db.Groups(ctx)
		if err != nil {
			return err
		}

		t := report.Table{Headers: []string{"Group", "Items"}}
		total := 0

		for _, g := range groups {
			t.Rows = append(t.Rows, []string{g.Group, strconv.Itoa(g.Items)})
			total += g.Items
		}

		t.Rows = append(t.Rows, []string{"TOTAL", strconv.Itoa(total)})

		return render(io, cfg, t)
	})
}
