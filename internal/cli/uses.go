package cli

import (
	"context"
	"log/slog"

	"github.com/calvinalkan/nmsq/internal/config"
	"github.com/calvinalkan/nmsq/internal/nmsdb"
	"github.com/calvinalkan/nmsq/internal/report"
)

// UsesCmd returns the uses command.
func UsesCmd(cfg config.Config, logger *slog.Logger) *Command {
	fs := newFlagSet("uses")
	kind := &kindFlag{kind: nmsdb.KindRefinery}
	fs.VarP(kind, "kind", "k", "Recipe kind: refinery or cooking")

	return &Command{
		Flags: fs,
		Usage: "uses <ingredient> [flags]",
		Short: "List recipes that use an ingredient",
		Long: `List every recipe that has the given ingredient among its inputs.

Each row shows the recipe output, its operation and the full ingredient list
("Name xQty", largest quantity first). Recipes with fewer ingredients are
listed first. Prompts for the ingredient when none is given.`,
		NamePrompt: "Ingredient: ",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execUses(ctx, io, cfg, logger, kind.kind, args[0])
		},
	}
}

func execUses(ctx context.Context, io *IO, cfg config.Config, logger *slog.Logger, kind nmsdb.Kind, ingredient string) error {
	return withDB(ctx, cfg, logger, func(db *nmsdb.DB) error {
		uses, err := db.IngredientUsage(ctx, kind, ingredient)
		if err != nil {
			return err
		}

		t := report.Table{Headers: []string{"Output", "Operation", "Ingredients"}}
		for _, u := range uses {
			t.Rows = append(t.Rows, []string{u.Output, u.Operation, u.Ingredients})
		}

		return render(io, cfg, t)
	})
}
