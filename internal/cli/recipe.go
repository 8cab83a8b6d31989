package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calvinalkan/nmsq/internal/config"
	"github.com/calvinalkan/nmsq/internal/nmsdb"
	"github.com/calvinalkan/nmsq/internal/report"
)

var recipeHeaders = []string{"Operation", "Time", "Input 1", "Input 2", "Input 3", "Output"}

// RecipeCmd returns the refinery or cooking command, depending on kind.
func RecipeCmd(cfg config.Config, logger *slog.Logger, kind nmsdb.Kind) *Command {
	name := string(kind)

	long := `Show every refinery recipe that produces the named item.

Inputs are ordered by quantity (largest first), then by name. Time is shown
in whole seconds.`
	if kind == nmsdb.KindCooking {
		long = `Show every cooking recipe that produces the named item.

Inputs are ordered by quantity (largest first), then by name. Time is shown
with one decimal. Inputs missing from the item table are shown by the name
they were recorded under.`
	}

	long += `

Only the first three inputs are shown. A recipe with four or more inputs
loses the rest. Prompts for the item when none is given.`

	return &Command{
		Flags:      newFlagSet(name),
		Usage:      name + " <item>",
		Short:      fmt.Sprintf("Show %s recipes producing an item", name),
		Long:       long,
		NamePrompt: "Item: ",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execRecipe(ctx, io, cfg, logger, kind, args[0])
		},
	}
}

func execRecipe(ctx context.Context, io *IO, cfg config.Config, logger *slog.Logger, kind nmsdb.Kind, item string) error {
	return withDB(ctx, cfg, logger, func(db *nmsdb.DB) error {
		recipes, err := db.Recipes(ctx, kind, item)
		if err != nil {
			return err
		}

		t := report.Table{Headers: recipeHeaders}
		for _, r := range recipes {
			t.Rows = append(t.Rows, []string{r.Operation, r.Duration, r.Input1, r.Input2, r.Input3, r.Output})
		}

		return render(io, cfg, t)
	})
}
