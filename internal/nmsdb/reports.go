package nmsdb

import (
	"context"
	"database/sql"
)

// TopValueItem is one row of the top-value report.
type TopValueItem struct {
	Title  string
	Value  int64 // Value is rounded to whole units.
	Type   string
	Rarity string
	Symbol string
}

// IngredientUse is one recipe that consumes the looked-up ingredient.
type IngredientUse struct {
	Output          string
	Operation       string
	Ingredients     string // Ingredients is "Name xQty" entries joined by ", ".
	IngredientCount int
}

// FormattedRecipe is one recipe pivoted into fixed input columns.
//
// Only the three highest-quantity ingredients are kept; a recipe with four
// or more ingredients loses the rest. Absent inputs are empty strings.
type FormattedRecipe struct {
	Operation string
	Duration  string
	Input1    string
	Input2    string
	Input3    string
	Output    string // Output is always "<title> x1".
}

// GroupCount is the number of items in one item group.
type GroupCount struct {
	Group string
	Items int
}

// TopValueItems returns up to limit items with a value, most valuable first.
// A limit <= 0 uses [DefaultTopValueLimit].
func (db *DB) TopValueItems(ctx context.Context, limit int) ([]TopValueItem, error) {
	if limit <= 0 {
		limit = DefaultTopValueLimit
	}

	return queryRows(ctx, db, "top-value", topValueSQL, func(rows *sql.Rows) (TopValueItem, error) {
		var item TopValueItem

		err := rows.Scan(&item.Title, &item.Value, &item.Type, &item.Rarity, &item.Symbol)

		return item, err
	}, sql.Named("limit", limit))
}

// IngredientUsage returns every recipe of kind that has ingredient among its
// inputs. Rows are ordered by ingredient count, then output title.
func (db *DB) IngredientUsage(ctx context.Context, kind Kind, ingredient string) ([]IngredientUse, error) {
	query, err := kind.bindTables(usesSQL)
	if err != nil {
		return nil, err
	}

	return queryRows(ctx, db, "uses", query, func(rows *sql.Rows) (IngredientUse, error) {
		var (
			use         IngredientUse
			ingredients sql.NullString
		)

		err := rows.Scan(&use.Output, &use.Operation, &ingredients, &use.IngredientCount)
		use.Ingredients = ingredients.String

		return use, err
	}, sql.Named("ingredient", ingredient))
}

// RefineryRecipes returns the refinery recipes that produce item.
func (db *DB) RefineryRecipes(ctx context.Context, item string) ([]FormattedRecipe, error) {
	return queryRows(ctx, db, "refinery", refinerySQL, scanFormattedRecipe, sql.Named("item", item))
}

// CookingRecipes returns the cooking recipes that produce item.
func (db *DB) CookingRecipes(ctx context.Context, item string) ([]FormattedRecipe, error) {
	return queryRows(ctx, db, "cooking", cookingSQL, scanFormattedRecipe, sql.Named("item", item))
}

// Recipes dispatches to [DB.RefineryRecipes] or [DB.CookingRecipes].
func (db *DB) Recipes(ctx context.Context, kind Kind, item string) ([]FormattedRecipe, error) {
	switch kind {
	case KindRefinery:
		return db.RefineryRecipes(ctx, item)
	case KindCooking:
		return db.CookingRecipes(ctx, item)
	default:
		_, _, err := kind.tables()

		return nil, err
	}
}

func scanFormattedRecipe(rows *sql.Rows) (FormattedRecipe, error) {
	var r FormattedRecipe

	err := rows.Scan(&r.Operation, &r.Duration, &r.Input1, &r.Input2, &r.Input3, &r.Output)

	return r, err
}

// Groups counts items per group. Items without a group are not counted.
func (db *DB) Groups(ctx context.Context) ([]GroupCount, error) {
	return queryRows(ctx, db, "groups", groupsSQL, func(rows *sql.Rows) (GroupCount, error) {
		var g GroupCount

		err := rows.Scan(&g.Group, &g.Items)

		return g, err
	})
}
