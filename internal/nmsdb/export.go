package nmsdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
)

// ExportedIngredient is one input line of an exported recipe.
type ExportedIngredient struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// ExportedRecipe mirrors the scraper's recipe JSON files.
type ExportedRecipe struct {
	ID        string               `json:"id"`
	Inputs    []ExportedIngredient `json:"inputs"`
	Output    ExportedIngredient   `json:"output"`
	Time      string               `json:"time"`
	Operation string               `json:"operation"`
}

// ExportedItem is one item with its wiki text sections and its attribute
// bag kept as raw JSON. Sections the scraper found nothing for are null.
type ExportedItem struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Summary         *string         `json:"summary"`
	GameDescription *string         `json:"game_description"`
	SourceInfo      *string         `json:"source_info"`
	UseInfo         *string         `json:"use_info"`
	ReleaseHistory  *string         `json:"release_history"`
	AdditionalInfo  *string         `json:"additional_info"`
	FishingInfo     *string         `json:"fishing_info"`
	ProgressionInfo *string         `json:"progression_info"`
	Type            string          `json:"type"`
	Group           string          `json:"group"`
	Infobox         json.RawMessage `json:"infobox"`
	Categories      json.RawMessage `json:"categories"`
}

type recipeLine struct {
	recipeID   string
	outputID   string
	outputName string
	seconds    float64
	operation  string
	ingID      sql.NullString
	ingName    sql.NullString
	quantity   sql.NullInt64
}

// ExportRecipes returns every recipe of kind with its ingredient lines.
// Names fall back to the raw reference when an item does not resolve.
func (db *DB) ExportRecipes(ctx context.Context, kind Kind) ([]ExportedRecipe, error) {
	query, err := kind.bindTables(exportRecipesSQL)
	if err != nil {
		return nil, err
	}

	lines, err := queryRows(ctx, db, "export "+string(kind), query, func(rows *sql.Rows) (recipeLine, error) {
		var l recipeLine

		err := rows.Scan(&l.recipeID, &l.outputID, &l.outputName, &l.seconds, &l.operation,
			&l.ingID, &l.ingName, &l.quantity)

		return l, err
	})
	if err != nil {
		return nil, err
	}

	recipes := make([]ExportedRecipe, 0)

	for _, l := range lines {
		if len(recipes) == 0 || recipes[len(recipes)-1].ID != l.recipeID {
			recipes = append(recipes, ExportedRecipe{
				ID:        l.recipeID,
				Inputs:    []ExportedIngredient{},
				Output:    ExportedIngredient{ID: l.outputID, Name: l.outputName, Quantity: 1},
				Time:      formatSeconds(l.seconds),
				Operation: l.operation,
			})
		}

		if !l.ingID.Valid {
			continue
		}

		current := &recipes[len(recipes)-1]
		current.Inputs = append(current.Inputs, ExportedIngredient{
			ID:       l.ingID.String,
			Name:     l.ingName.String,
			Quantity: l.quantity.Int64,
		})
	}

	return recipes, nil
}

// ExportItems returns items ordered by title, restricted to groups when any
// are given. Attribute bags that are not valid JSON are replaced with {}.
func (db *DB) ExportItems(ctx context.Context, groups ...string) ([]ExportedItem, error) {
	if groups == nil {
		groups = []string{}
	}

	groupsJSON, err := json.Marshal(groups)
	if err != nil {
		return nil, fmt.Errorf("export items: %w", err)
	}

	return queryRows(ctx, db, "export items", exportItemsSQL, func(rows *sql.Rows) (ExportedItem, error) {
		var (
			item       ExportedItem
			infobox    string
			categories string
		)

		err := rows.Scan(&item.ID, &item.Title,
			&item.Summary, &item.GameDescription, &item.SourceInfo, &item.UseInfo,
			&item.ReleaseHistory, &item.AdditionalInfo, &item.FishingInfo, &item.ProgressionInfo,
			&item.Type, &item.Group, &infobox, &categories)
		item.Infobox = rawJSONOr(infobox, "{}")
		item.Categories = rawJSONOr(categories, "[]")

		return item, err
	}, sql.Named("groups", string(groupsJSON)))
}

// formatSeconds renders a duration the way the scraper's JSON files do:
// shortest float form, always with a fractional part ("1.0", "2.5").
func formatSeconds(seconds float64) string {
	s := strconv.FormatFloat(seconds, 'f', -1, 64)
	if _, err := strconv.Atoi(s); err == nil {
		s += ".0"
	}

	return s
}

func rawJSONOr(s string, fallback string) json.RawMessage {
	if s != "" && json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}

	return json.RawMessage(fallback)
}
