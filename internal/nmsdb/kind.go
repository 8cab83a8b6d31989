package nmsdb

import (
	"fmt"
	"strings"
)

// Kind selects one of the two recipe table pairs.
type Kind string

// Recipe kinds.
const (
	KindRefinery Kind = "refinery"
	KindCooking  Kind = "cooking"
)

// ParseKind validates a kind name from user input.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindRefinery:
		return KindRefinery, nil
	case KindCooking:
		return KindCooking, nil
	default:
		return "", fmt.Errorf("%w: %q (want refinery or cooking)", ErrUnknownKind, s)
	}
}

// tables returns the recipe and ingredient table names for k.
func (k Kind) tables() (recipes string, ingredients string, err error) {
	switch k {
	case KindRefinery:
		return "refinery_recipes", "refinery_ingredients", nil
	case KindCooking:
		return "cooking_recipes", "cooking_ingredients", nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// bindTables substitutes the table pair of k into a query template.
// Table names come from the fixed switch in tables, never from input.
func (k Kind) bindTables(query string) (string, error) {
	recipes, ingredients, err := k.tables()
	if err != nil {
		return "", err
	}

	return strings.NewReplacer(
		"{{recipes}}", recipes,
		"{{ingredients}}", ingredients,
	).Replace(query), nil
}
