package nmsdb_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/nmsq/internal/nmsdb"
	"github.com/calvinalkan/nmsq/internal/nmsdb/nmsdbtest"
)

func openFixture(t *testing.T, f *nmsdbtest.Fixture) *nmsdb.DB {
	t.Helper()

	db, err := nmsdb.Open(context.Background(), f.Path, nil)
	require.NoError(t, err, "open fixture")

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func Test_TopValueItems_Returns_Items_Sorted_By_Value_When_Seeded(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	got, err := db.TopValueItems(context.Background(), 0)
	require.NoError(t, err)

	want := []nmsdb.TopValueItem{
		{Title: "Mystery Stew", Value: 3500, Type: "Edible Product", Rarity: "Rare"},
		{Title: "Glass", Value: 1650, Type: "Component", Rarity: "Uncommon"},
		{Title: "Cobalt", Value: 1218, Type: "Metal Element", Rarity: "Rare", Symbol: "Co"},
		{Title: "Metal Plating", Value: 800, Type: "Component", Rarity: "Common"},
		{Title: "Carbon Nanotubes", Value: 500, Type: "Component", Rarity: "Common", Symbol: "Cn"},
		{Title: "Chromatic Metal", Value: 245, Type: "Metal Element", Rarity: "Uncommon", Symbol: "Ch"},
		{Title: "Processed Meat", Value: 150, Type: "Edible Product", Rarity: "Common"},
		{Title: "Sodium", Value: 41, Type: "Catalytic Element", Rarity: "Common", Symbol: "Na"},
		{Title: "Di-hydrogen", Value: 34, Type: "Fuel Element", Rarity: "Common", Symbol: "H"},
		{Title: "Oxygen", Value: 34, Type: "Catalytic Element", Rarity: "Common", Symbol: "O2"},
		{Title: "Pure Ferrite", Value: 28, Type: "Metal Element", Rarity: "Common", Symbol: "Fe+"},
		{Title: "Condensed Carbon", Value: 24, Type: "Fuel Element", Rarity: "Uncommon", Symbol: "C+"},
		{Title: "Ferrite Dust", Value: 14, Type: "Metal Element", Rarity: "Common", Symbol: "Fe"},
		{Title: "Carbon", Value: 12, Type: "Fuel Element", Rarity: "Common", Symbol: "C"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("top-value mismatch (-want +got):\n%s", diff)
	}
}

func Test_TopValueItems_Caps_At_Twenty_Rows_Non_Increasing_When_Many_Items(t *testing.T) {
	t.Parallel()

	f := nmsdbtest.New(t)
	for i := range 30 {
		f.AddItem(t, fmt.Sprintf("fill%d", i), fmt.Sprintf("Filler %02d", i), "filler",
			fmt.Sprintf(`{"value": %d}`, 100+i*7))
	}

	db := openFixture(t, f)

	got, err := db.TopValueItems(context.Background(), nmsdb.DefaultTopValueLimit)
	require.NoError(t, err)
	require.Len(t, got, 20)

	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i].Value, got[i-1].Value, "row %d (%s) above row %d (%s)",
			i, got[i].Title, i-1, got[i-1].Title)
	}
}

func Test_TopValueItems_Honors_Custom_Limit_When_Positive(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	got, err := db.TopValueItems(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Cobalt", got[2].Title)
}

func Test_TopValueItems_Returns_Empty_Not_Error_When_No_Values(t *testing.T) {
	t.Parallel()

	f := nmsdbtest.NewEmpty(t)
	f.AddItem(t, "x1", "Valueless", "raw", `{"rarity": "Common"}`)
	f.AddItem(t, "x2", "Broken Bag", "raw", `not json`)

	db := openFixture(t, f)

	got, err := db.TopValueItems(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func Test_TopValueItems_Skips_Text_Values_That_Are_Not_Numbers(t *testing.T) {
	t.Parallel()

	f := nmsdbtest.NewEmpty(t)
	f.AddItem(t, "v1", "Varies Item", "raw", `{"value": "Varies"}`)
	f.AddItem(t, "v2", "Dash Item", "raw", `{"value": "-"}`)
	f.AddItem(t, "v3", "Null Item", "raw", `{"value": null}`)
	f.AddItem(t, "v4", "Text Number", "raw", `{"value": " 2,500 "}`)
	f.AddItem(t, "v5", "Plain Number", "raw", `{"value": 7.6}`)

	db := openFixture(t, f)

	got, err := db.TopValueItems(context.Background(), 0)
	require.NoError(t, err)

	want := []nmsdb.TopValueItem{
		{Title: "Text Number", Value: 2500},
		{Title: "Plain Number", Value: 8},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("top value mismatch (-want +got):\n%s", diff)
	}
}

func Test_Reports_Return_Context_Canceled_When_Context_Done(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.TopValueItems(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "top-value: ")

	_, err = db.IngredientUsage(ctx, nmsdb.KindRefinery, "Carbon")
	require.ErrorIs(t, err, context.Canceled)

	_, err = db.CookingRecipes(ctx, "Mystery Stew")
	require.ErrorIs(t, err, context.Canceled)
}

func Test_IngredientUsage_Lists_Full_Ingredient_Strings_When_Target_Is_Carbon(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	got, err := db.IngredientUsage(context.Background(), nmsdb.KindRefinery, "Carbon")
	require.NoError(t, err)

	want := []nmsdb.IngredientUse{
		{
			Output:          "Condensed Carbon",
			Operation:       "Requested Operation: Carbon Condensation",
			Ingredients:     "Carbon x2",
			IngredientCount: 1,
		},
		{
			Output:          "Carbon Nanotubes",
			Operation:       "Requested Operation: Nanotube Weaving",
			Ingredients:     "Carbon x50, pure carbon x1",
			IngredientCount: 2,
		},
		{
			Output:          "Condensed Carbon",
			Operation:       "Requested Operation: Oxidised Carbon",
			Ingredients:     "Carbon x2, Oxygen x2",
			IngredientCount: 2,
		},
		{
			Output:          "Chromatic Metal",
			Operation:       "Requested Operation: Chromatic Alloy",
			Ingredients:     "Cobalt x2, Pure Ferrite x2, Carbon x1, Sodium x1",
			IngredientCount: 4,
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("uses mismatch (-want +got):\n%s", diff)
	}

	for _, use := range got {
		assert.Regexp(t, `(^|, )Carbon x\d+`, use.Ingredients, "row for %s", use.Output)
	}
}

func Test_IngredientUsage_Returns_Empty_When_Ingredient_Unknown(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	got, err := db.IngredientUsage(context.Background(), nmsdb.KindRefinery, "Unobtainium")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func Test_IngredientUsage_Matches_Placeholder_Label_When_Kind_Is_Cooking(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	got, err := db.IngredientUsage(context.Background(), nmsdb.KindCooking, "fake plant")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mystery Stew", got[0].Output)
	assert.Equal(t, "Processed Meat x1, fake plant x1", got[0].Ingredients)
}

func Test_IngredientUsage_Rejects_Unknown_Kind(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	_, err := db.IngredientUsage(context.Background(), nmsdb.Kind("smelting"), "Carbon")
	require.ErrorIs(t, err, nmsdb.ErrUnknownKind)
}

func Test_RefineryRecipes_Pivots_Ingredients_When_Output_Matches(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	got, err := db.RefineryRecipes(context.Background(), "Condensed Carbon")
	require.NoError(t, err)

	want := []nmsdb.FormattedRecipe{
		{
			Operation: "Requested Operation: Carbon Condensation",
			Duration:  "3s",
			Input1:    "Carbon x2",
			Output:    "Condensed Carbon x1",
		},
		{
			Operation: "Requested Operation: Oxidised Carbon",
			Duration:  "1s",
			Input1:    "Carbon x2",
			Input2:    "Oxygen x2",
			Output:    "Condensed Carbon x1",
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("refinery mismatch (-want +got):\n%s", diff)
	}
}

func Test_RefineryRecipes_Leaves_Input3_Empty_When_Two_Ingredients(t *testing.T) {
	t.Parallel()

	f := nmsdbtest.New(t)
	f.AddItem(t, "t1", "Test Alloy", "raw", `{"value": 1}`)
	f.AddRecipe(t, "refinery", "ref_t1_1", "t1", 2.0, "Requested Operation: Alloying",
		nmsdbtest.Line{ItemID: "raw3", Quantity: 3},
		nmsdbtest.Line{ItemID: "raw7", Quantity: 1},
	)

	db := openFixture(t, f)

	got, err := db.RefineryRecipes(context.Background(), "Test Alloy")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Ferrite Dust x3", got[0].Input1)
	assert.Equal(t, "Sodium x1", got[0].Input2)
	assert.Empty(t, got[0].Input3)
}

func Test_RefineryRecipes_Drops_Fourth_Ingredient_When_Recipe_Has_Four(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	got, err := db.RefineryRecipes(context.Background(), "Chromatic Metal")
	require.NoError(t, err)
	require.Len(t, got, 2)

	alloy := got[0]
	assert.Equal(t, "Cobalt x2", alloy.Input1)
	assert.Equal(t, "Pure Ferrite x2", alloy.Input2)
	assert.Equal(t, "Carbon x1", alloy.Input3)
	assert.Equal(t, "90s", alloy.Duration)

	for _, r := range got {
		for _, in := range []string{r.Input1, r.Input2, r.Input3} {
			assert.NotContains(t, in, "Sodium")
		}
	}

	assert.Equal(t, "2s", got[1].Duration, "1.5s rounds to whole seconds")
}

func Test_RefineryRecipes_Skips_Unresolved_Ingredient_Lines(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	got, err := db.RefineryRecipes(context.Background(), "Carbon Nanotubes")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Carbon x50", got[0].Input1)
	assert.Empty(t, got[0].Input2)
	assert.Equal(t, "12s", got[0].Duration)
}

func Test_CookingRecipes_Uses_Placeholder_Label_When_Ingredient_Unresolved(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	got, err := db.CookingRecipes(context.Background(), "Mystery Stew")
	require.NoError(t, err)

	want := []nmsdb.FormattedRecipe{{
		Operation: "Requested Operation: Stewing",
		Duration:  "5.0s",
		Input1:    "Processed Meat x1",
		Input2:    "fake plant x1",
		Output:    "Mystery Stew x1",
	}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cooking mismatch (-want +got):\n%s", diff)
	}
}

func Test_CookingRecipes_Keeps_One_Decimal_Of_Duration(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	got, err := db.CookingRecipes(context.Background(), "Processed Meat")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2.5s", got[0].Duration)
	assert.Equal(t, "Raw Steak x1", got[0].Input1)
}

func Test_Recipes_Return_Zero_Rows_Not_Error_When_Item_Unknown(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	for _, kind := range []nmsdb.Kind{nmsdb.KindRefinery, nmsdb.KindCooking} {
		got, err := db.Recipes(context.Background(), kind, "No Such Item")
		require.NoError(t, err, "kind %s", kind)
		assert.Empty(t, got, "kind %s", kind)
	}
}

func Test_Recipes_Bind_Name_Literally_When_It_Contains_Quotes(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	got, err := db.RefineryRecipes(context.Background(), "x' OR '1'='1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func Test_Groups_Counts_Items_Per_Group(t *testing.T) {
	t.Parallel()

	db := openFixture(t, nmsdbtest.New(t))

	got, err := db.Groups(context.Background())
	require.NoError(t, err)

	want := []nmsdb.GroupCount{
		{Group: "cooking", Items: 3},
		{Group: "products", Items: 3},
		{Group: "raw", Items: 10},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func Test_Reports_Surface_Engine_Error_When_Schema_Missing(t *testing.T) {
	t.Parallel()

	f := nmsdbtest.NewEmpty(t)
	f.Exec(t, `DROP TABLE refinery_ingredients`)

	db := openFixture(t, f)

	_, err := db.RefineryRecipes(context.Background(), "Glass")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "refinery: "), "err=%v", err)
	assert.Contains(t, err.Error(), "no such table: refinery_ingredients")
}
