package nmsdb

import _ "embed"

//go:embed sql/top_value.sql
var topValueSQL string

//go:embed sql/uses.sql
var usesSQL string

//go:embed sql/refinery.sql
var refinerySQL string

//go:embed sql/cooking.sql
var cookingSQL string

//go:embed sql/groups.sql
var groupsSQL string

//go:embed sql/export_recipes.sql
var exportRecipesSQL string

//go:embed sql/export_items.sql
var exportItemsSQL string

// DefaultTopValueLimit is the row cap of the top-value report.
const DefaultTopValueLimit = 20
