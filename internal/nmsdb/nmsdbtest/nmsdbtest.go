// Package nmsdbtest builds throwaway game-data databases for tests.
//
// The schema is applied with goose from embedded migrations that mirror the
// scraper's tables. [New] also loads a small, fixed data set (see seed.sql)
// that the report tests in nmsdb and cli assert against.
package nmsdbtest

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

//go:embed seed.sql
var seedSQL string

// Fixture is a writable database file on disk.
type Fixture struct {
	// Path is the database file, suitable for nmsdb.Open or --db.
	Path string

	db *sql.DB
}

// New creates a database in a temp dir with the schema and the seed data.
func New(t testing.TB) *Fixture {
	t.Helper()

	f := NewEmpty(t)
	f.Seed(t)

	return f
}

// Seed loads the fixed data set into f.
func (f *Fixture) Seed(t testing.TB) {
	t.Helper()

	f.Exec(t, seedSQL)
}

// NewEmpty creates a database in a temp dir with the schema but no rows.
func NewEmpty(t testing.TB) *Fixture {
	t.Helper()

	return NewAt(t, filepath.Join(t.TempDir(), "nms.db"))
}

// NewAt creates a schema-only database at path. The connection is closed
// when the test ends.
func NewAt(t testing.TB, path string) *Fixture {
	t.Helper()

	db, err := sql.Open("sqlite3", writableDSN(path))
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	migrations, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		t.Fatalf("migrations sub-fs: %v", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		t.Fatalf("create migration provider: %v", err)
	}

	_, err = provider.Up(context.Background())
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	return &Fixture{Path: path, db: db}
}

// Exec runs statements against the fixture and fails the test on error.
func (f *Fixture) Exec(t testing.TB, query string, args ...any) {
	t.Helper()

	_, err := f.db.ExecContext(context.Background(), query, args...)
	if err != nil {
		t.Fatalf("fixture exec: %v\nquery: %s", err, query)
	}
}

// AddItem inserts one item with the given attribute bag JSON.
func (f *Fixture) AddItem(t testing.TB, id, title, group, infobox string) {
	t.Helper()

	f.Exec(t, `INSERT INTO items (id, title, group_name, infobox) VALUES (?, ?, ?, ?)`,
		id, title, nullIfEmpty(group), nullIfEmpty(infobox))
}

// AddRecipe inserts a recipe of the given kind ("refinery" or "cooking")
// together with its ingredient lines.
func (f *Fixture) AddRecipe(t testing.TB, kind, recipeID, outputID string, seconds float64, operation string, lines ...Line) {
	t.Helper()

	recipes, ingredients := kind+"_recipes", kind+"_ingredients"
	if kind != "refinery" && kind != "cooking" {
		t.Fatalf("fixture: unknown recipe kind %q", kind)
	}

	f.Exec(t, `INSERT INTO `+recipes+` (recipe_id, source_item_id, output_item_id, time_seconds, operation)
		VALUES (?, ?, ?, ?, ?)`, recipeID, outputID, outputID, seconds, operation)

	for _, l := range lines {
		f.Exec(t, `INSERT INTO `+ingredients+` (recipe_id, ingredient_item_id, quantity) VALUES (?, ?, ?)`,
			recipeID, l.ItemID, l.Quantity)
	}
}

// Line is one ingredient line for [Fixture.AddRecipe].
type Line struct {
	ItemID   string
	Quantity int
}

// writableDSN escapes path so file names containing '?' or '#' are not
// mistaken for URI parameters by the driver.
func writableDSN(path string) string {
	escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(path)

	return "file:" + escaped + "?mode=rwc"
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}

	return s
}
