// Package nmsdb runs read-only reporting queries against a game-data SQLite
// database produced by the wiki scraper.
//
// The database is an external, fixed schema: an items table plus refinery
// and cooking recipe/ingredient table pairs. nmsdb never writes to it; every
// connection is opened with mode=ro and query_only set.
//
// Each report is a single SQL statement embedded from the sql/ directory.
// Names that match nothing produce an empty result, never an error. Engine
// errors (missing tables, bad columns) are returned wrapped with the report
// name and otherwise unchanged.
package nmsdb
