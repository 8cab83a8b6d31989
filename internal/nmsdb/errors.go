package nmsdb

import "errors"

// ErrDatabaseNotFound reports that the database file does not exist.
var ErrDatabaseNotFound = errors.New("database not found")

// ErrDatabaseUnreadable reports that the database path exists but cannot be read.
var ErrDatabaseUnreadable = errors.New("database not readable")

// ErrUnknownKind reports a recipe kind other than refinery or cooking.
var ErrUnknownKind = errors.New("unknown recipe kind")
