package config

import "errors"

// Errors returned by [Load].
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config")
	ErrDatabaseEmpty      = errors.New("database cannot be empty")
	ErrDotenvInvalid      = errors.New("invalid .env file")
)
