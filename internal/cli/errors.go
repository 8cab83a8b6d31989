package cli

import "errors"

// Errors returned while parsing the command line.
var (
	ErrFlagRequiresArg = errors.New("flag requires an argument")
	ErrUnknownFlag     = errors.New("unknown flag")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrInputRequired   = errors.New("input required")
	ErrItemRequired    = errors.New("item name is required")
)
