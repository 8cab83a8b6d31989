package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command defines a CLI command with unified help generation.
type Command struct {
	// Flags defines command-specific flags.
	// The FlagSet name is not used - command identity comes from Usage.
	Flags *flag.FlagSet

	// Usage is the freeform usage string shown after "nmsq" in help.
	// Includes the command name and arguments/flags.
	// Examples: "uses <ingredient> [flags]", "refinery <item>", "groups"
	Usage string

	// Short is a one-line description for the global help listing.
	Short string

	// Long is the full description shown in command help.
	// If empty, Short is used instead.
	Long string

	// NamePrompt marks a command whose positional arguments form one display
	// name (an item or ingredient title). The words are joined with single
	// spaces so names need no quoting. When no words are given the user is
	// prompted with NamePrompt. Exec then receives exactly one argument.
	NamePrompt string

	// Exec runs the command after flags are parsed.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine returns the short help line for the main usage display.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-28s %s", c.Usage, c.Short)
}

// PrintHelp prints the full help output for "nmsq <cmd> --help" to stdout.
func (c *Command) PrintHelp(o *IO) {
	c.writeHelp(o.out)
}

func (c *Command) writeHelp(w io.Writer) {
	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	fprintln(w, "Usage: nmsq", c.Usage)
	fprintln(w)
	fprintln(w, desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		fprintln(w)
		fprintln(w, "Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		_, _ = io.WriteString(w, buf.String())
	}
}

// Run parses flags, resolves the display name if the command takes one and
// executes the command. Returns exit code.
//
// Usage errors (bad flags, a missing name) print the error followed by the
// command help, both on stderr, so stdout only ever carries report output.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{}) // discard pflag output

	err := c.Flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)
			return 0
		}

		return c.usageError(o, err)
	}

	args = c.Flags.Args()

	if c.NamePrompt != "" {
		name, err := resolveName(o, args, c.NamePrompt)
		if err != nil {
			return c.usageError(o, err)
		}

		args = []string{name}
	}

	if err := c.Exec(ctx, o, args); err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	return 0
}

func (c *Command) usageError(o *IO, err error) int {
	o.ErrPrintln("error:", err)
	o.ErrPrintln()
	c.writeHelp(o.errOut)

	return 1
}

// resolveName joins args into one display name, prompting when args hold
// no words.
func resolveName(o *IO, args []string, prompt string) (string, error) {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name != "" {
		return name, nil
	}

	name, err := o.Prompt(prompt)
	if err != nil {
		if errors.Is(err, ErrInputRequired) {
			return "", ErrItemRequired
		}

		return "", fmt.Errorf("%w: %w", ErrItemRequired, err)
	}

	return name, nil
}
