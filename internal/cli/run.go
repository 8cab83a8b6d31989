package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/calvinalkan/nmsq/internal/config"
	"github.com/calvinalkan/nmsq/internal/logging"
	"github.com/calvinalkan/nmsq/internal/nmsdb"

	flag "github.com/spf13/pflag"
)

const (
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// Run is the main entry point. Returns exit code.
//
// args includes the program name. A signal on sigCh cancels the context of
// the running command, which aborts any query in flight. sigCh may be nil.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if len(args) < 2 {
		printUsage(out, nil)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, nil)

		return 1
	}

	if flags.help {
		printUsage(out, nil)

		return 0
	}

	if len(flags.remaining) == 0 {
		fprintln(errOut, "error: no command provided")
		printUsage(errOut, nil)

		return 1
	}

	overrides := config.Config{Database: flags.database, Format: flags.format}
	if flags.verbose {
		overrides.LogLevel = "debug"
	}

	if flags.hasDatabaseOverride && flags.database == "" {
		fprintln(errOut, "error: --db cannot be empty")

		return 1
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: flags.workDir,
		ConfigPath:      flags.configPath,
		Overrides:       overrides,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	logger := logging.New(errOut, cfg.LogLevel)
	commands := newCommands(cfg, logger)

	name := flags.remaining[0]

	cmd, ok := findCommand(commands, name)
	if !ok {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", ErrUnknownCommand, name))
		printUsage(errOut, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelOnSignal(ctx, cancel, sigCh, logger)

	logger.Debug("running command",
		slog.String("command", name),
		slog.String("database", cfg.DatabaseAbs),
		slog.String("format", cfg.Format))

	return cmd.Run(ctx, NewIO(in, out, errOut), flags.remaining[1:])
}

// cancelOnSignal cancels ctx on the first signal from sigCh. A signal that
// is already pending cancels ctx before this returns.
func cancelOnSignal(ctx context.Context, cancel context.CancelFunc, sigCh <-chan os.Signal, logger *slog.Logger) {
	if sigCh == nil {
		return
	}

	onSignal := func(sig os.Signal) {
		logger.Debug("signal received, cancelling", slog.String("signal", sig.String()))
		cancel()
	}

	select {
	case sig := <-sigCh:
		onSignal(sig)

		return
	default:
	}

	go func() {
		select {
		case sig := <-sigCh:
			onSignal(sig)
		case <-ctx.Done():
		}
	}()
}

func newCommands(cfg config.Config, logger *slog.Logger) []*Command {
	return []*Command{
		TopValueCmd(cfg, logger),
		UsesCmd(cfg, logger),
		RecipeCmd(cfg, logger, nmsdb.KindRefinery),
		RecipeCmd(cfg, logger, nmsdb.KindCooking),
		GroupsCmd(cfg, logger),
		ExportCmd(cfg, logger),
		PrintConfigCmd(cfg),
	}
}

func findCommand(commands []*Command, name string) (*Command, bool) {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd, true
		}
	}

	return nil, false
}

type globalFlags struct {
	workDir             string
	configPath          string
	database            string
	hasDatabaseOverride bool
	format              string
	verbose             bool
	help                bool
	remaining           []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C/--cwd flag (work directory)
	if arg == "-C" || arg == "--cwd" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// --db flag
	if arg == "--db" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		flags.database = args[idx+1]
		flags.hasDatabaseOverride = true

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--db="); ok {
		flags.database = after
		flags.hasDatabaseOverride = true

		return consumedOne, nil
	}

	// --format flag
	if arg == "--format" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		flags.format = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--format="); ok {
		flags.format = after

		return consumedOne, nil
	}

	if arg == "-v" || arg == "--verbose" {
		flags.verbose = true

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.help = true

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", ErrUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, commands []*Command) {
	if commands == nil {
		commands = newCommands(config.Default(), nil)
	}

	fprintln(w, `nmsq - reporting queries over a No Man's Sky game-data database

Usage: nmsq [global flags] <command> [flags] [args]

Commands:`)

	for _, cmd := range commands {
		fprintln(w, cmd.HelpLine())
	}

	fprintln(w, `
Global flags:
  -C, --cwd <dir>       Run as if started in <dir>
  -c, --config <file>   Use specified config file
      --db <path>       SQLite database to query (default "nms.db")
      --format <fmt>    Output format: table or json (default "table")
  -v, --verbose         Log debug output to stderr
  -h, --help            Show help

Run 'nmsq <command> --help' for command flags.`)
}

// newFlagSet returns a FlagSet configured like every command's.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SortFlags = false

	return fs
}
