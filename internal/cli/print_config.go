package cli

import (
	"context"

	"github.com/calvinalkan/nmsq/internal/config"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg config.Config) *Command {
	return &Command{
		Flags: newFlagSet("print-config"),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, cfg)
		},
	}
}

func execPrintConfig(io *IO, cfg config.Config) error {
	io.Println("effective_cwd=" + cfg.EffectiveCwd)
	io.Println("database=" + cfg.DatabaseAbs)
	io.Println("format=" + cfg.Format)
	io.Println("log_level=" + cfg.LogLevel)

	io.Println("")
	io.Println("# sources")

	src := cfg.Sources
	if src.Global == "" && src.Project == "" && src.Dotenv == "" {
		io.Println("(defaults only)")

		return nil
	}

	if src.Global != "" {
		io.Println("global_config=" + src.Global)
	}

	if src.Project != "" {
		io.Println("project_config=" + src.Project)
	}

	if src.Dotenv != "" {
		io.Println("dotenv=" + src.Dotenv)
	}

	return nil
}
