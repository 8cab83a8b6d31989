package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/natefinch/atomic"

	"github.com/calvinalkan/nmsq/internal/config"
	"github.com/calvinalkan/nmsq/internal/nmsdb"
	"github.com/calvinalkan/nmsq/internal/report"
)

const exportItems = "items"

type exportOptions struct {
	output    string
	outputDir string
	groups    []string
}

// ExportCmd returns the export command.
func ExportCmd(cfg config.Config, logger *slog.Logger) *Command {
	fs := newFlagSet("export")

	var opts exportOptions

	fs.StringVarP(&opts.output, "output", "o", "", "Write to `file` instead of stdout (replaced atomically)")
	fs.StringVarP(&opts.outputDir, "output-dir", "d", "", "Write one <group>.json per item group into `dir` (items only)")
	fs.StringArrayVarP(&opts.groups, "group", "g", nil, "Only export items of this `group`; repeatable (items only)")

	return &Command{
		Flags: fs,
		Usage: "export <refinery|cooking|items> [flags]",
		Short: "Export recipes or items as JSON",
		Long: `Export all refinery recipes, cooking recipes or items as a JSON array.

Recipes carry their inputs, output, time and operation. An input that is
missing from the item table is named after its raw reference. Items carry
their text sections, infobox and categories as stored.

With --output-dir, items are split into one file per group and a summary of
the files written is printed. --group limits either form to the named groups;
unknown groups are skipped.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execExport(ctx, io, cfg, logger, opts, args)
		},
	}
}

func execExport(ctx context.Context, io *IO, cfg config.Config, logger *slog.Logger, opts exportOptions, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("export needs exactly one of refinery, cooking or items, got %d arguments", len(args))
	}

	what := args[0]

	if opts.output != "" && opts.outputDir != "" {
		return errors.New("--output and --output-dir cannot be combined")
	}

	if what == exportItems {
		if opts.outputDir != "" {
			return exportGroupFiles(ctx, io, cfg, logger, opts)
		}

		return exportJSON(ctx, cfg, logger, io, opts.output, func(db *nmsdb.DB) (any, error) {
			return db.ExportItems(ctx, opts.groups...)
		})
	}

	kind, err := nmsdb.ParseKind(what)
	if err != nil {
		return err
	}

	if len(opts.groups) > 0 || opts.outputDir != "" {
		return errors.New("--group and --output-dir only apply to items")
	}

	return exportJSON(ctx, cfg, logger, io, opts.output, func(db *nmsdb.DB) (any, error) {
		return db.ExportRecipes(ctx, kind)
	})
}

// exportJSON writes the result of load to stdout, or atomically to output.
func exportJSON(ctx context.Context, cfg config.Config, logger *slog.Logger, io *IO, output string, load func(db *nmsdb.DB) (any, error)) error {
	var data any

	err := withDB(ctx, cfg, logger, func(db *nmsdb.DB) error {
		var err error

		data, err = load(db)

		return err
	})
	if err != nil {
		return err
	}

	buf, err := encodeExport(data)
	if err != nil {
		return err
	}

	if output == "" {
		_, err = io.Write(buf.Bytes())

		return err
	}

	return writeExportFile(logger, resolvePath(cfg, output), buf)
}

// exportGroupFiles writes <dir>/<group>.json for every selected group and
// prints how many items went into each file.
func exportGroupFiles(ctx context.Context, io *IO, cfg config.Config, logger *slog.Logger, opts exportOptions) error {
	dir := resolvePath(cfg, opts.outputDir)

	t := report.Table{Headers: []string{"Group", "Items", "File"}}
	total := 0

	err := withDB(ctx, cfg, logger, func(db *nmsdb.DB) error {
		groups, err := db.Groups(ctx)
		if err != nil {
			return err
		}

		err = os.MkdirAll(dir, 0o750)
		if err != nil {
			return fmt.Errorf("creating %s: %w", opts.outputDir, err)
		}

		for _, g := range groups {
			if len(opts.groups) > 0 && !slices.Contains(opts.groups, g.Group) {
				continue
			}

			name, err := groupFileName(g.Group)
			if err != nil {
				return err
			}

			items, err := db.ExportItems(ctx, g.Group)
			if err != nil {
				return err
			}

			buf, err := encodeExport(items)
			if err != nil {
				return err
			}

			err = writeExportFile(logger, filepath.Join(dir, name), buf)
			if err != nil {
				return err
			}

			t.Rows = append(t.Rows, []string{g.Group, strconv.Itoa(len(items)), name})
			total += len(items)
		}

		return nil
	})
	if err != nil {
		return err
	}

	t.Rows = append(t.Rows, []string{"TOTAL", strconv.Itoa(total), ""})

	return render(io, cfg, t)
}

// groupFileName maps a group to its file name, refusing names that would
// escape the output directory.
func groupFileName(group string) (string, error) {
	if group == "" || group == "." || group == ".." || filepath.Base(group) != group {
		return "", fmt.Errorf("group %q cannot be used as a file name", group)
	}

	return group + ".json", nil
}

func encodeExport(data any) (*bytes.Buffer, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	err := enc.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}

	return &buf, nil
}

func writeExportFile(logger *slog.Logger, path string, buf *bytes.Buffer) error {
	size := buf.Len()

	err := atomic.WriteFile(path, buf)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	logger.Debug("export written", slog.String("path", path), slog.Int("bytes", size))

	return nil
}

func resolvePath(cfg config.Config, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(cfg.EffectiveCwd, path)
}
