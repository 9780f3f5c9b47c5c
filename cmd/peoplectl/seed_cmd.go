package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"peopledesk/internal/core/apperror"
	"peopledesk/internal/infrastructure/storage/file"
	"peopledesk/internal/infrastructure/storage/sqlite"
	"peopledesk/internal/screens"
)

type seedOptions struct {
	dir     string
	formats []string
	sqlite  string
	screens []string
}

func newSeedCmd(_ *rootOptions) *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the generated datasets to files or a SQLite database",
		Example: `  peoplectl seed --dir ./data --format json
  peoplectl seed --sqlite ./people.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dir == "" && opts.sqlite == "" {
				return apperror.NewValidation("nothing to do: set --dir or --sqlite")
			}
			return runSeed(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.dir, "dir", "", "Directory to write dataset files to")
	flags.StringSliceVar(&opts.formats, "format", []string{"json"}, "File formats: json, yaml, toml, csv, xlsx")
	flags.StringVar(&opts.sqlite, "sqlite", "", "SQLite database file to seed")
	flags.StringSliceVar(&opts.screens, "screen", nil, "Screens to seed (default all)")
	return cmd
}

func runSeed(ctx context.Context, out io.Writer, opts seedOptions) error {
	formats := make([]file.Format, 0, len(opts.formats))
	for _, s := range opts.formats {
		f, err := file.ParseFormat(s)
		if err != nil {
			return apperror.NewValidation(err.Error())
		}
		formats = append(formats, f)
	}

	defs, err := selectScreens(opts.screens)
	if err != nil {
		return err
	}

	if opts.dir != "" {
		for _, def := range defs {
			records := def.Generate()
			for _, f := range formats {
				path := filepath.Join(opts.dir, def.Name+f.Ext())
				if err := file.Write(path, def.Schema(), records); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(out, "wrote %d records to %s\n", len(records), path)
			}
		}
	}

	if opts.sqlite != "" {
		db, err := sqlite.Open(ctx, opts.sqlite)
		if err != nil {
			return err
		}
		defer db.Close()

		mapping := make([]string, 0, len(defs))
		for _, def := range defs {
			table := tableName(def.Name)
			records := def.Generate()
			if err := sqlite.Seed(ctx, db, table, def.Schema(), records); err != nil {
				return fmt.Errorf("seed %s: %w", table, err)
			}
			mapping = append(mapping, def.Name+"="+table)
			fmt.Fprintf(out, "seeded %d records into %s:%s\n", len(records), opts.sqlite, table)
		}
		fmt.Fprintf(out, "SQLITE_PATH=%s\nSQLITE_TABLES=%s\n", opts.sqlite, strings.Join(mapping, ","))
	}
	return nil
}

func selectScreens(names []string) ([]screens.Definition, error) {
	all := screens.Catalog()
	if len(names) == 0 {
		return all, nil
	}
	out := make([]screens.Definition, 0, len(names))
	for _, n := range names {
		def, ok := screens.Lookup(strings.TrimSpace(n))
		if !ok {
			return nil, apperror.NewNotFound("screen", n)
		}
		if !slices.ContainsFunc(out, func(d screens.Definition) bool { return d.Name == def.Name }) {
			out = append(out, def)
		}
	}
	return out, nil
}

// tableName turns a screen name into a SQL identifier.
func tableName(screen string) string {
	return strings.ReplaceAll(screen, "-", "_")
}
