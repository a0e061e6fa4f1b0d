package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rendis/restfinder/internal/engine/storage"
)

func newExportCmd(opts *globalOptions) *cobra.Command {
	var dbPath, outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the results archive to CSV",
		Long: `Writes every archived result to a CSV file. The archive is filled while
searching when archive_path (or --archive) is set.`,
		Example: `  restfinder export --db ~/.config/restfinder/results.db
  restfinder export --output results.csv
  restfinder export --output -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, opts, true)
			if err != nil {
				return err
			}
			defer app.Close()

			if dbPath == "" {
				dbPath = app.cfg.ArchivePath
			}
			if dbPath == "" {
				return errors.New("no archive configured, pass --db or set archive_path")
			}
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("opening archive: %w", err)
			}

			archive, err := storage.NewArchive(dbPath)
			if err != nil {
				return err
			}
			defer archive.Close()

			rows, err := archive.LoadAll()
			if err != nil {
				return fmt.Errorf("loading archive: %w", err)
			}
			if len(rows) == 0 {
				return errors.New("no results found in archive")
			}

			if outputPath == "-" {
				return storage.WriteCSV(cmd.OutOrStdout(), rows)
			}
			if outputPath == "" {
				dir := filepath.Dir(dbPath)
				base := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))
				outputPath = filepath.Join(dir, base+".csv")
			}

			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			defer f.Close()

			if err := storage.WriteCSV(f, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d results to %s\n", len(rows), outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "archive file (default archive_path)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file, - for stdout (default next to the archive)")
	return cmd
}
