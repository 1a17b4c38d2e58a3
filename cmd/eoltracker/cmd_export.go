package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/eoltracker/internal/export"
	"github.com/MrSnakeDoc/eoltracker/internal/view"
)

var (
	exportQuery  queryFlags
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the matching services as CSV",
	Long: `Write the matching services as CSV, with a BOM and localized headers.
Use --output - to write to stdout. Without --output the file is named
after today's date in the current directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := exportQuery.frame(cmd.Context(), view.ModeTable)
		if err != nil {
			fmt.Fprintln(os.Stderr, f.Message)
			return err
		}

		if exportOutput == "-" {
			return export.Write(cmd.OutOrStdout(), f.Catalog, f.Services, f.Language)
		}

		name := exportOutput
		if name == "" {
			name = export.Filename(time.Now())
		}
		if err := writeFile(name, func(w io.Writer) error {
			return export.Write(w, f.Catalog, f.Services, f.Language)
		}); err != nil {
			return fmt.Errorf("export to %s: %w", name, err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "✅ %d services written to %s\n", len(f.Services), name)
		return nil
	},
}

func init() {
	exportQuery.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "file to write, - for stdout")
}

func writeFile(name string, write func(io.Writer) error) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
