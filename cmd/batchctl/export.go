package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"classroom-backend/internal/batch"
	"classroom-backend/internal/results"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Format a result file as export text, clipboard text or .docx",
	RunE:  runExport,
}

var (
	exportFile   string
	exportOut    string
	exportFormat string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "", "Path to result JSON written by run (default stdin)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "export", "export, clipboard or docx")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	var in resultFile
	if err := readJSON(exportFile, &in); err != nil {
		return err
	}
	if len(in.Drafts) != 0 && len(in.Drafts) != len(in.Outcomes) {
		return batch.ErrInvalidDrafts
	}

	now := time.Now()
	switch exportFormat {
	case "export", "clipboard":
		text := results.Format(results.ParseStyle(exportFormat), in.settings(), in.Outcomes, in.Drafts, now)
		return writeOutput(exportOut, []byte(text))
	case "docx":
		if exportOut == "" || exportOut == "-" {
			return fmt.Errorf("--out is required for docx")
		}
		content := results.BuildExportText(in.settings(), in.Outcomes, in.Drafts, now)
		data, err := results.RenderDocx(results.Title(in.Kind), results.Category(in.Kind), content)
		if err != nil {
			return err
		}
		return writeOutput(exportOut, data)
	default:
		return fmt.Errorf("unknown format %q", exportFormat)
	}
}
