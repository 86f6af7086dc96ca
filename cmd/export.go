package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photolog/internal/photolog"
)

var exportCmd = &cobra.Command{
	Use:   "export <project.json>",
	Short: "Render a project to a PDF photo log",
	Long: `Validate, paginate and render the project to PDF.

Without -o the file is written to the current directory under the name
derived from the header (<project>_<number>_<location>_Photolog.pdf). When -o names a
directory the derived name is used inside it.

Examples:
  photolog export depot.json
  photolog export depot.json -o reports/ --page-size letter
  photolog export depot.json --layout grouped --group-size 3`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "Output file or directory")
	addLayoutFlags(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := loggerFrom(cmd.Context())
	cfg := loadConfig(cmd)

	exporter, err := newExporter(cmd, cfg)
	if err != nil {
		return err
	}
	project, err := photolog.LoadProjectFile(args[0])
	if err != nil {
		return err
	}

	result, err := exporter.Render(cmd.Context(), project)
	if err != nil {
		var verr *photolog.ValidationError
		if errors.As(err, &verr) {
			writeValidation(cmd.ErrOrStderr(), project, verr.Errors)
		}
		return err
	}

	path, err := result.WriteFile(mustGetString(cmd, "output"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s (%d page(s), %d photo(s), %d bytes)\n",
		path, result.Report.PageCount, result.Report.PhotoCount, len(result.PDF))
	for _, page := range result.Report.Pages {
		numbers := make([]string, 0, len(page.Photos))
		for _, p := range page.Photos {
			numbers = append(numbers, p.PhotoNumber)
		}
		logger.Debug("page", "number", page.PageNumber, "photos", numbers)
	}
	for _, w := range result.Report.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	return nil
}
