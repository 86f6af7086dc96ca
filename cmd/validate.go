package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photolog/internal/photolog"
)

var validateCmd = &cobra.Command{
	Use:   "validate <project.json>",
	Short: "List the fields that block an export",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	project, err := photolog.LoadProjectFile(args[0])
	if err != nil {
		return err
	}

	result := photolog.Validate(project.Header, project.Photos)
	out := cmd.OutOrStdout()
	if result.Empty() {
		fmt.Fprintf(out, "OK: header complete, %d photo(s) complete\n", len(project.Photos))
		return nil
	}

	writeValidation(out, project, result)
	return result.Err()
}

func writeValidation(out io.Writer, project *photolog.Project, result photolog.ValidationErrors) {
	if len(result.Header) > 0 {
		fmt.Fprintf(out, "Header: missing %s\n", joinFields(result.Header))
	}
	for _, e := range project.Photos {
		if fields, ok := result.Photos[e.ID]; ok {
			fmt.Fprintf(out, "Photo %s (id %d): missing %s\n", e.PhotoNumber(), e.ID, joinFields(fields))
		}
	}
}

func joinFields(fields photolog.FieldSet) string {
	names := make([]string, 0, len(fields))
	for _, f := range fields.Sorted() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
