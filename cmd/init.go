package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photolog/internal/photolog"
)

var initCmd = &cobra.Command{
	Use:   "init <project.json>",
	Short: "Create a new photo log project file",
	Long: `Create a new project file with the given header fields and no photos.

The header can be completed later; export refuses to run until every
header field is filled in.`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("proponent", "", "Proponent (client) name")
	initCmd.Flags().String("name", "", "Project name")
	initCmd.Flags().String("location", "", "Project location")
	initCmd.Flags().String("date", "", "Report date")
	initCmd.Flags().String("number", "", "Project number")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	logger := loggerFrom(cmd.Context())

	if !mustGetBool(cmd, "force") {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
	}

	project := &photolog.Project{
		Header: photolog.HeaderRecord{
			Proponent:     mustGetString(cmd, "proponent"),
			ProjectName:   mustGetString(cmd, "name"),
			Location:      mustGetString(cmd, "location"),
			Date:          mustGetString(cmd, "date"),
			ProjectNumber: mustGetString(cmd, "number"),
		},
		Photos: photolog.EntryList{},
	}
	if err := photolog.SaveProjectFile(path, project); err != nil {
		return err
	}

	logger.Info("project created", "path", path)
	if missing := photolog.Validate(project.Header, project.Photos); !missing.Empty() {
		logger.Warn("header incomplete", "missing", missing.Header.Sorted())
	}
	return nil
}
