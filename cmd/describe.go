package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photolog/internal/describe"
	"github.com/kozaktomas/photolog/internal/imaging"
	"github.com/kozaktomas/photolog/internal/photolog"
)

var describeCmd = &cobra.Command{
	Use:   "describe <project.json>",
	Short: "Draft photo descriptions with a vision model",
	Long: `Ask a vision model to draft descriptions for photos that have an image.

Drafts are printed; with --apply they are written into the project. Entries
that already have a description are skipped unless --overwrite is given, in
which case the existing text is passed to the model as notes.

The provider is picked from the environment (OPENAI_TOKEN, GEMINI_API_KEY,
OLLAMA_URL) unless --provider names one.

Examples:
  photolog describe depot.json
  photolog describe depot.json --photo 3 --provider ollama
  photolog describe depot.json --apply`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().String("provider", "", "Provider: openai, gemini or ollama")
	describeCmd.Flags().Int64("photo", 0, "Only describe the entry with this id")
	describeCmd.Flags().Bool("apply", false, "Write the drafts into the project")
	describeCmd.Flags().Bool("overwrite", false, "Also redo entries that already have a description")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFrom(ctx)
	cfg := loadConfig(cmd)

	provider, err := describe.New(ctx, mustGetString(cmd, "provider"), cfg)
	if err != nil {
		return err
	}

	project, err := photolog.LoadProjectFile(args[0])
	if err != nil {
		return err
	}
	doc := photolog.NewDocumentFromProject(project)

	photoID := mustGetInt64(cmd, "photo")
	apply := mustGetBool(cmd, "apply")
	overwrite := mustGetBool(cmd, "overwrite")

	targets := describeTargets(doc.Entries(), photoID, overwrite)
	if photoID != 0 && len(targets) == 0 {
		return fmt.Errorf("photo %d not found or has no image", photoID)
	}
	logger.Info("describing photos", "model", provider.Name(), "photos", len(targets))

	out := cmd.OutOrStdout()
	var applied int
	for _, e := range targets {
		_, data, err := imaging.DecodeDataURL(e.ImageURL)
		if err != nil {
			logger.Warn("skipping photo", "photo", e.PhotoNumber(), "err", err)
			continue
		}
		d, err := provider.Describe(ctx, data, &describe.PhotoContext{
			ProjectName: doc.Header().ProjectName,
			Date:        e.Date,
			Location:    e.Location,
			Notes:       e.Description,
		})
		if err != nil {
			logger.Error("describe failed", "photo", e.PhotoNumber(), "err", err)
			continue
		}

		fmt.Fprintf(out, "Photo %s: %s\n", e.PhotoNumber(), d.Description)
		if apply {
			if _, err := doc.UpdateEntry(e.ID, photolog.EntryUpdate{Description: &d.Description}); err != nil {
				return err
			}
			applied++
		}
	}

	if applied > 0 {
		if err := photolog.SaveProjectFile(args[0], doc.Snapshot()); err != nil {
			return err
		}
	}

	usage := provider.GetUsage()
	logger.Info("done", "applied", applied, "input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens, "cost", fmt.Sprintf("$%.4f", usage.TotalCost))
	return nil
}

// describeTargets picks the entries to send to the model. A non-zero id
// selects that entry regardless of its description.
func describeTargets(list photolog.EntryList, id int64, overwrite bool) photolog.EntryList {
	var out photolog.EntryList
	for _, e := range list {
		if !e.HasImage() {
			continue
		}
		if id != 0 {
			if e.ID == id {
				out = append(out, e)
			}
			continue
		}
		if e.Description != "" && !overwrite {
			continue
		}
		out = append(out, e)
	}
	return out
}
