package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photolog/internal/imaging"
	"github.com/kozaktomas/photolog/internal/photolog"
)

var addPhotosCmd = &cobra.Command{
	Use:   "add-photos <project.json> <file-or-folder>...",
	Short: "Append photos to a project",
	Long: `Normalize images and append one photo entry per image to the project.

Folders are scanned for image files (jpg, png, gif, webp, tiff, bmp) in
name order; use -r to descend into subfolders. Files that cannot be decoded
(unsupported, truncated or corrupt) are skipped with a warning.

Examples:
  photolog add-photos depot.json ./site-visit
  photolog add-photos depot.json -r ./photos --date 2026-05-02 --location "Hall B"
  photolog add-photos depot.json IMG_0012.jpg IMG_0013.jpg --policy fit`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAddPhotos,
}

func init() {
	rootCmd.AddCommand(addPhotosCmd)

	addPhotosCmd.Flags().BoolP("recursive", "r", false, "Scan folders recursively")
	addPhotosCmd.Flags().String("date", "", "Date for the new entries")
	addPhotosCmd.Flags().String("location", "", "Location for the new entries")
	addPolicyFlag(addPhotosCmd)
}

func runAddPhotos(cmd *cobra.Command, args []string) error {
	projectPath := args[0]
	logger := loggerFrom(cmd.Context())
	cfg := loadConfig(cmd)

	opts, err := cfg.NormalizeOptions()
	if err != nil {
		return err
	}

	project, err := photolog.LoadProjectFile(projectPath)
	if err != nil {
		return err
	}
	doc := photolog.NewDocumentFromProject(project)

	files, err := collectImages(args[1:], mustGetBool(cmd, "recursive"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no image files found")
	}

	update := photolog.EntryUpdate{}
	if cmd.Flags().Changed("date") {
		date := mustGetString(cmd, "date")
		update.Date = &date
	}
	if cmd.Flags().Changed("location") {
		location := mustGetString(cmd, "location")
		update.Location = &location
	}

	logger.Info("adding photos", "files", len(files), "policy", opts.Policy)
	bar := newProgressBar(cmd.ErrOrStderr(), len(files), "Normalizing")

	added, skipped, err := addPhotos(doc, files, opts, update, logger, func() { _ = bar.Add(1) })
	_ = bar.Finish()
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if added == 0 {
		return fmt.Errorf("none of the %d files could be added", len(files))
	}
	if err := photolog.SaveProjectFile(projectPath, doc.Snapshot()); err != nil {
		return err
	}

	logger.Info("photos added", "added", added, "skipped", skipped, "total", len(doc.Entries()))
	return nil
}

// fileError is a failure confined to one input file. The batch skips the
// file and continues.
type fileError struct {
	path string
	err  error
}

func (e *fileError) Error() string {
	return filepath.Base(e.path) + ": " + e.err.Error()
}

func (e *fileError) Unwrap() error {
	return e.err
}

// addPhotos appends one entry per file in order. Files that cannot be read
// or decoded are logged and skipped; only document errors stop the batch.
func addPhotos(doc *photolog.Document, files []string, opts imaging.Options, update photolog.EntryUpdate, logger *log.Logger, progress func()) (added, skipped int, err error) {
	for _, path := range files {
		err = addPhoto(doc, path, opts, update)
		progress()
		var fe *fileError
		switch {
		case errors.As(err, &fe):
			logger.Warn("skipping file", "file", filepath.Base(path), "err", fe.err)
			skipped++
		case err != nil:
			return added, skipped, err
		default:
			added++
		}
	}
	return added, skipped, nil
}

// addPhoto normalizes one image and appends it as a new entry.
func addPhoto(doc *photolog.Document, path string, opts imaging.Options, update photolog.EntryUpdate) error {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return &fileError{path: path, err: err}
	}
	res, err := imaging.Normalize(data, opts)
	if err != nil {
		return &fileError{path: path, err: err}
	}

	entry, err := doc.AddEntry()
	if err != nil {
		return err
	}
	if _, err := doc.UpdateEntry(entry.ID, update); err != nil {
		return err
	}
	return doc.SetImage(entry.ID, res.DataURL())
}
