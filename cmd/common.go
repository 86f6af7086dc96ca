package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photolog/internal/config"
	"github.com/kozaktomas/photolog/internal/export"
)

// isImageFile checks if a file has an extension the normalizer can decode
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".tiff", ".tif", ".bmp":
		return true
	}
	return false
}

// collectImages expands the given paths into image files. Directories are
// listed, or walked when recursive; plain files are taken as given.
// Directory contents are returned in lexical order.
func collectImages(paths []string, recursive bool) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		if recursive {
			err := filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isImageFile(d.Name()) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("cannot walk folder %s: %w", p, err)
			}
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read folder %s: %w", p, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && isImageFile(entry.Name()) {
				files = append(files, filepath.Join(p, entry.Name()))
			}
		}
	}
	return files, nil
}

func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// addLayoutFlags registers the flags that override the layout settings.
func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().String("page-size", "", "Page size preset (a4, letter); defaults to PHOTOLOG_PAGE_SIZE")
	cmd.Flags().String("layout", "", "Layout strategy (measured, grouped); defaults to PHOTOLOG_LAYOUT")
	cmd.Flags().Int("group-size", 0, "Entries per page for the grouped layout")
	cmd.Flags().Float64("text-ratio", 0, "Share of the content width used by the text column")
}

// addPolicyFlag registers the image policy override.
func addPolicyFlag(cmd *cobra.Command) {
	cmd.Flags().String("policy", "", "Image policy (crop, fit); defaults to PHOTOLOG_IMAGE_POLICY")
}

// loadConfig loads the environment config and applies any flags the
// command registered and the user set.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	flags := cmd.Flags()
	if flags.Changed("page-size") {
		cfg.Layout.PageSize = strings.ToLower(mustGetString(cmd, "page-size"))
	}
	if flags.Changed("layout") {
		cfg.Layout.Strategy = mustGetString(cmd, "layout")
	}
	if flags.Changed("group-size") {
		cfg.Layout.GroupSize = mustGetInt(cmd, "group-size")
	}
	if flags.Changed("text-ratio") {
		cfg.Layout.TextRatio = mustGetFloat64(cmd, "text-ratio")
	}
	if flags.Changed("policy") {
		cfg.Image.Policy = mustGetString(cmd, "policy")
	}
	return cfg
}

// newExporter builds an exporter from the layout and brand settings.
func newExporter(cmd *cobra.Command, cfg *config.Config) (*export.Exporter, error) {
	lc, err := cfg.PageLayout()
	if err != nil {
		return nil, err
	}
	st, err := cfg.Style()
	if err != nil {
		return nil, err
	}
	return export.New(lc, st, loggerFrom(cmd.Context())), nil
}
