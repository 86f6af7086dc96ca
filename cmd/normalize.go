package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photolog/internal/imaging"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file-or-folder>...",
	Short: "Normalize images to the 4:3 log frame",
	Long: `Run images through the same normalization used when photos are added
to a project and write the results as JPEG files.

Examples:
  photolog normalize IMG_0012.jpg --out ./normalized
  photolog normalize ./site-visit --policy fit --out ./normalized`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().String("out", "normalized", "Output folder")
	normalizeCmd.Flags().BoolP("recursive", "r", false, "Scan folders recursively")
	addPolicyFlag(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	logger := loggerFrom(cmd.Context())
	cfg := loadConfig(cmd)

	opts, err := cfg.NormalizeOptions()
	if err != nil {
		return err
	}
	files, err := collectImages(args, mustGetBool(cmd, "recursive"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no image files found")
	}

	outDir := mustGetString(cmd, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", outDir, err)
	}

	bar := newProgressBar(cmd.ErrOrStderr(), len(files), "Normalizing")
	modes := map[imaging.Mode]int{}
	var errs []error
	for _, path := range files {
		mode, err := normalizeFile(path, outDir, opts)
		_ = bar.Add(1)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		modes[mode]++
	}
	_ = bar.Finish()
	fmt.Fprintln(cmd.ErrOrStderr())

	for _, err := range errs {
		logger.Warn("not normalized", "err", err)
	}
	logger.Info("normalization complete",
		"cropped", modes[imaging.ModeCropped],
		"fitted", modes[imaging.ModeFitted],
		"passthrough", modes[imaging.ModePassThrough],
		"failed", len(errs),
		"out", outDir,
	)
	if len(errs) == len(files) {
		return errors.Join(errs...)
	}
	return nil
}

func normalizeFile(path, outDir string, opts imaging.Options) (imaging.Mode, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	res, err := imaging.Normalize(data, opts)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".jpg"
	if err := os.WriteFile(filepath.Join(outDir, name), res.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return res.Mode, nil
}
