package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photolog/internal/render"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pdf>",
	Short: "Show page count and page sizes of an exported PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := render.Inspect(f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pages: %d\n", info.PageCount)
	for i, p := range info.Pages {
		fmt.Fprintf(out, "  %3d  %.1f x %.1f mm\n", i+1, p.WidthMM, p.HeightMM)
	}
	return nil
}
