package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "photolog",
	Short: "Build photographic logs and daily field reports",
	Long: `Photolog keeps a project header and an ordered list of site photos,
each with a date, location and description, and exports them as a
paginated PDF photo log.

Projects are plain JSON files. The serve command exposes the same
editing operations over HTTP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env file is optional, don't fail if not found
		_ = godotenv.Load()

		level := log.InfoLevel
		if verbose {
			level = log.DebugLevel
		}
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		})
		log.SetDefault(logger)
		cmd.SetContext(withLogger(cmd.Context(), logger))
	},
}

// Root returns the root command with every subcommand registered.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFrom returns the command logger, or log.Default() outside a command run.
func loggerFrom(ctx context.Context) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
			return l
		}
	}
	return log.Default()
}
