package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/internal/core/config"
)

var (
	dbPath      string
	csvPath     string
	datasetID   int64
	verbose     bool
	versionInfo string

	logger *logrus.Logger
	cfg    *config.Config
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "locscope",
	Short: "Scrub through the history of a codebase, line by line",
	Long: `locscope - explore a loc.csv line-change table over time

Import the table once, then move a time cutoff across the commit history and
see which commits, files and languages existed at that moment.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.WarnLevel)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			logger.WithError(err).Warn("Failed to load config, using defaults")
		}
		if cfg == nil {
			cfg, _ = config.LoadFrom("")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to TUI if no subcommand specified
		return tuiCmd.RunE(cmd, args)
	},
}

func init() {
	defaultDB := filepath.Join(config.Dir(), "locscope.db")

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Database path")
	rootCmd.PersistentFlags().StringVar(&csvPath, "csv", "", "Read this loc.csv directly instead of the database")
	rootCmd.PersistentFlags().Int64Var(&datasetID, "dataset", 0, "Dataset id to use (default: latest import)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}
