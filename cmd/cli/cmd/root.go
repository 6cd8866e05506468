package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ctree-analysis/pkg/telemetry"
	"github.com/ctree-analysis/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger utils.Logger

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ctree",
	Short: "A component-tree image analysis tool",
	Long: `ctree builds the component tree (max-tree) of a grayscale image,
computes per-node attributes (area, contrast, volume, MSER stability,
contour statistics), and reconstructs filtered images from the tree.

Input and output images use the binary PGM format.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)

		shutdown, err := telemetry.Init(context.Background())
		if err != nil {
			logger.Warn("Failed to initialize telemetry: %v", err)
			return nil
		}
		telemetryShutdown = shutdown
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			return telemetryShutdown(context.Background())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	binName := BinName()
	rootCmd.Example = `  # Build the tree and export the node attribute table
  ` + binName + ` analyze -i input.pgm -o ./output --attributes area,contrast,volume

  # Compute MSER with stability step 5 and persist to the database
  ` + binName + ` analyze -i input.pgm --delta 5 --attributes mser --save-db

  # Keep components with area in [50, 5000] and write the reconstruction
  ` + binName + ` filter -i input.pgm --attribute area --min 50 --max 5000 -o filtered.pgm`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}
