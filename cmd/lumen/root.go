package main

import (
	"github.com/spf13/cobra"

	"github.com/lumenstudy/lumen/internal/api"
	"github.com/lumenstudy/lumen/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "Study guide generation from large PDF documents",
	Long: `Lumen turns large PDF documents into structured study guides using
LLM-powered analysis.

Documents are split into page-range chunks, each chunk is processed
independently with bounded concurrency and per-chunk retries, and the
results are merged into one ordered study guide with per-page summaries,
key concepts and a suggested learning path.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.lumen/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "lumen home directory (default: ~/.lumen)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
