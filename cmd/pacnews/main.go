package main

import (
	"os"

	"github.com/obentoo/pacnews/internal/common/logger"
	"github.com/obentoo/pacnews/internal/common/output"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	quiet      bool
	noColor    bool
	logToFile  bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "pacnews",
	Short: "Arch Linux news for your pending updates",
	Long: `Show archlinux.org news that mention packages with pending updates.

pacnews compares installed packages with the repository databases, finds the
last full system upgrade in pacman.log and lists the news articles about the
outdated packages. Without a subcommand it runs "pacnews check".`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Configure logging based on flags
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor || !output.IsTerminal() {
			output.NoColor()
		}
		if logToFile {
			enableFileLogging()
		}
	},
	Args: cobra.NoArgs,
	RunE: runCheck,
	// Errors are reported once by main
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&logToFile, "log", false, "Also write log messages to $XDG_STATE_HOME/pacnews/logs/pacnews.log")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: $XDG_CONFIG_HOME/pacnews/config.yaml)")

	addCheckFlags(rootCmd)
}

// enableFileLogging turns on the log file, warning when it cannot be opened
func enableFileLogging() {
	home, err := os.UserHomeDir()
	if err != nil {
		logger.Warn("file logging disabled: %v", err)
		return
	}
	dir := logger.LogDir(home, os.Getenv("XDG_STATE_HOME"))
	if err := logger.Default().EnableFileLogging(dir); err != nil {
		logger.Warn("file logging disabled: %v", err)
	}
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error("%v", err)
	}
	logger.Default().Close()
	if err != nil {
		os.Exit(1)
	}
}
