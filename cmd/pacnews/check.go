package main

import (
	"fmt"

	"github.com/obentoo/pacnews/internal/common/config"
	"github.com/obentoo/pacnews/internal/common/logger"
	"github.com/obentoo/pacnews/internal/common/output"
	"github.com/obentoo/pacnews/internal/common/pacman"
	"github.com/obentoo/pacnews/internal/newscheck"
	"github.com/spf13/cobra"
)

var (
	// checkEngine selects css or xpath row extraction
	checkEngine string
	// checkDirection selects articles published before or since the last upgrade
	checkDirection string
	// checkFormat is the report format
	checkFormat string
	// checkMarker overrides the full upgrade log marker
	checkMarker string
	// checkNewsURL overrides the news index address
	checkNewsURL string
	// checkNoRefresh reads the system sync databases as they are
	checkNoRefresh bool
	// checkShowOutdated lists outdated packages in the text report
	checkShowOutdated bool
	// checkWidth truncates text report titles to fit this many columns
	checkWidth int
)

// newSource creates the package state provider (replaceable for testing)
var newSource = func(rc pacman.RunnerConfig) pacman.PackageSource {
	return pacman.NewRunner(rc)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "List news about packages with pending updates",
	Long: `List archlinux.org news whose title mentions an outdated package.

By default only articles published before the last full system upgrade
("pacman -Syu" in pacman.log) are listed. Use --direction since to list the
articles published after it instead.

Examples:
  pacnews check                     Check using the configured settings
  pacnews check --no-refresh        Use the sync databases as they are
  pacnews check --direction since   News published since the last upgrade
  pacnews check --format json       Machine readable report`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	addCheckFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

// addCheckFlags registers the check flags on cmd
func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&checkEngine, "engine", "", "News row extraction engine: css or xpath")
	cmd.Flags().StringVar(&checkDirection, "direction", "", "Publish date filter: before or since the last upgrade")
	cmd.Flags().StringVarP(&checkFormat, "format", "f", "", "Report format: text, json or yaml")
	cmd.Flags().StringVar(&checkMarker, "marker", "", "Log text identifying a full system upgrade")
	cmd.Flags().StringVar(&checkNewsURL, "news-url", "", "News index URL")
	cmd.Flags().BoolVar(&checkNoRefresh, "no-refresh", false, "Do not sync the repository databases first")
	cmd.Flags().BoolVar(&checkShowOutdated, "show-outdated", false, "List outdated packages in the text report")
	cmd.Flags().IntVar(&checkWidth, "width", 0, "Truncate news titles to fit this many columns (0: no limit)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	applyCheckFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	checker, err := buildChecker(cfg)
	if err != nil {
		return err
	}

	report, err := checker.Run(cmd.Context())
	if err != nil {
		return err
	}
	logger.Debug("%d news rows, %d skipped, %d related", report.Rows, report.Skipped, len(report.Articles))

	return output.Render(cmd.OutOrStdout(), report, cfg.Output.Format, output.TextOptions{
		Width:        cfg.Output.Width,
		ShowOutdated: checkShowOutdated,
	})
}

// loadConfig reads the --config file or the first existing default location
func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.Load()
	}
	logger.Debug("Using config %s", configFile)
	return config.LoadFrom(configFile)
}

// applyCheckFlags overrides config values with the flags set on the command line
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.News.Engine = checkEngine
	}
	if flags.Changed("direction") {
		cfg.Match.Direction = checkDirection
	}
	if flags.Changed("format") {
		cfg.Output.Format = checkFormat
	}
	if flags.Changed("marker") {
		cfg.Match.Marker = checkMarker
	}
	if flags.Changed("news-url") {
		cfg.News.URL = checkNewsURL
	}
	if flags.Changed("no-refresh") {
		cfg.Pacman.Refresh = !checkNoRefresh
	}
	if flags.Changed("width") {
		cfg.Output.Width = checkWidth
	}
}

// buildChecker wires the pacman runner, HTTP feed and extractor from a validated config
func buildChecker(cfg *config.Config) (*newscheck.Checker, error) {
	rc, err := cfg.RunnerConfig()
	if err != nil {
		return nil, err
	}
	logger.Debug("pacman: config %s, dbpath %s, log %s, refresh %t", rc.ConfigFile, rc.DBPath, rc.LogFile, rc.Refresh)

	timeout, err := cfg.News.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	retry := newscheck.DefaultRetryConfig()
	retry.MaxRetries = cfg.News.Retries
	retry.Timeout = timeout

	client := newscheck.NewRetryableHTTPClientWithConfig(retry)
	if cfg.News.UserAgent != "" {
		client.SetDefaultHeaders(map[string]string{"User-Agent": cfg.News.UserAgent})
	}

	extractor, err := newscheck.NewExtractor(cfg.News.Engine)
	if err != nil {
		return nil, err
	}
	direction, err := newscheck.ParseDirection(cfg.Match.Direction)
	if err != nil {
		return nil, err
	}

	return newscheck.NewChecker(newSource(rc),
		newscheck.WithFeed(newscheck.NewHTTPFeed(cfg.News.URL, client)),
		newscheck.WithExtractor(extractor),
		newscheck.WithDirection(direction),
		newscheck.WithMarker(cfg.Match.Marker),
		newscheck.WithBaseURL(cfg.News.BaseURL),
	)
}
