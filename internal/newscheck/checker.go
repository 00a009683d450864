package newscheck

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/obentoo/pacnews/internal/common/alpm"
	"github.com/obentoo/pacnews/internal/common/logger"
	"github.com/obentoo/pacnews/internal/common/pacman"
)

// ErrNoPackageSource is returned when a checker is created without a package source
var ErrNoPackageSource = errors.New("package source is required")

// Report is the outcome of a news check run.
type Report struct {
	// Outdated maps every outdated package to its repository version
	Outdated map[string]string `json:"outdated" yaml:"outdated"`
	// LastSync is the time of the last full system upgrade
	LastSync time.Time `json:"last_sync" yaml:"last_sync"`
	// Direction is the publish date policy that was applied
	Direction Direction `json:"direction" yaml:"direction"`
	// Articles are the related news entries in index order
	Articles []Article `json:"articles" yaml:"articles"`
	// Rows is the number of rows found in the news index
	Rows int `json:"rows" yaml:"rows"`
	// Skipped is the number of rows that could not be parsed
	Skipped int `json:"skipped" yaml:"skipped"`
}

// Checker runs the news check: outdated packages, last upgrade, news index
// and their correlation.
type Checker struct {
	// source provides installed and repository package state
	source pacman.PackageSource
	// feed retrieves the news index
	feed FeedFetcher
	// extractor pulls rows out of the news index
	extractor RowExtractor
	// direction is the publish date policy
	direction Direction
	// marker identifies full upgrade lines in the log
	marker string
	// baseURL resolves relative article links
	baseURL *url.URL
	// readLog reads the pacman log (replaceable for testing)
	readLog func(path string) ([]string, error)
}

// CheckerOption is a functional option for configuring Checker
type CheckerOption func(*Checker) error

// WithFeed sets the news index fetcher
func WithFeed(feed FeedFetcher) CheckerOption {
	return func(c *Checker) error {
		c.feed = feed
		return nil
	}
}

// WithExtractor sets the row extractor
func WithExtractor(extractor RowExtractor) CheckerOption {
	return func(c *Checker) error {
		c.extractor = extractor
		return nil
	}
}

// WithDirection sets the publish date policy
func WithDirection(direction Direction) CheckerOption {
	return func(c *Checker) error {
		c.direction = direction
		return nil
	}
}

// WithMarker sets the text identifying full upgrade log lines
func WithMarker(marker string) CheckerOption {
	return func(c *Checker) error {
		if marker != "" {
			c.marker = marker
		}
		return nil
	}
}

// WithBaseURL sets the URL that article links are resolved against
func WithBaseURL(raw string) CheckerOption {
	return func(c *Checker) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid base URL %q: %w", raw, err)
		}
		if !u.IsAbs() {
			return fmt.Errorf("base URL %q must be absolute", raw)
		}
		c.baseURL = u
		return nil
	}
}

// WithLogReader sets the function used to read the pacman log
func WithLogReader(fn func(path string) ([]string, error)) CheckerOption {
	return func(c *Checker) error {
		c.readLog = fn
		return nil
	}
}

// NewChecker creates a checker reading package state from source.
// Unset collaborators default to the archlinux.org news index over HTTP,
// CSS row extraction and the PublishedBefore policy.
func NewChecker(source pacman.PackageSource, opts ...CheckerOption) (*Checker, error) {
	if source == nil {
		return nil, ErrNoPackageSource
	}

	checker := &Checker{
		source:    source,
		direction: PublishedBefore,
		marker:    DefaultMarker,
		baseURL:   MustParseBaseURL(DefaultBaseURL),
		readLog:   ReadLogLines,
	}

	for _, opt := range opts {
		if err := opt(checker); err != nil {
			return nil, fmt.Errorf("failed to apply checker option: %w", err)
		}
	}

	if checker.feed == nil {
		checker.feed = NewHTTPFeed(DefaultNewsURL, nil)
	}
	if checker.extractor == nil {
		checker.extractor = &CSSExtractor{Selector: DefaultRowSelector}
	}

	return checker, nil
}

// Run performs the check. Any failure to read package state, the log or the
// news index aborts the run; unparseable news rows are skipped.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	outdated, err := c.outdated(ctx)
	if err != nil {
		return nil, err
	}

	logFile := c.source.LogFile()
	lines, err := c.readLog(logFile)
	if err != nil {
		return nil, fmt.Errorf("reading pacman log %s: %w", logFile, err)
	}

	lastSync, err := FindLastSync(lines, c.marker)
	if err != nil {
		return nil, err
	}
	logger.Debug("Last full upgrade: %s", lastSync.Format(time.RFC3339))

	content, err := c.feed.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := c.extractor.Extract(content)
	if err != nil {
		return nil, fmt.Errorf("extracting news rows: %w", err)
	}
	results := ParseRows(rows, c.baseURL)

	report := &Report{
		Outdated:  outdated,
		LastSync:  lastSync,
		Direction: c.direction,
		Rows:      len(rows),
	}

	correlator := &Correlator{
		Direction: c.direction,
		OnSkip: func(r ParseResult) {
			report.Skipped++
			logger.Debug("Skipping news row %d: %v", r.Index, r.Err)
		},
	}
	report.Articles = correlator.Correlate(results, lastSync, alpm.Names(outdated))

	return report, nil
}

// outdated queries both package views and computes the outdated set
func (c *Checker) outdated(ctx context.Context) (map[string]string, error) {
	installed, err := c.source.Installed(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying installed packages: %w", err)
	}

	remote, err := c.source.Remote(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying repository packages: %w", err)
	}

	outdated := alpm.Outdated(installed, remote)
	logger.Debug("%d installed, %d in repositories, %d outdated", len(installed), len(remote), len(outdated))

	return outdated, nil
}
