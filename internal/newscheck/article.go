// Package newscheck provides news index parsing for the news check.
package newscheck

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the site that relative news links are resolved against
const DefaultBaseURL = "https://archlinux.org"

// DateLayout is the publish date format of the news index
const DateLayout = "2006-01-02"

// Error variables for row parsing errors
var (
	// ErrRowTooShort is returned when a row has fewer than two cells
	ErrRowTooShort = errors.New("row too short")
	// ErrInvalidDate is returned when the first cell is not a YYYY-MM-DD date
	ErrInvalidDate = errors.New("invalid publish date")
	// ErrMissingLink is returned when the second cell contains no link element
	ErrMissingLink = errors.New("title cell has no link")
	// ErrMissingHref is returned when the title link has no href attribute
	ErrMissingHref = errors.New("title link has no href")
	// ErrInvalidLink is returned when the href cannot be parsed as a URL
	ErrInvalidLink = errors.New("invalid title link")
)

// Article is a single entry of the news index.
type Article struct {
	// PublishDate is the publish day at midnight UTC
	PublishDate time.Time `json:"date" yaml:"date"`
	// Title is the link text of the entry
	Title string `json:"title" yaml:"title"`
	// Link is the absolute URL of the article
	Link string `json:"link" yaml:"link"`
}

// Row is one table row of the news index, independent of the HTML engine used
// to extract it.
type Row struct {
	Cells []Cell
}

// Cell is a table cell: its text nodes in document order and the first link
// element it contains, if any.
type Cell struct {
	Text []string
	Link *Link
}

// Link is an anchor element found inside a cell
type Link struct {
	// Text holds the text nodes of the anchor in document order
	Text []string
	// Href is the raw href attribute value
	Href string
	// HasHref is false when the anchor carries no href attribute at all
	HasHref bool
}

// ParseResult is the outcome of parsing a single row: either an Article or
// the error that made the row unusable.
type ParseResult struct {
	// Index is the position of the row in the index table
	Index   int
	Article Article
	Err     error
}

// OK reports whether the row parsed into an article
func (r ParseResult) OK() bool {
	return r.Err == nil
}

// ParseRow turns a row into an Article.
// The first cell holds the publish date, the second the title link. The link
// is resolved against base.
func ParseRow(row Row, base *url.URL) (Article, error) {
	if len(row.Cells) < 2 {
		return Article{}, fmt.Errorf("%w: %d cell(s)", ErrRowTooShort, len(row.Cells))
	}

	dateText := strings.TrimSpace(strings.Join(row.Cells[0].Text, ""))
	date, err := time.Parse(DateLayout, dateText)
	if err != nil {
		return Article{}, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}

	link := row.Cells[1].Link
	if link == nil {
		return Article{}, ErrMissingLink
	}
	if !link.HasHref {
		return Article{}, ErrMissingHref
	}

	ref, err := url.Parse(strings.TrimSpace(link.Href))
	if err != nil {
		return Article{}, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}

	return Article{
		PublishDate: date.UTC(),
		Title:       joinTokens(link.Text),
		Link:        base.ResolveReference(ref).String(),
	}, nil
}

// ParseRows parses every row, keeping failures as explicit results
func ParseRows(rows []Row, base *url.URL) []ParseResult {
	results := make([]ParseResult, 0, len(rows))
	for i, row := range rows {
		article, err := ParseRow(row, base)
		results = append(results, ParseResult{
			Index:   i,
			Article: article,
			Err:     err,
		})
	}
	return results
}

// joinTokens joins the whitespace-separated tokens of text nodes with single spaces
func joinTokens(texts []string) string {
	var tokens []string
	for _, t := range texts {
		tokens = append(tokens, strings.Fields(t)...)
	}
	return strings.Join(tokens, " ")
}

// MustParseBaseURL parses a base URL, panicking on malformed input.
// Intended for constants such as DefaultBaseURL.
func MustParseBaseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("invalid base URL %q: %v", raw, err))
	}
	return u
}
