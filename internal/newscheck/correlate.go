package newscheck

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Direction selects which side of the cutoff an article must be published on.
type Direction int

const (
	// PublishedBefore keeps articles published strictly before the last upgrade
	PublishedBefore Direction = iota
	// PublishedSince keeps articles published at or after the last upgrade
	PublishedSince
)

// ErrInvalidDirection is returned when a direction name is not recognised
var ErrInvalidDirection = errors.New("invalid direction: must be 'before' or 'since'")

var directionNames = map[Direction]string{
	PublishedBefore: "before",
	PublishedSince:  "since",
}

// String returns the configuration name of the direction
func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// MarshalText implements encoding.TextMarshaler
func (d Direction) MarshalText() ([]byte, error) {
	if _, ok := directionNames[d]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection parses "before" or "since". An empty name means PublishedBefore.
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "before", "":
		return PublishedBefore, nil
	case "since":
		return PublishedSince, nil
	default:
		return PublishedBefore, fmt.Errorf("%w: got %q", ErrInvalidDirection, name)
	}
}

// Keep reports whether a publish date passes the cutoff in this direction
func (d Direction) Keep(published, cutoff time.Time) bool {
	if d == PublishedSince {
		return !published.Before(cutoff)
	}
	return published.Before(cutoff)
}

// Correlator joins parsed news rows against outdated package names.
type Correlator struct {
	// Direction is the publish date policy relative to the cutoff
	Direction Direction
	// OnSkip, when set, is called for every row that failed to parse
	OnSkip func(ParseResult)
}

// Correlate filters parse results in three passes over the feed order:
// failed rows are dropped, then articles outside the date policy, then
// articles whose lowercase title contains none of the lowercase names.
// The result is never nil; an empty slice means no related news.
func (c *Correlator) Correlate(results []ParseResult, cutoff time.Time, names []string) []Article {
	lowered := make([]string, 0, len(names))
	for _, name := range names {
		lowered = append(lowered, strings.ToLower(name))
	}

	articles := make([]Article, 0)
	for _, r := range results {
		if !r.OK() {
			if c.OnSkip != nil {
				c.OnSkip(r)
			}
			continue
		}
		if !c.Direction.Keep(r.Article.PublishDate, cutoff) {
			continue
		}
		if !titleMentions(r.Article.Title, lowered) {
			continue
		}
		articles = append(articles, r.Article)
	}

	return articles
}

// Correlate applies the default PublishedBefore policy
func Correlate(results []ParseResult, cutoff time.Time, names []string) []Article {
	c := &Correlator{Direction: PublishedBefore}
	return c.Correlate(results, cutoff, names)
}

// MatchesAny reports whether title contains any of the names, ignoring case.
// Matching is by substring, so "gtk" matches a title about "gtk4".
func MatchesAny(title string, names []string) bool {
	lowered := make([]string, len(names))
	for i, name := range names {
		lowered[i] = strings.ToLower(name)
	}
	return titleMentions(title, lowered)
}

// titleMentions checks a title against names that are already lowercase
func titleMentions(title string, lowered []string) bool {
	t := strings.ToLower(title)
	for _, name := range lowered {
		if strings.Contains(t, name) {
			return true
		}
	}
	return false
}
