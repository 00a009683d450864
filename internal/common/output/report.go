package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/obentoo/pacnews/internal/common/alpm"
	"github.com/obentoo/pacnews/internal/newscheck"
)

// ErrUnknownFormat is returned for an unsupported report format
var ErrUnknownFormat = errors.New("unknown output format")

// Report formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// dateColumn is the width of a rendered publish date
const dateColumn = len(newscheck.DateLayout)

// TextOptions controls the text rendering
type TextOptions struct {
	// Width truncates titles so lines fit; 0 disables truncation
	Width int
	// ShowOutdated lists the outdated packages before the news
	ShowOutdated bool
}

// Render writes the report in the given format
func Render(w io.Writer, report *newscheck.Report, format string, opts TextOptions) error {
	switch format {
	case FormatText, "":
		return RenderText(w, report, opts)
	case FormatJSON:
		return RenderJSON(w, report)
	case FormatYAML:
		return RenderYAML(w, report)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// RenderJSON writes the report as indented JSON
func RenderJSON(w io.Writer, report *newscheck.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// RenderYAML writes the report as YAML
func RenderYAML(w io.Writer, report *newscheck.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

// RenderText writes a human readable report
func RenderText(w io.Writer, report *newscheck.Report, opts TextOptions) error {
	var sb strings.Builder

	sb.WriteString(Header.Sprint("Last full upgrade: "))
	sb.WriteString(report.LastSync.Format("2006-01-02 15:04:05 -0700"))
	sb.WriteString("\n")

	if opts.ShowOutdated {
		writeOutdated(&sb, report.Outdated)
	}

	if len(report.Articles) == 0 {
		sb.WriteString(Success.Sprintf("No related news published %s the last upgrade.", report.Direction))
		sb.WriteString("\n")
	} else {
		sb.WriteString(Header.Sprintf("Related news published %s the last upgrade:", report.Direction))
		sb.WriteString("\n")
		for _, a := range report.Articles {
			writeArticle(&sb, a, opts.Width)
		}
	}

	if report.Skipped > 0 {
		sb.WriteString(Dim.Sprintf("(%d of %d news rows could not be parsed)", report.Skipped, report.Rows))
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// writeOutdated lists outdated packages with names padded to a common width
func writeOutdated(sb *strings.Builder, outdated map[string]string) {
	names := alpm.Names(outdated)
	sb.WriteString(Header.Sprintf("Outdated packages (%d):", len(names)))
	sb.WriteString("\n")

	width := 0
	for _, name := range names {
		if w := runewidth.StringWidth(name); w > width {
			width = w
		}
	}
	for _, name := range names {
		sb.WriteString("  ")
		sb.WriteString(FormatUpdate(name, outdated[name], width))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writeArticle renders one article as a date/title line and an indented link
func writeArticle(sb *strings.Builder, a newscheck.Article, width int) {
	title := a.Title
	// 2 leading spaces, the date and 2 separating spaces
	if avail := width - dateColumn - 4; width > 0 && avail > 0 {
		title = runewidth.Truncate(title, avail, "…")
	}

	sb.WriteString("  ")
	sb.WriteString(Date.Sprint(a.PublishDate.Format(newscheck.DateLayout)))
	sb.WriteString("  ")
	sb.WriteString(Title.Sprint(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", dateColumn+4))
	sb.WriteString(Link.Sprint(a.Link))
	sb.WriteString("\n")
}
