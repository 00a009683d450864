package newscheck

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Engines available for row extraction
const (
	EngineCSS   = "css"
	EngineXPath = "xpath"
)

// Default selectors for the news index table
const (
	DefaultRowSelector = "tbody > tr"
	DefaultRowXPath    = "//tbody/tr"
)

// ErrUnknownEngine is returned when an extraction engine name is not recognised
var ErrUnknownEngine = errors.New("unknown extraction engine: must be 'css' or 'xpath'")

// RowExtractor pulls the table rows out of a news index document
type RowExtractor interface {
	Extract(content []byte) ([]Row, error)
}

// NewExtractor returns the extractor for the named engine
func NewExtractor(engine string) (RowExtractor, error) {
	switch engine {
	case EngineCSS, "":
		return &CSSExtractor{Selector: DefaultRowSelector}, nil
	case EngineXPath:
		return &XPathExtractor{Expr: DefaultRowXPath}, nil
	default:
		return nil, fmt.Errorf("%w: got %q", ErrUnknownEngine, engine)
	}
}

// CSSExtractor extracts rows using a CSS selector (goquery).
type CSSExtractor struct {
	// Selector matches the row elements
	Selector string
}

// Extract returns every row matching the selector, in document order
func (e *CSSExtractor) Extract(content []byte) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	selector := e.Selector
	if selector == "" {
		selector = DefaultRowSelector
	}

	var rows []Row
	doc.Find(selector).Each(func(_ int, tr *goquery.Selection) {
		var row Row
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cell := Cell{Text: textNodes(td.Get(0))}
			if a := td.Find("a").First(); a.Length() > 0 {
				cell.Link = newLink(a.Get(0))
			}
			row.Cells = append(row.Cells, cell)
		})
		rows = append(rows, row)
	})

	return rows, nil
}

// XPathExtractor extracts rows using an XPath expression (htmlquery).
type XPathExtractor struct {
	// Expr matches the row elements
	Expr string
}

// Extract returns every row matching the expression, in document order
func (e *XPathExtractor) Extract(content []byte) ([]Row, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	expr := e.Expr
	if expr == "" {
		expr = DefaultRowXPath
	}

	trs, err := htmlquery.QueryAll(doc, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath expression: %w", err)
	}

	rows := make([]Row, 0, len(trs))
	for _, tr := range trs {
		var row Row
		for _, td := range htmlquery.Find(tr, ".//td") {
			cell := Cell{Text: textNodes(td)}
			if a := htmlquery.FindOne(td, ".//a"); a != nil {
				cell.Link = newLink(a)
			}
			row.Cells = append(row.Cells, cell)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// newLink builds a Link from an anchor node
func newLink(a *html.Node) *Link {
	href, ok := attr(a, "href")
	return &Link{
		Text:    textNodes(a),
		Href:    href,
		HasHref: ok,
	}
}

// textNodes collects the text node contents below n in document order
func textNodes(n *html.Node) []string {
	var texts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			texts = append(texts, node.Data)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return texts
}

// attr returns the value of an attribute and whether it is present
func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
