package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/obentoo/pacnews/internal/newscheck"
)

func sampleReport() *newscheck.Report {
	return &newscheck.Report{
		Outdated: map[string]string{
			"linux":         "6.8.1.arch1-1",
			"gimp":          "2.10.36-1",
			"python-pillow": "10.2.0-1",
		},
		LastSync:  time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC),
		Direction: newscheck.PublishedBefore,
		Articles: []newscheck.Article{
			{
				PublishDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				Title:       "Linux 6.7 release",
				Link:        "https://archlinux.org/news/linux-67-release/",
			},
		},
		Rows:    5,
		Skipped: 1,
	}
}

func TestRenderText(t *testing.T) {
	NoColor()

	var buf bytes.Buffer
	if err := RenderText(&buf, sampleReport(), TextOptions{ShowOutdated: true}); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}

	expected := strings.Join([]string{
		"Last full upgrade: 2024-02-01 09:30:00 +0000",
		"Outdated packages (3):",
		"  gimp           2.10.36-1",
		"  linux          6.8.1.arch1-1",
		"  python-pillow  10.2.0-1",
		"",
		"Related news published before the last upgrade:",
		"  2024-01-10  Linux 6.7 release",
		"              https://archlinux.org/news/linux-67-release/",
		"(1 of 5 news rows could not be parsed)",
		"",
	}, "\n")

	if buf.String() != expected {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", buf.String(), expected)
	}
}

func TestRenderTextEmpty(t *testing.T) {
	NoColor()

	report := sampleReport()
	report.Articles = []newscheck.Article{}
	report.Skipped = 0
	report.Direction = newscheck.PublishedSince

	var buf bytes.Buffer
	if err := RenderText(&buf, report, TextOptions{}); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "No related news published since the last upgrade.") {
		t.Errorf("Expected explicit empty message, got:\n%s", out)
	}
	if strings.Contains(out, "Outdated packages") || strings.Contains(out, "could not be parsed") {
		t.Errorf("Unexpected sections in output:\n%s", out)
	}
}

func TestRenderTextTruncatesWideTitles(t *testing.T) {
	NoColor()

	report := sampleReport()
	report.Articles[0].Title = "日本語のニュースタイトルはとても長いです"

	var buf bytes.Buffer
	if err := RenderText(&buf, report, TextOptions{Width: 30}); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}

	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "  2024-01-10") {
			if !strings.HasSuffix(line, "…") {
				t.Errorf("Expected truncated title, got %q", line)
			}
			return
		}
	}
	t.Error("article line not found")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleReport(), FormatJSON, TextOptions{}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded struct {
		Outdated  map[string]string `json:"outdated"`
		LastSync  time.Time         `json:"last_sync"`
		Direction string            `json:"direction"`
		Articles  []struct {
			Date  time.Time `json:"date"`
			Title string    `json:"title"`
			Link  string    `json:"link"`
		} `json:"articles"`
		Skipped int `json:"skipped"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, buf.String())
	}

	if decoded.Direction != "before" {
		t.Errorf("Expected direction name, got %q", decoded.Direction)
	}
	if len(decoded.Articles) != 1 || decoded.Articles[0].Title != "Linux 6.7 release" {
		t.Errorf("Unexpected articles %+v", decoded.Articles)
	}
	if !decoded.LastSync.Equal(time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("Unexpected last sync %v", decoded.LastSync)
	}
	if decoded.Outdated["gimp"] != "2.10.36-1" || decoded.Skipped != 1 {
		t.Errorf("Unexpected decoded report %+v", decoded)
	}
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleReport(), FormatYAML, TextOptions{}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not YAML: %v\n%s", err, buf.String())
	}

	if decoded["direction"] != "before" {
		t.Errorf("Expected direction name, got %v", decoded["direction"])
	}
	articles, ok := decoded["articles"].([]interface{})
	if !ok || len(articles) != 1 {
		t.Fatalf("Unexpected articles %v", decoded["articles"])
	}
	if !strings.Contains(buf.String(), "title: Linux 6.7 release") {
		t.Errorf("Expected article title in output:\n%s", buf.String())
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, sampleReport(), "xml", TextOptions{})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}
