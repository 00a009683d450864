package newscheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/obentoo/pacnews/internal/common/pacman"
)

// staticFeed serves a fixed document or error
type staticFeed struct {
	content []byte
	err     error
}

func (f *staticFeed) Fetch(ctx context.Context) ([]byte, error) {
	return f.content, f.err
}

// failingExtractor always fails to extract rows
type failingExtractor struct{}

func (failingExtractor) Extract([]byte) ([]Row, error) {
	return nil, errors.New("broken document")
}

var checkerLog = []string{
	"[2024-01-05T10:00:00+0000] [PACMAN] Running 'pacman -Syu'",
	"[2024-01-05T10:02:00+0000] [ALPM] upgraded gimp (2.10.34-1 -> 2.10.36-1)",
}

// newTestSource returns a source where linux and gimp are outdated
func newTestSource() *pacman.MockSource {
	source := pacman.NewMockSource("/var/log/pacman.log")
	source.InstalledFunc = func(ctx context.Context) (map[string]string, error) {
		return map[string]string{
			"linux": "6.6.8.arch1-1",
			"gimp":  "2.10.34-1",
			"htop":  "3.3.0-1",
		}, nil
	}
	source.RemoteFunc = func(ctx context.Context) (map[string]string, error) {
		return map[string]string{
			"linux": "6.8.1.arch1-1",
			"gimp":  "2.10.36-1",
			"htop":  "3.3.0-1",
		}, nil
	}
	return source
}

func staticLog(lines []string) CheckerOption {
	return WithLogReader(func(path string) ([]string, error) {
		return lines, nil
	})
}

func TestNewCheckerRequiresSource(t *testing.T) {
	if _, err := NewChecker(nil); !errors.Is(err, ErrNoPackageSource) {
		t.Errorf("Expected ErrNoPackageSource, got %v", err)
	}
}

func TestNewCheckerDefaults(t *testing.T) {
	checker, err := NewChecker(newTestSource())
	if err != nil {
		t.Fatalf("NewChecker failed: %v", err)
	}

	feed, ok := checker.feed.(*HTTPFeed)
	if !ok || feed.URL() != DefaultNewsURL {
		t.Errorf("Expected default HTTP feed, got %#v", checker.feed)
	}
	if _, ok := checker.extractor.(*CSSExtractor); !ok {
		t.Errorf("Expected CSS extractor by default, got %T", checker.extractor)
	}
	if checker.direction != PublishedBefore || checker.marker != DefaultMarker {
		t.Errorf("Unexpected defaults: direction %v, marker %q", checker.direction, checker.marker)
	}
	if checker.baseURL.String() != DefaultBaseURL {
		t.Errorf("Unexpected base URL %s", checker.baseURL)
	}
}

func TestNewCheckerInvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"/relative/path", "http://[::1"} {
		if _, err := NewChecker(newTestSource(), WithBaseURL(raw)); err == nil {
			t.Errorf("Expected error for base URL %q", raw)
		}
	}
}

func TestCheckerRun(t *testing.T) {
	checker, err := NewChecker(newTestSource(),
		WithFeed(&staticFeed{content: []byte(newsIndexHTML)}),
		staticLog(checkerLog),
	)
	if err != nil {
		t.Fatalf("NewChecker failed: %v", err)
	}

	report, err := checker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Outdated) != 2 || report.Outdated["linux"] != "6.8.1.arch1-1" {
		t.Errorf("Unexpected outdated set %v", report.Outdated)
	}
	if !report.LastSync.Equal(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected last sync %v", report.LastSync)
	}
	if report.Rows != 5 || report.Skipped != 3 {
		t.Errorf("Expected 5 rows with 3 skipped, got %d and %d", report.Rows, report.Skipped)
	}
	// Both parsed articles were published after the upgrade
	if len(report.Articles) != 0 {
		t.Errorf("Expected no articles before the upgrade, got %+v", report.Articles)
	}
}

func TestCheckerRunSince(t *testing.T) {
	checker, err := NewChecker(newTestSource(),
		WithFeed(&staticFeed{content: []byte(newsIndexHTML)}),
		WithExtractor(&XPathExtractor{}),
		WithDirection(PublishedSince),
		staticLog(checkerLog),
	)
	if err != nil {
		t.Fatalf("NewChecker failed: %v", err)
	}

	report, err := checker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Articles) != 2 {
		t.Fatalf("Expected 2 articles, got %+v", report.Articles)
	}
	if report.Articles[0].Title != "Linux 6.8 release" || report.Articles[1].Title != "GIMP update" {
		t.Errorf("Articles out of index order: %+v", report.Articles)
	}
	if report.Direction != PublishedSince {
		t.Errorf("Expected since direction in report, got %v", report.Direction)
	}
}

func TestCheckerRunOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(newsIndexHTML))
	}))
	defer server.Close()

	logPath := filepath.Join(t.TempDir(), "pacman.log")
	if err := os.WriteFile(logPath, []byte(strings.Join(checkerLog, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	source := pacman.NewMockSource(logPath)
	source.InstalledFunc = newTestSource().InstalledFunc
	source.RemoteFunc = newTestSource().RemoteFunc

	client := NewRetryableHTTPClient()
	client.SetHTTPClient(server.Client())

	checker, err := NewChecker(source,
		WithFeed(NewHTTPFeed(server.URL, client)),
		WithDirection(PublishedSince),
		WithBaseURL("https://mirror.example.org"),
	)
	if err != nil {
		t.Fatalf("NewChecker failed: %v", err)
	}

	report, err := checker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Articles) != 2 {
		t.Fatalf("Expected 2 articles, got %+v", report.Articles)
	}
	if report.Articles[0].Link != "https://mirror.example.org/news/linux-68-release/" {
		t.Errorf("Link not resolved against base URL: %s", report.Articles[0].Link)
	}
}

func TestCheckerRunErrors(t *testing.T) {
	errQuery := errors.New("pacman failed")

	tests := []struct {
		name     string
		source   func() *pacman.MockSource
		opts     []CheckerOption
		expected error
	}{
		{
			name: "installed query fails",
			source: func() *pacman.MockSource {
				s := newTestSource()
				s.InstalledFunc = func(ctx context.Context) (map[string]string, error) { return nil, errQuery }
				return s
			},
			opts:     []CheckerOption{staticLog(checkerLog), WithFeed(&staticFeed{})},
			expected: errQuery,
		},
		{
			name: "remote query fails",
			source: func() *pacman.MockSource {
				s := newTestSource()
				s.RemoteFunc = func(ctx context.Context) (map[string]string, error) { return nil, errQuery }
				return s
			},
			opts:     []CheckerOption{staticLog(checkerLog), WithFeed(&staticFeed{})},
			expected: errQuery,
		},
		{
			name:   "log unreadable",
			source: newTestSource,
			opts: []CheckerOption{
				WithLogReader(func(string) ([]string, error) { return nil, os.ErrNotExist }),
				WithFeed(&staticFeed{}),
			},
			expected: os.ErrNotExist,
		},
		{
			name:     "no upgrade in log",
			source:   newTestSource,
			opts:     []CheckerOption{staticLog([]string{"[2024-01-05T10:00:00+0000] [PACMAN] Running 'pacman -S vim'"}), WithFeed(&staticFeed{})},
			expected: ErrSyncNotFound,
		},
		{
			name:     "feed fails",
			source:   newTestSource,
			opts:     []CheckerOption{staticLog(checkerLog), WithFeed(&staticFeed{err: ErrFeedStatus})},
			expected: ErrFeedStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, err := NewChecker(tt.source(), tt.opts...)
			if err != nil {
				t.Fatalf("NewChecker failed: %v", err)
			}
			report, err := checker.Run(context.Background())
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
			if report != nil {
				t.Errorf("Expected no report on failure, got %+v", report)
			}
		})
	}
}

func TestCheckerRunExtractError(t *testing.T) {
	checker, err := NewChecker(newTestSource(),
		WithFeed(&staticFeed{content: []byte("<html></html>")}),
		WithExtractor(failingExtractor{}),
		staticLog(checkerLog),
	)
	if err != nil {
		t.Fatalf("NewChecker failed: %v", err)
	}

	if _, err := checker.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "broken document") {
		t.Errorf("Expected extraction error, got %v", err)
	}
}

func TestCheckerRunCustomMarker(t *testing.T) {
	lines := []string{
		"[2024-01-05T10:00:00+0000] [PACMAN] Running 'pacman -Syu'",
		"[2024-03-02T10:00:00+0000] [PACMAN] Running 'yay -Syu'",
	}
	checker, err := NewChecker(newTestSource(),
		WithFeed(&staticFeed{content: []byte(newsIndexHTML)}),
		WithMarker("yay -Syu"),
		staticLog(lines),
	)
	if err != nil {
		t.Fatalf("NewChecker failed: %v", err)
	}

	report, err := checker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Articles) != 2 {
		t.Errorf("Expected both articles before 2024-03-02, got %+v", report.Articles)
	}
}
