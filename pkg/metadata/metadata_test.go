package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ncassessoria/gerapost/pkg/cache"
	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/post"
)

// fakeRelay serves page as the contents of every request and counts hits.
func fakeRelay(t *testing.T, page *string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get" || r.URL.Query().Get("url") == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		body := map[string]any{"status": map[string]any{"url": r.URL.Query().Get("url"), "http_code": 200}}
		if page != nil {
			body["contents"] = *page
		} else {
			body["contents"] = nil
		}
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		html string
		url  string
		want Result
	}{
		{
			name: "open graph only title",
			html: `<html><head><meta property="og:title" content="X"></head></html>`,
			url:  "https://www.example.com/a",
			want: Result{Headline: "X", SiteURL: "example.com"},
		},
		{
			name: "all open graph tags",
			html: `<html><head>
				<meta property="og:title" content="Governo anuncia plano">
				<meta property="og:description" content="Medidas entram em vigor">
				<meta property="og:image" content="https://cdn.example.com/p.jpg">
				<meta property="og:site_name" content="Jornal">
				<title>Ignored</title></head></html>`,
			url: "https://example.com/a",
			want: Result{
				Headline: "Governo anuncia plano",
				Subtitle: "Medidas entram em vigor",
				ImageURL: "https://cdn.example.com/p.jpg",
				SiteURL:  "Jornal",
			},
		},
		{
			name: "fallbacks",
			html: `<html><head><title> Page title </title>
				<meta name="description" content="Plain description"></head></html>`,
			url:  "https://news.example.org/x",
			want: Result{Headline: "Page title", Subtitle: "Plain description", SiteURL: "news.example.org"},
		},
		{
			name: "name attribute serves og keys",
			html: `<meta name="og:title" content="From name">`,
			url:  "https://example.com",
			want: Result{Headline: "From name", SiteURL: "example.com"},
		},
		{
			name: "relative image resolved",
			html: `<meta property="og:image" content="/img/cover.png">`,
			url:  "https://example.com/news/1",
			want: Result{ImageURL: "https://example.com/img/cover.png", SiteURL: "example.com"},
		},
		{
			name: "first tag wins",
			html: `<meta property="og:title" content="First"><meta property="og:title" content="Second">`,
			url:  "https://example.com",
			want: Result{Headline: "First", SiteURL: "example.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.html), tt.url)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetch(t *testing.T) {
	page := `<html><head><meta property="og:title" content="X"></head></html>`
	srv := fakeRelay(t, &page, nil)

	res, err := NewImporter(srv.URL).Fetch(context.Background(), "https://www.example.com/materia")
	if err != nil {
		t.Fatal(err)
	}
	want := Result{Headline: "X", SiteURL: "example.com"}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchErrors(t *testing.T) {
	empty := "   "
	tests := []struct {
		name string
		page *string
		url  string
		code perrors.Code
	}{
		{"invalid url", nil, "ftp://example.com", perrors.ErrCodeInvalidURL},
		{"empty url", nil, "", perrors.ErrCodeInvalidURL},
		{"null contents", nil, "https://example.com", perrors.ErrCodeImportEmpty},
		{"blank contents", &empty, "https://example.com", perrors.ErrCodeImportEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeRelay(t, tt.page, nil)
			_, err := NewImporter(srv.URL).Fetch(context.Background(), tt.url)
			if !perrors.Is(err, tt.code) {
				t.Errorf("Fetch() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestFetchRelayDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewImporter(srv.URL).Fetch(context.Background(), "https://example.com")
	if !perrors.Is(err, perrors.ErrCodeImportFailed) {
		t.Errorf("Fetch() error = %v, want IMPORT_FAILED", err)
	}
}

func TestFetchCached(t *testing.T) {
	page := `<title>Cached</title>`
	var hits atomic.Int32
	srv := fakeRelay(t, &page, &hits)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	imp := NewImporter(srv.URL, WithCache(c, time.Hour))
	for range 3 {
		res, err := imp.Fetch(context.Background(), "https://example.com/x")
		if err != nil {
			t.Fatal(err)
		}
		if res.Headline != "Cached" {
			t.Errorf("Headline = %q", res.Headline)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("relay hits = %d, want 1", n)
	}
}

func TestRelayURL(t *testing.T) {
	imp := NewImporter("https://relay.example/")
	got := imp.RelayURL("https://example.com/a?b=1", time.UnixMilli(42))
	want := "https://relay.example/get?url=https%3A%2F%2Fexample.com%2Fa%3Fb%3D1&t=42"
	if got != want {
		t.Errorf("RelayURL() = %q, want %q", got, want)
	}
}

func TestResultPatch(t *testing.T) {
	base := post.Default()
	r := Result{Headline: "Nova manchete", SiteURL: "example.com"}
	got := base.Apply(r.Patch())

	if got.Headline != "Nova manchete" || got.SiteURL != "example.com" {
		t.Errorf("patched fields = %q, %q", got.Headline, got.SiteURL)
	}
	if got.Subtitle != base.Subtitle || got.ImageURL != base.ImageURL {
		t.Error("empty result fields overwrote the post")
	}
	if !(Result{}).Empty() || r.Empty() {
		t.Error("Empty() wrong")
	}
}
