package relay

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ncassessoria/gerapost/pkg/metadata"
)

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/news", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><head><meta property="og:title" content="Manchete"></head></html>`))
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(strings.Repeat("a", 100)))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/get?url="+url.QueryEscape(target), nil)
	h.ServeHTTP(rec, req)
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec, resp
}

func TestGet(t *testing.T) {
	up := upstream(t)
	h := New().Handler()

	rec, resp := get(t, h, up.URL+"/news")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Contents == nil || !strings.Contains(*resp.Contents, "Manchete") {
		t.Errorf("contents = %v", resp.Contents)
	}
	if resp.Status.HTTPCode != 200 || resp.Status.URL != up.URL+"/news" {
		t.Errorf("status = %+v", resp.Status)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS header = %q", got)
	}
}

func TestGetUpstreamError(t *testing.T) {
	up := upstream(t)
	_, resp := get(t, New().Handler(), up.URL+"/gone")
	if resp.Status.HTTPCode != http.StatusGone {
		t.Errorf("http_code = %d, want 410", resp.Status.HTTPCode)
	}
}

func TestGetLimit(t *testing.T) {
	up := upstream(t)
	_, resp := get(t, New(WithMaxBytes(10)).Handler(), up.URL+"/big")
	if resp.Contents == nil || len(*resp.Contents) != 10 {
		t.Errorf("contents not cut to 10 bytes: %v", resp.Contents)
	}
}

func TestGetRejects(t *testing.T) {
	tests := []struct {
		name   string
		target string
		code   int
	}{
		{"missing", "", http.StatusBadRequest},
		{"file scheme", "file:///etc/passwd", http.StatusBadRequest},
		{"unreachable", "http://127.0.0.1:1/", http.StatusBadGateway},
	}
	h := New().Handler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := get(t, h, tt.target)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if resp.Contents != nil || resp.Status.Error == "" {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	New().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/get", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestImporterThroughRelay(t *testing.T) {
	up := upstream(t)
	relay := httptest.NewServer(New().Handler())
	defer relay.Close()

	res, err := metadata.NewImporter(relay.URL).Fetch(context.Background(), up.URL+"/news")
	if err != nil {
		t.Fatal(err)
	}
	host, _, _ := net.SplitHostPort(strings.TrimPrefix(up.URL, "http://"))
	if res.Headline != "Manchete" || res.SiteURL != host {
		t.Errorf("result = %+v", res)
	}
}

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New().Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
