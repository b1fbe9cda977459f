// Package relay serves pages of other origins wrapped in JSON, so that the
// metadata importer can read them through one endpoint.
//
// The response shape matches allorigins, which lets the importer use
// either this relay or the public one:
//
//	GET /get?url=https://example.com/news
//	{"contents": "<html>...", "status": {"url": "https://example.com/news", "http_code": 200}}
//
// A target that answers with an error status is still relayed, with its
// body as contents and its code in status. Failures to reach the target at
// all are reported as 502.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/httputil"
)

// Defaults.
const (
	DefaultAddr     = "127.0.0.1:8787"
	DefaultMaxBytes = 5 << 20
	requestTimeout  = 20 * time.Second
)

// Response is the JSON body of a relayed page.
type Response struct {
	Contents *string `json:"contents"`
	Status   Status  `json:"status"`
}

// Status describes the upstream fetch.
type Status struct {
	URL      string `json:"url"`
	HTTPCode int    `json:"http_code,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Server fetches pages on behalf of clients.
type Server struct {
	client   *http.Client
	logger   *log.Logger
	maxBytes int64
}

// Option configures a Server.
type Option func(*Server)

// WithClient sets the client used for upstream requests.
func WithClient(c *http.Client) Option { return func(s *Server) { s.client = c } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithMaxBytes caps the size of a relayed page. Larger pages are cut.
func WithMaxBytes(n int64) Option { return func(s *Server) { s.maxBytes = n } }

// New creates a relay server.
func New(opts ...Option) *Server {
	s := &Server{
		client:   httputil.NewClient(httputil.DefaultTimeout),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the relay routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors)

	r.Get("/get", s.handleGet)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("relay listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if err := perrors.ValidateURL(target); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Status: Status{URL: target, Error: perrors.UserMessage(err)}})
		return
	}

	code, body, err := s.fetch(r.Context(), target)
	if err != nil {
		s.logger.Warn("relay fetch failed", "url", target, "error", err, "request", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusBadGateway, Response{Status: Status{URL: target, Error: err.Error()}})
		return
	}
	s.logger.Debug("relayed", "url", target, "status", code, "bytes", len(body))
	contents := string(body)
	writeJSON(w, http.StatusOK, Response{Contents: &contents, Status: Status{URL: target, HTTPCode: code}})
}

func (s *Server) fetch(ctx context.Context, target string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
