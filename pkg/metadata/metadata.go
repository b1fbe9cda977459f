// Package metadata imports headline, subtitle, image and site name from a
// news article URL.
//
// Pages are fetched through a relay that returns them wrapped in JSON
// ({"contents": "<html>..."}), the shape served by allorigins and by this
// module's own relay package. The page's Open Graph tags are preferred,
// with fallbacks to the title element, the description meta tag and the
// host name:
//
//	imp := metadata.NewImporter(metadata.DefaultRelay)
//	res, err := imp.Fetch(ctx, "https://example.com/noticia")
//	editor.ApplyImport(res)
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ncassessoria/gerapost/pkg/cache"
	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/httputil"
	"github.com/ncassessoria/gerapost/pkg/observability"
	"github.com/ncassessoria/gerapost/pkg/post"
)

// DefaultRelay is the public relay used when none is configured.
const DefaultRelay = "https://api.allorigins.win"

// Defaults.
const (
	DefaultTimeout  = 15 * time.Second
	DefaultCacheTTL = 24 * time.Hour
	maxRelayBytes   = 8 << 20
)

// Result is what an import yields. Empty fields were not found.
type Result struct {
	Headline string `json:"headline"`
	Subtitle string `json:"subtitle"`
	ImageURL string `json:"imageUrl"`
	SiteURL  string `json:"siteUrl"`
}

// Empty reports whether nothing was found.
func (r Result) Empty() bool { return r == Result{} }

// Patch returns an update that sets only the fields the import found.
func (r Result) Patch() post.Patch {
	var p post.Patch
	for _, f := range []struct {
		dst **string
		v   string
	}{
		{&p.Headline, r.Headline},
		{&p.Subtitle, r.Subtitle},
		{&p.ImageURL, r.ImageURL},
		{&p.SiteURL, r.SiteURL},
	} {
		if f.v != "" {
			*f.dst = post.Ptr(f.v)
		}
	}
	return p
}

// Importer fetches pages through a relay.
type Importer struct {
	relay   string
	client  *http.Client
	cache   cache.Cache
	ttl     time.Duration
	timeout time.Duration
	logger  *log.Logger
	now     func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option { return func(im *Importer) { im.client = c } }

// WithCache caches successful results for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(im *Importer) { im.cache, im.ttl = c, ttl }
}

// WithTimeout bounds one Fetch, retries included.
func WithTimeout(d time.Duration) Option { return func(im *Importer) { im.timeout = d } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(im *Importer) { im.logger = l } }

// WithClock sets the time source for the relay's cache-busting parameter.
func WithClock(now func() time.Time) Option { return func(im *Importer) { im.now = now } }

// NewImporter creates an importer for the relay at relayURL. An empty
// relayURL uses [DefaultRelay].
func NewImporter(relayURL string, opts ...Option) *Importer {
	if relayURL == "" {
		relayURL = DefaultRelay
	}
	im := &Importer{
		relay:   strings.TrimRight(relayURL, "/"),
		client:  httputil.NewClient(DefaultTimeout),
		cache:   cache.NewNullCache(),
		ttl:     DefaultCacheTTL,
		timeout: DefaultTimeout,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// RelayURL returns the relay request for pageURL at time t.
func (im *Importer) RelayURL(pageURL string, t time.Time) string {
	return fmt.Sprintf("%s/get?url=%s&t=%d", im.relay, url.QueryEscape(pageURL), t.UnixMilli())
}

// relayResponse is the relay's JSON envelope.
type relayResponse struct {
	Contents *string `json:"contents"`
}

// Fetch imports pageURL. Failures are coded IMPORT_FAILED, IMPORT_EMPTY
// when the relay returned no page, or INVALID_URL.
func (im *Importer) Fetch(ctx context.Context, pageURL string) (res Result, err error) {
	pageURL = strings.TrimSpace(pageURL)
	if err := perrors.ValidateURL(pageURL); err != nil {
		return Result{}, err
	}
	host := hostOf(pageURL)
	start := time.Now()
	cached := false
	observability.Import().OnImportStart(ctx, host)
	defer func() {
		observability.Import().OnImportComplete(ctx, host, cached, time.Since(start), err)
	}()

	key := cache.Key("import", pageURL)
	if data, ok, cerr := im.cache.Get(ctx, key); cerr == nil && ok {
		if jerr := json.Unmarshal(data, &res); jerr == nil {
			cached = true
			observability.Cache().OnCacheHit(ctx, "import")
			im.logger.Debug("import cache hit", "url", pageURL)
			return res, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "import")

	ctx, cancel := context.WithTimeout(ctx, im.timeout)
	defer cancel()

	contents, err := im.fetchContents(ctx, pageURL)
	if err != nil {
		return Result{}, err
	}
	res, err = Parse(strings.NewReader(contents), pageURL)
	if err != nil {
		return Result{}, perrors.Wrap(perrors.ErrCodeImportFailed, err, "could not read the page at %s", pageURL)
	}

	if data, jerr := json.Marshal(res); jerr == nil {
		if cerr := im.cache.Set(ctx, key, data, im.ttl); cerr != nil {
			im.logger.Debug("import cache write failed", "error", cerr)
		} else {
			observability.Cache().OnCacheSet(ctx, "import", len(data))
		}
	}
	im.logger.Debug("imported", "url", pageURL, "headline", res.Headline)
	return res, nil
}

func (im *Importer) fetchContents(ctx context.Context, pageURL string) (string, error) {
	var body []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, im.RelayURL(pageURL, im.now()), nil)
		if err != nil {
			return err
		}
		resp, err := im.client.Do(req)
		if err != nil {
			return httputil.Transient(err)
		}
		defer resp.Body.Close()
		if err := httputil.CheckStatus(resp); err != nil {
			return err
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxRelayBytes))
		return httputil.Transient(err)
	})
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeImportFailed, err, "could not reach the page at %s", pageURL)
	}

	var env relayResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&env); err != nil {
		return "", perrors.Wrap(perrors.ErrCodeImportFailed, err, "the relay returned an unreadable response")
	}
	if env.Contents == nil || strings.TrimSpace(*env.Contents) == "" {
		return "", perrors.New(perrors.ErrCodeImportEmpty, "no content found at %s", pageURL)
	}
	return *env.Contents, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
