// Package assets loads the images a scene references.
//
// A source is one of:
//
//   - an http or https URL, fetched with retries and a size limit
//   - a data URI (data:image/png;base64,...), as produced by local uploads
//   - a file path, optionally prefixed with file://
//
// [Loader.LoadAll] is the readiness gate of the export pipeline: it returns
// only when every referenced image has been fetched and decoded, or fails on
// the first image that cannot be.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/httputil"
)

// DefaultMaxBytes caps a single image download.
const DefaultMaxBytes = 20 << 20

// maxParallel bounds concurrent downloads within one LoadAll.
const maxParallel = 4

// Loader fetches and decodes images. It is safe for concurrent use.
type Loader struct {
	client   *http.Client
	logger   *log.Logger
	maxBytes int64
	attempts int
}

// Option configures a Loader.
type Option func(*Loader)

// WithClient sets the HTTP client used for remote images.
func WithClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithLogger sets the logger.
func WithLogger(lg *log.Logger) Option {
	return func(l *Loader) { l.logger = lg }
}

// WithMaxBytes caps the size of one image.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) { l.maxBytes = n }
}

// WithAttempts sets how many times a remote fetch is tried.
func WithAttempts(n int) Option {
	return func(l *Loader) { l.attempts = n }
}

// NewLoader creates a loader with the shared HTTP client.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client:   httputil.NewClient(0),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		maxBytes: DefaultMaxBytes,
		attempts: 3,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and decodes one image. Failures carry the EXPORT_IMAGE code
// and a message that tells the user what to do about it.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	data, err := l.read(ctx, src)
	if err != nil {
		return nil, loadError(src, err)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, loadError(src, fmt.Errorf("decode: %w", err))
	}
	l.logger.Debug("image loaded", "src", Describe(src), "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, nil
}

// LoadAll loads every distinct source in parallel. It returns the decoded
// images keyed by source, or the first error; remaining downloads are
// cancelled on failure.
func (l *Loader) LoadAll(ctx context.Context, srcs []string) (map[string]image.Image, error) {
	out := make(map[string]image.Image, len(srcs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	seen := make(map[string]bool, len(srcs))
	for _, src := range srcs {
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		g.Go(func() error {
			img, err := l.Load(ctx, src)
			if err != nil {
				return err
			}
			mu.Lock()
			out[src] = img
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Loader) read(ctx context.Context, src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetch(ctx, src)
	default:
		return l.readFile(strings.TrimPrefix(src, "file://"))
	}
}

func (l *Loader) fetch(ctx context.Context, src string) ([]byte, error) {
	var data []byte
	err := httputil.Retry(ctx, l.attempts, httputil.DefaultBackoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return httputil.Transient(err)
		}
		defer resp.Body.Close()
		if err := httputil.CheckStatus(resp); err != nil {
			return err
		}
		data, err = readLimited(resp.Body, l.maxBytes)
		return err
	})
	return data, err
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, l.maxBytes)
}

// ErrTooLarge is returned when an image exceeds the loader's size limit.
var ErrTooLarge = errors.New("image exceeds size limit")

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

// decodeDataURI returns the payload of a data URI.
func decodeDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URI")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI: %w", err)
	}
	return []byte(s), nil
}

func loadError(src string, cause error) error {
	return perrors.Wrap(perrors.ErrCodeExportImage, cause,
		"could not load image %s; try a locally uploaded image instead", Describe(src))
}

// Describe shortens a source for messages and logs. Data URIs are reduced
// to their media type.
func Describe(src string) string {
	if meta, _, ok := strings.Cut(src, ","); ok && strings.HasPrefix(src, "data:") {
		return meta
	}
	if len(src) > 80 {
		return src[:77] + "..."
	}
	return src
}
