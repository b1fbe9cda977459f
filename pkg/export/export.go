// Package export turns a post into a downloadable PNG.
//
// An export renders a dedicated full-size instance of the post, waits for
// every image it references to be fetched and decoded, normalizes the tree
// for capture, rasterizes it at twice the canvas size and encodes a
// lossless PNG, which a [Sink] then stores:
//
//	Idle → Preparing → Rasterizing → Encoding → Done
//	                ↘             ↘          ↘ Failed
//
// Only one export runs at a time; a second call while one is in flight
// returns [ErrBusy] immediately. There is no automatic retry.
package export

import (
	"context"
	"image"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/geometry"
	"github.com/ncassessoria/gerapost/pkg/observability"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/raster"
	"github.com/ncassessoria/gerapost/pkg/render"
	"github.com/ncassessoria/gerapost/pkg/scene"
)

// DefaultScale is the oversampling factor of exported images.
const DefaultScale = 2.0

// ErrBusy is returned when an export is requested while another runs.
var ErrBusy = perrors.New(perrors.ErrCodeExportBusy, "an export is already in progress")

// Loader fetches every image a tree references. Implementations must
// return only once all images are decoded.
type Loader interface {
	LoadAll(ctx context.Context, srcs []string) (map[string]image.Image, error)
}

// Rasterizer draws a tree at a scale.
type Rasterizer interface {
	Rasterize(root *scene.Node, images map[string]image.Image, scale float64) (*image.RGBA, error)
}

// Indicator is the blocking progress display shown while an export runs.
type Indicator interface {
	Show(message string)
	Hide()
}

type noIndicator struct{}

func (noIndicator) Show(string) {}
func (noIndicator) Hide()       {}

// Artifact is a finished export.
type Artifact struct {
	ID         uuid.UUID
	Filename   string
	Path       string // set by the sink
	PNG        []byte
	Width      int
	Height     int
	TemplateID int
	Format     geometry.Format
}

// DataURI returns the image as a data URI.
func (a *Artifact) DataURI() string { return raster.DataURI(a.PNG) }

// Pipeline runs exports. It is safe for concurrent use; concurrent calls
// are rejected rather than queued.
type Pipeline struct {
	loader    Loader
	raster    Rasterizer
	sink      Sink
	indicator Indicator
	scale     float64
	logger    *log.Logger
	now       func() time.Time

	busy atomic.Bool

	mu           sync.Mutex
	state        State
	onTransition func(from, to State)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSink sets where artifacts go. Without a sink the artifact is only
// returned.
func WithSink(s Sink) Option { return func(p *Pipeline) { p.sink = s } }

// WithIndicator sets the progress display.
func WithIndicator(i Indicator) Option { return func(p *Pipeline) { p.indicator = i } }

// WithScale overrides the oversampling factor.
func WithScale(s float64) Option { return func(p *Pipeline) { p.scale = s } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(p *Pipeline) { p.logger = l } }

// WithClock sets the time source used for file names.
func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

// OnTransition registers fn to be called on every state change. fn runs on
// the exporting goroutine and must not call Export.
func OnTransition(fn func(from, to State)) Option {
	return func(p *Pipeline) { p.onTransition = fn }
}

// New creates a pipeline.
func New(loader Loader, r Rasterizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		loader:    loader,
		raster:    r,
		indicator: noIndicator{},
		scale:     DefaultScale,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.scale <= 0 {
		p.scale = DefaultScale
	}
	return p
}

// State returns the current state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Busy reports whether an export is running.
func (p *Pipeline) Busy() bool { return p.busy.Load() }

func (p *Pipeline) transition(ctx context.Context, id string, to State) {
	p.mu.Lock()
	from := p.state
	p.state = to
	fn := p.onTransition
	p.mu.Unlock()

	p.logger.Debug("export state", "from", from, "to", to)
	observability.Export().OnStateChange(ctx, id, from.String(), to.String())
	if fn != nil {
		fn(from, to)
	}
}

// Export renders, rasterizes and encodes pst. Every failure is returned as
// a coded error (EXPORT_*); the indicator is hidden whatever happens.
func (p *Pipeline) Export(ctx context.Context, pst post.Post) (art *Artifact, err error) {
	if !p.busy.CompareAndSwap(false, true) {
		observability.Export().OnExportRejected(ctx)
		return nil, ErrBusy
	}
	defer p.busy.Store(false)

	pst = pst.Normalize()
	id := uuid.New()
	start := time.Now()
	observability.Export().OnExportStart(ctx, id.String(), pst.TemplateID, string(pst.Format))

	defer func() {
		p.indicator.Hide()
		size := 0
		switch {
		case err != nil:
			p.transition(ctx, id.String(), Failed)
			p.logger.Debug("export failed", "id", id, "error", err)
		case art != nil:
			size = len(art.PNG)
		}
		observability.Export().OnExportComplete(ctx, id.String(), size, time.Since(start), err)
	}()

	p.transition(ctx, id.String(), Preparing)
	p.indicator.Show("Gerando imagem...")

	tree := render.Render(pst, render.ExportID)
	target := scene.FindID(tree, render.ExportID)
	if target == nil {
		return nil, perrors.New(perrors.ErrCodeExportNodeMissing, "export canvas %q not found", render.ExportID)
	}

	images, err := p.loader.LoadAll(ctx, scene.Images(target))
	if err != nil {
		if perrors.GetCode(err) == "" {
			err = perrors.Wrap(perrors.ErrCodeExportImage, err, "could not load the post images; try a locally uploaded image instead")
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeExportRaster, err, "export cancelled")
	}
	prepared := Normalize(target)

	p.transition(ctx, id.String(), Rasterizing)
	img, err := p.raster.Rasterize(prepared, images, p.scale)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeExportRaster, err, "could not draw the image")
	}

	p.transition(ctx, id.String(), Encoding)
	data, err := raster.PNG(img)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeExportEncode, err, "could not encode the image")
	}

	art = &Artifact{
		ID:         id,
		Filename:   Filename(pst.Category, p.now()),
		PNG:        data,
		Width:      img.Bounds().Dx(),
		Height:     img.Bounds().Dy(),
		TemplateID: pst.TemplateID,
		Format:     pst.Format,
	}
	if p.sink != nil {
		path, err := p.sink.Write(ctx, art)
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeExportWrite, err, "could not save %s", art.Filename)
		}
		art.Path = path
	}

	p.transition(ctx, id.String(), Done)
	p.logger.Debug("export done", "id", id, "file", art.Filename, "bytes", len(data), "elapsed", time.Since(start))
	return art, nil
}
