// Package raster draws a scene tree into a bitmap.
//
// The tree is laid out in canvas pixels; [Rasterizer.Rasterize] draws it at
// an oversampling factor, so a 1080×1350 feed post rendered at scale 2 comes
// out as a 2160×2700 image. All drawing happens in device pixels: boxes are
// multiplied by the scale and fonts are opened at the scaled size, which
// keeps glyph edges sharp instead of upsampling a small bitmap.
//
// Before drawing, a fit pass measures text with the real faces. Labels and
// groups marked ShrinkToFit take the width of their measured text, keeping
// the edge named by their Align fixed. Text blocks are wrapped again with
// the real faces and clamped to the lines their box can hold.
//
// Shapes, gradients and strokes are drawn with gg. Images, text and soft
// shadows are drawn into layers and composited through the active clip mask.
package raster

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"github.com/ncassessoria/gerapost/pkg/fonts"
	"github.com/ncassessoria/gerapost/pkg/scene"
)

// Sentinel errors.
var (
	ErrEmptyScene = errors.New("raster: empty scene")
)

// MissingImageError reports an image node whose source was not loaded.
type MissingImageError struct{ Src string }

func (e *MissingImageError) Error() string {
	return fmt.Sprintf("raster: image not loaded: %s", e.Src)
}

// Rasterizer draws scene trees. It holds no per-call state and is safe for
// concurrent use as long as the font library is.
type Rasterizer struct {
	fonts  *fonts.Library
	logger *log.Logger
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Rasterizer) { r.logger = l }
}

// New creates a rasterizer that resolves fonts through lib. A nil lib uses
// a library with no font directory.
func New(lib *fonts.Library, opts ...Option) *Rasterizer {
	if lib == nil {
		lib = fonts.New("")
	}
	r := &Rasterizer{
		fonts:  lib,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rasterize draws root at scale and returns the bitmap. images holds the
// decoded image for every Src in the tree; a missing one is an error, never
// a blank area. The tree is modified by the fit pass, so callers pass a
// clone when they need the original.
func (r *Rasterizer) Rasterize(root *scene.Node, images map[string]image.Image, scale float64) (*image.RGBA, error) {
	if root == nil || root.Box.W <= 0 || root.Box.H <= 0 {
		return nil, ErrEmptyScene
	}
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Round(root.Box.W * scale))
	h := int(math.Round(root.Box.H * scale))

	f := &frame{
		dc:     gg.NewContext(w, h),
		scale:  scale,
		origin: scene.Box{X: root.Box.X, Y: root.Box.Y},
		images: images,
		text:   newTextEngine(r.fonts, scale, root.Style.Hinting),
		logger: r.logger,
	}
	if err := f.fit(root, root.FontFamily); err != nil {
		return nil, err
	}
	if err := f.draw(root, root.FontFamily, 1); err != nil {
		return nil, err
	}
	r.logger.Debug("rasterized", "width", w, "height", h, "nodes", scene.Count(root))
	return f.canvas(), nil
}

// frame is the state of one Rasterize call.
type frame struct {
	dc     *gg.Context
	scale  float64
	origin scene.Box
	images map[string]image.Image
	text   *textEngine
	clips  []*image.Alpha
	logger *log.Logger
}

func (f *frame) canvas() *image.RGBA {
	return f.dc.Image().(*image.RGBA)
}

// dev converts a canvas box to device pixels.
func (f *frame) dev(b scene.Box) scene.Box {
	return scene.Box{
		X: (b.X - f.origin.X) * f.scale,
		Y: (b.Y - f.origin.Y) * f.scale,
		W: b.W * f.scale,
		H: b.H * f.scale,
	}
}

func (f *frame) px(v float64) float64 { return v * f.scale }

// draw paints n and its children. opacity is the product of the ancestors'
// opacities.
func (f *frame) draw(n *scene.Node, family string, opacity float64) error {
	if n.FontFamily != "" {
		family = n.FontFamily
	}
	opacity *= n.Style.EffectiveOpacity()

	var err error
	switch n.Kind {
	case scene.KindGroup, scene.KindRect:
		f.drawRect(n, opacity)
	case scene.KindGradient:
		f.drawGradient(n, opacity)
	case scene.KindImage:
		err = f.drawImage(n, opacity)
	case scene.KindText:
		err = f.drawText(n, family, opacity)
	case scene.KindLabel:
		err = f.drawLabel(n, family, opacity)
	case scene.KindCircle:
		f.drawCircle(n, opacity)
	case scene.KindIcon:
		f.drawIcon(n, opacity)
	}
	if err != nil {
		return err
	}
	if len(n.Children) == 0 {
		return nil
	}

	if n.Style.Clip {
		f.pushClip(n.Box, n.Style.Radius, n.Style.RoundTop)
		defer f.popClip()
	}
	for _, c := range n.Children {
		if err := f.draw(c, family, opacity); err != nil {
			return err
		}
	}
	return nil
}
