package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/ncassessoria/gerapost/pkg/scene"
)

// shapeFunc adds a closed path for a box to dc.
type shapeFunc func(dc *gg.Context, b scene.Box)

func boxShape(radius float64, roundTop bool) shapeFunc {
	return func(dc *gg.Context, b scene.Box) {
		roundedRect(dc, b, radius, roundTop)
	}
}

func circleShape(dc *gg.Context, b scene.Box) {
	dc.DrawCircle(b.X+b.W/2, b.Y+b.H/2, math.Min(b.W, b.H)/2)
}

// roundedRect adds a rectangle path with the radius clamped to half the
// shorter side. roundTop leaves the bottom corners square.
func roundedRect(dc *gg.Context, b scene.Box, radius float64, roundTop bool) {
	r := math.Min(radius, math.Min(b.W, b.H)/2)
	switch {
	case r <= 0:
		dc.DrawRectangle(b.X, b.Y, b.W, b.H)
	case roundTop:
		dc.NewSubPath()
		dc.MoveTo(b.X+r, b.Y)
		dc.LineTo(b.Right()-r, b.Y)
		dc.DrawArc(b.Right()-r, b.Y+r, r, gg.Radians(270), gg.Radians(360))
		dc.LineTo(b.Right(), b.Bottom())
		dc.LineTo(b.X, b.Bottom())
		dc.LineTo(b.X, b.Y+r)
		dc.DrawArc(b.X+r, b.Y+r, r, gg.Radians(180), gg.Radians(270))
		dc.ClosePath()
	default:
		dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, r)
	}
}

// faded returns c with its alpha multiplied by opacity.
func faded(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * opacity))
	return c
}

func (f *frame) drawRect(n *scene.Node, opacity float64) {
	st := n.Style
	b := f.dev(n.Box)
	shape := boxShape(f.px(st.Radius), st.RoundTop)

	if st.Shadow != nil {
		f.shadow(b, shape, st.Shadow, opacity)
	}
	if st.Fill.A > 0 {
		if st.Blur > 0 {
			f.soft(b, shape, faded(st.Fill, opacity), f.px(st.Blur), 0)
		} else {
			shape(f.dc, b)
			f.dc.SetColor(faded(st.Fill, opacity))
			f.dc.Fill()
		}
	}
	f.stroke(b, shape, st, opacity)
}

func (f *frame) stroke(b scene.Box, shape shapeFunc, st scene.Style, opacity float64) {
	if st.StrokeW <= 0 || st.Stroke.A == 0 {
		return
	}
	// Strokes sit inside the box, like a CSS border.
	sw := f.px(st.StrokeW)
	shape(f.dc, scene.Box{X: b.X + sw/2, Y: b.Y + sw/2, W: b.W - sw, H: b.H - sw})
	f.dc.SetLineWidth(sw)
	f.dc.SetColor(faded(st.Stroke, opacity))
	f.dc.Stroke()
}

func (f *frame) drawGradient(n *scene.Node, opacity float64) {
	g := n.Style.Gradient
	if g == nil || len(g.Stops) == 0 {
		return
	}
	b := f.dev(n.Box)
	lg := gg.NewLinearGradient(
		b.X+g.X0*b.W, b.Y+g.Y0*b.H,
		b.X+g.X1*b.W, b.Y+g.Y1*b.H,
	)
	for _, s := range g.Stops {
		lg.AddColorStop(s.Offset, faded(s.Color, opacity))
	}
	f.dc.SetFillStyle(lg)
	f.dc.DrawRectangle(b.X, b.Y, b.W, b.H)
	f.dc.Fill()
}

func (f *frame) drawCircle(n *scene.Node, opacity float64) {
	st := n.Style
	b := f.dev(n.Box)
	if st.Shadow != nil {
		f.shadow(b, circleShape, st.Shadow, opacity)
	}
	if st.Fill.A > 0 {
		circleShape(f.dc, b)
		f.dc.SetColor(faded(st.Fill, opacity))
		f.dc.Fill()
	}
	f.stroke(b, circleShape, st, opacity)
}

// drawIcon strokes the outline glyphs used in footers.
func (f *frame) drawIcon(n *scene.Node, opacity float64) {
	st := n.Style
	b := f.dev(n.Box)
	sw := f.px(math.Max(st.StrokeW, 1))
	dc := f.dc
	dc.SetLineWidth(sw)
	dc.SetColor(faded(st.Color, opacity))
	dc.SetLineCap(gg.LineCapRound)
	defer dc.SetLineCap(gg.LineCapButt)

	cx, cy := b.X+b.W/2, b.Y+b.H/2
	switch n.Icon {
	case scene.IconInstagram:
		in := scene.Box{X: b.X + sw/2, Y: b.Y + sw/2, W: b.W - sw, H: b.H - sw}
		dc.DrawRoundedRectangle(in.X, in.Y, in.W, in.H, in.W*0.28)
		dc.Stroke()
		dc.DrawCircle(cx, cy, in.W*0.22)
		dc.Stroke()
		dc.DrawCircle(in.X+in.W*0.76, in.Y+in.H*0.24, sw*0.6)
		dc.Fill()
	case scene.IconGlobe:
		r := math.Min(b.W, b.H)/2 - sw/2
		dc.DrawCircle(cx, cy, r)
		dc.Stroke()
		dc.DrawEllipse(cx, cy, r*0.45, r)
		dc.Stroke()
		dc.DrawLine(cx-r, cy, cx+r, cy)
		dc.Stroke()
	default:
		f.logger.Debug("unknown icon", "icon", n.Icon)
	}
}

// shadow draws a blurred copy of shape offset below the box.
func (f *frame) shadow(b scene.Box, shape shapeFunc, s *scene.Shadow, opacity float64) {
	f.soft(b, shape, faded(s.Color, opacity), f.px(s.Blur)/2, f.px(s.OffsetY))
}

// soft draws shape filled with c and blurred with a gaussian of the given
// sigma, shifted down by dy.
func (f *frame) soft(b scene.Box, shape shapeFunc, c color.NRGBA, sigma, dy float64) {
	m := int(math.Ceil(3*sigma)) + 1
	ox, oy := math.Floor(b.X), math.Floor(b.Y+dy)
	w := int(math.Ceil(b.W)) + 2*m + 1
	h := int(math.Ceil(b.H)) + 2*m + 1

	dc := gg.NewContext(w, h)
	shape(dc, scene.Box{X: b.X - ox + float64(m), Y: b.Y + dy - oy + float64(m), W: b.W, H: b.H})
	dc.SetColor(c)
	dc.Fill()

	f.blit(blur(dc.Image(), sigma), image.Pt(int(ox)-m, int(oy)-m), 1)
}

// blur is a gaussian blur that works on a reduced copy for large sigmas.
func blur(img image.Image, sigma float64) *image.NRGBA {
	if sigma <= 0 {
		return imaging.Clone(img)
	}
	b := img.Bounds()
	k := math.Floor(sigma / 4)
	if k < 2 || b.Dx() < 8 || b.Dy() < 8 {
		return imaging.Blur(img, sigma)
	}
	small := imaging.Resize(img, max(1, int(float64(b.Dx())/k)), max(1, int(float64(b.Dy())/k)), imaging.Box)
	small = imaging.Blur(small, sigma/k)
	return imaging.Resize(small, b.Dx(), b.Dy(), imaging.Linear)
}

// blit composites src with its top-left corner at at, through the active
// clip mask and an extra opacity.
func (f *frame) blit(src image.Image, at image.Point, opacity float64) {
	if opacity <= 0 {
		return
	}
	dst := f.canvas()
	sb := src.Bounds()
	r := sb.Sub(sb.Min).Add(at)
	clip := f.clip()

	switch {
	case clip != nil && opacity < 1:
		draw.DrawMask(dst, r, fade(src, opacity), image.Point{}, clip, r.Min, draw.Over)
	case clip != nil:
		draw.DrawMask(dst, r, src, sb.Min, clip, r.Min, draw.Over)
	case opacity < 1:
		a := color.Alpha{A: uint8(math.Round(opacity * 255))}
		draw.DrawMask(dst, r, src, sb.Min, image.NewUniform(a), image.Point{}, draw.Over)
	default:
		draw.Draw(dst, r, src, sb.Min, draw.Over)
	}
}

// fade returns a copy of src with every alpha multiplied by opacity.
func fade(src image.Image, opacity float64) *image.NRGBA {
	out := imaging.Clone(src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = uint8(math.Round(float64(out.Pix[i]) * opacity))
	}
	return out
}

// pushClip intersects the active clip with a box. Boxes covering the whole
// canvas add no mask.
func (f *frame) pushClip(box scene.Box, radius float64, roundTop bool) {
	b := f.dev(box)
	bounds := f.canvas().Bounds()
	parent := f.clip()

	if radius <= 0 && b.X <= 0 && b.Y <= 0 && b.Right() >= float64(bounds.Dx()) && b.Bottom() >= float64(bounds.Dy()) {
		f.clips = append(f.clips, parent)
		return
	}

	var mask *image.Alpha
	if radius > 0 {
		dc := gg.NewContext(bounds.Dx(), bounds.Dy())
		roundedRect(dc, b, f.px(radius), roundTop)
		dc.SetColor(color.White)
		dc.Fill()
		mask = dc.AsMask()
	} else {
		mask = image.NewAlpha(bounds)
		r := image.Rect(
			int(math.Round(b.X)), int(math.Round(b.Y)),
			int(math.Round(b.Right())), int(math.Round(b.Bottom())),
		).Intersect(bounds)
		draw.Draw(mask, r, image.Opaque, image.Point{}, draw.Src)
	}
	if parent != nil {
		for i := range mask.Pix {
			mask.Pix[i] = uint8(uint16(mask.Pix[i]) * uint16(parent.Pix[i]) / 255)
		}
	}
	f.clips = append(f.clips, mask)
	f.applyClip()
}

func (f *frame) popClip() {
	f.clips = f.clips[:len(f.clips)-1]
	f.applyClip()
}

func (f *frame) clip() *image.Alpha {
	if len(f.clips) == 0 {
		return nil
	}
	return f.clips[len(f.clips)-1]
}

// applyClip hands the active mask to gg so path fills respect it too.
func (f *frame) applyClip() {
	if m := f.clip(); m != nil {
		// Masks are allocated at the canvas bounds, so gg only rejects one
		// after a bug in pushClip. Fills then run unclipped.
		if err := f.dc.SetMask(m); err != nil {
			f.logger.Debug("clip mask rejected", "bounds", m.Bounds(), "error", err)
		}
		return
	}
	f.dc.ResetClip()
}
