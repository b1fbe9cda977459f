package raster

import (
	"image"
	"image/color"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ncassessoria/gerapost/pkg/fonts"
	"github.com/ncassessoria/gerapost/pkg/scene"
)

const ellipsis = "…"

type faceKey struct {
	family string
	weight int
	px     float64
}

// textEngine opens faces at device size and caches them for one call.
type textEngine struct {
	lib     *fonts.Library
	scale   float64
	hinting bool
	faces   map[faceKey]font.Face
}

func newTextEngine(lib *fonts.Library, scale float64, hinting bool) *textEngine {
	return &textEngine{lib: lib, scale: scale, hinting: hinting, faces: make(map[faceKey]font.Face)}
}

// face returns the face for st at device size.
func (t *textEngine) face(family string, st scene.Style) (font.Face, error) {
	k := faceKey{family: family, weight: st.Weight, px: st.FontSize * t.scale}
	if f, ok := t.faces[k]; ok {
		return f, nil
	}
	tf, err := t.lib.Font(family, st.Weight)
	if err != nil {
		return nil, err
	}
	f := fonts.Face(tf, k.px, t.hinting)
	t.faces[k] = f
	return f, nil
}

// line is a run of text measured in device pixels.
type line struct {
	text  string
	width float64
}

// setter measures and wraps with one face and letter spacing.
type setter struct {
	face  font.Face
	track float64 // device pixels added after each rune
}

func (s setter) measure(text string) float64 {
	w := fix(font.MeasureString(s.face, text))
	return w + s.track*float64(utf8.RuneCountInString(text))
}

// wrap breaks text into lines no wider than width, keeping explicit
// newlines. A word wider than width gets a line of its own.
func (s setter) wrap(text string, width float64) []line {
	var out []line
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, line{})
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			next := cur + " " + w
			if s.measure(next) > width {
				out = append(out, line{cur, s.measure(cur)})
				cur = w
				continue
			}
			cur = next
		}
		out = append(out, line{cur, s.measure(cur)})
	}
	return out
}

// truncate shortens text until text plus an ellipsis fits width.
func (s setter) truncate(text string, width float64) line {
	runes := []rune(strings.TrimRight(text, " "))
	for len(runes) > 0 {
		cand := strings.TrimRight(string(runes), " ") + ellipsis
		if w := s.measure(cand); w <= width {
			return line{cand, w}
		}
		runes = runes[:len(runes)-1]
	}
	return line{ellipsis, s.measure(ellipsis)}
}

// layout returns the lines of a text node as drawn: wrapped (unless NoWrap)
// and clamped to MaxLines and to the lines the box holds. Clamped text
// gets an ellipsis unless the node clips instead.
func (s setter) layout(text string, st scene.Style, box scene.Box, lineH float64) []line {
	var lines []line
	if st.NoWrap {
		flat := strings.Join(strings.Fields(text), " ")
		lines = []line{{flat, s.measure(flat)}}
	} else {
		lines = s.wrap(text, box.W)
	}

	limit := len(lines)
	if st.MaxLines > 0 {
		limit = min(limit, st.MaxLines)
	}
	if box.H > 0 && lineH > 0 {
		limit = min(limit, max(1, int(math.Floor(box.H/lineH+0.01))))
	}
	if limit >= len(lines) {
		return lines
	}
	lines = lines[:limit]
	if !st.Clip {
		last := lines[limit-1].text
		lines[limit-1] = s.truncate(last+" ", box.W)
	}
	return lines
}

func (f *frame) setter(family string, st scene.Style) (setter, error) {
	face, err := f.text.face(family, st)
	if err != nil {
		return setter{}, err
	}
	return setter{face: face, track: st.Tracking * st.FontSize * f.scale}, nil
}

func lineHeight(st scene.Style) float64 {
	if st.LineHeight <= 0 {
		return 1.2
	}
	return st.LineHeight
}

func (f *frame) drawText(n *scene.Node, family string, opacity float64) error {
	text := n.DisplayText()
	if text == "" {
		return nil
	}
	st := n.Style
	s, err := f.setter(family, st)
	if err != nil {
		return err
	}
	b := f.dev(n.Box)
	lh := st.FontSize * lineHeight(st) * f.scale
	lines := s.layout(text, st, b, lh)
	f.paintLines(s, lines, b, lh, st, opacity)
	return nil
}

// drawLabel paints a filled tag with its text centred on one line.
func (f *frame) drawLabel(n *scene.Node, family string, opacity float64) error {
	f.drawRect(n, opacity)

	text := n.DisplayText()
	if text == "" {
		return nil
	}
	st := n.Style
	s, err := f.setter(family, st)
	if err != nil {
		return err
	}
	b := f.dev(n.Box)
	inner := scene.Box{
		X: b.X + f.px(st.PadX),
		Y: b.Y + f.px(st.PadY),
		W: b.W - 2*f.px(st.PadX),
		H: b.H - 2*f.px(st.PadY),
	}
	lh := st.FontSize * lineHeight(st) * f.scale
	st.NoWrap = true
	st.Align = scene.AlignCenter
	st.Shadow = nil
	lines := s.layout(text, st, scene.Box{X: inner.X, Y: inner.Y, W: inner.W}, 0)
	if lines[0].width > inner.W {
		lines[0] = s.truncate(lines[0].text, inner.W)
	}
	f.paintLines(s, lines, inner, lh, st, opacity)
	return nil
}

// paintLines draws lines into a layer, with an optional blurred shadow
// layer under it, and composites both.
func (f *frame) paintLines(s setter, lines []line, b scene.Box, lh float64, st scene.Style, opacity float64) {
	m := s.face.Metrics()
	ascent, descent := fix(m.Ascent), fix(m.Descent)

	pad := lh
	if sh := st.Shadow; sh != nil {
		pad += 3*f.px(sh.Blur)/2 + math.Abs(f.px(sh.OffsetY))
	}
	ox, oy := math.Floor(b.X-pad), math.Floor(b.Y-pad)
	w := int(math.Ceil(b.W + 2*pad))
	h := int(math.Ceil(float64(len(lines))*lh + 2*pad))
	for _, l := range lines {
		w = max(w, int(math.Ceil(l.width+2*pad)))
	}

	render := func(c color.NRGBA, dy float64) *image.RGBA {
		layer := image.NewRGBA(image.Rect(0, 0, w, h))
		d := &font.Drawer{Dst: layer, Src: image.NewUniform(c), Face: s.face}
		for i, l := range lines {
			x := b.X
			switch st.Align {
			case scene.AlignCenter:
				x += (b.W - l.width) / 2
			case scene.AlignRight:
				x += b.W - l.width
			}
			base := b.Y + float64(i)*lh + (lh-(ascent+descent))/2 + ascent + dy
			d.Dot = fixed.Point26_6{X: toFixed(x - ox), Y: toFixed(base - oy)}
			if s.track == 0 {
				d.DrawString(l.text)
				continue
			}
			for _, r := range l.text {
				d.DrawString(string(r))
				d.Dot.X += toFixed(s.track)
			}
		}
		return layer
	}

	at := image.Pt(int(ox), int(oy))
	if sh := st.Shadow; sh != nil && sh.Color.A > 0 {
		layer := render(faded(sh.Color, opacity), f.px(sh.OffsetY))
		f.blit(blur(layer, f.px(sh.Blur)/2), at, 1)
	}
	f.blit(render(faded(st.Color, opacity), 0), at, 1)
}

func fix(v fixed.Int26_6) float64 { return float64(v) / 64 }

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }
