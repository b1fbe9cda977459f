package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"github.com/ncassessoria/gerapost/pkg/fonts"
	"github.com/ncassessoria/gerapost/pkg/geometry"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/render"
	"github.com/ncassessoria/gerapost/pkg/scene"
)

func testRasterizer() *Rasterizer {
	return New(fonts.New("", fonts.WithoutSystemFonts()))
}

func solid(w, h int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func canvas(w, h float64, children ...*scene.Node) *scene.Node {
	root := &scene.Node{
		Kind:       scene.KindGroup,
		Role:       scene.RoleRoot,
		Box:        scene.Box{W: w, H: h},
		FontFamily: "Montserrat",
		Style:      scene.Style{Fill: color.NRGBA{255, 255, 255, 255}, Clip: true},
	}
	return root.Add(children...)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func at(img *image.RGBA, x, y int) color.RGBA { return img.RGBAAt(x, y) }

func TestRasterizeScalesOutput(t *testing.T) {
	r := testRasterizer()
	for _, f := range geometry.Formats() {
		p := post.Default()
		p.Format = f
		p.ImageURL = ""
		img, err := r.Rasterize(render.Render(p, render.ExportID), nil, 2)
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		size := geometry.Lookup(f)
		if b := img.Bounds(); b.Dx() != size.Width*2 || b.Dy() != size.Height*2 {
			t.Errorf("%s: bounds %v, want %dx%d", f, b, size.Width*2, size.Height*2)
		}
	}
}

func TestRasterizeDeterministic(t *testing.T) {
	r := testRasterizer()
	p := post.Default()
	p.TemplateID = 3
	p.ImageURL = "bg"
	p.Logo.URL = "logo"
	images := map[string]image.Image{
		"bg":   solid(64, 48, color.NRGBA{200, 40, 40, 255}),
		"logo": solid(20, 10, color.NRGBA{0, 0, 255, 255}),
	}

	encode := func() []byte {
		img, err := r.Rasterize(render.Render(p, render.ExportID), images, 2)
		if err != nil {
			t.Fatal(err)
		}
		data, err := PNG(img)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}
	if !bytes.Equal(encode(), encode()) {
		t.Error("two rasterizations of the same post differ")
	}
}

func TestRectAndClip(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	clip := &scene.Node{Kind: scene.KindGroup, Box: scene.Box{X: 0, Y: 0, W: 50, H: 50}, Style: scene.Style{Clip: true}}
	clip.Add(&scene.Node{Kind: scene.KindRect, Box: scene.Box{X: 0, Y: 0, W: 100, H: 100}, Style: scene.Style{Fill: red}})

	img, err := testRasterizer().Rasterize(canvas(100, 100, clip), nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if c := at(img, 10, 10); c.R != 255 || c.G != 0 {
		t.Errorf("inside clip = %v, want red", c)
	}
	if c := at(img, 80, 80); c.G != 255 {
		t.Errorf("outside clip = %v, want white", c)
	}
}

func TestOpacity(t *testing.T) {
	n := &scene.Node{Kind: scene.KindRect, Box: scene.Box{W: 10, H: 10}, Style: scene.Style{Fill: color.NRGBA{0, 0, 0, 255}, Opacity: 0.5}}
	img, err := testRasterizer().Rasterize(canvas(10, 10, n), nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if c := at(img, 5, 5); c.R < 120 || c.R > 135 {
		t.Errorf("half-opaque black over white = %v, want mid gray", c)
	}
}

func TestGradient(t *testing.T) {
	g := &scene.Node{
		Kind: scene.KindGradient,
		Box:  scene.Box{W: 100, H: 100},
		Style: scene.Style{Gradient: &scene.Gradient{Y0: 0, Y1: 1, Stops: []scene.Stop{
			{Offset: 0, Color: color.NRGBA{0, 0, 0, 255}},
			{Offset: 1, Color: color.NRGBA{0, 0, 0, 0}},
		}}},
	}
	img, err := testRasterizer().Rasterize(canvas(100, 100, g), nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	top, bottom := at(img, 50, 1), at(img, 50, 98)
	if top.R >= bottom.R {
		t.Errorf("gradient top %v should be darker than bottom %v", top, bottom)
	}
}

func TestCoverAnchor(t *testing.T) {
	// Left half red, right half blue; a square box keeps one half.
	src := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			c := color.NRGBA{255, 0, 0, 255}
			if x >= 100 {
				c = color.NRGBA{0, 0, 255, 255}
			}
			src.SetNRGBA(x, y, c)
		}
	}
	for _, tt := range []struct {
		anchor scene.Anchor
		red    bool
	}{
		{scene.AnchorLeft, true},
		{scene.AnchorRight, false},
	} {
		n := &scene.Node{Kind: scene.KindImage, Src: "bg", Box: scene.Box{W: 100, H: 100}, Style: scene.Style{Fit: scene.FitCover, Anchor: tt.anchor}}
		img, err := testRasterizer().Rasterize(canvas(100, 100, n), map[string]image.Image{"bg": src}, 1)
		if err != nil {
			t.Fatal(err)
		}
		c := at(img, 50, 50)
		if (c.R > c.B) != tt.red {
			t.Errorf("anchor %s: center pixel %v", tt.anchor, c)
		}
	}
}

func TestContainKeepsCentre(t *testing.T) {
	n := &scene.Node{Kind: scene.KindImage, Src: "logo", Box: scene.Box{X: 40, Y: 40, W: 20, H: 20}, Style: scene.Style{Fit: scene.FitContain}}
	src := solid(40, 10, color.NRGBA{0, 0, 0, 255}) // 4:1, drawn 20x5 around y=50
	img, err := testRasterizer().Rasterize(canvas(100, 100, n), map[string]image.Image{"logo": src}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if c := at(img, 50, 50); c.R > 40 {
		t.Errorf("logo centre = %v, want black", c)
	}
	if c := at(img, 50, 42); c.R < 250 {
		t.Errorf("above a wide logo = %v, want white", c)
	}
}

func TestMissingImage(t *testing.T) {
	n := &scene.Node{Kind: scene.KindImage, Src: "nope", Box: scene.Box{W: 10, H: 10}}
	_, err := testRasterizer().Rasterize(canvas(10, 10, n), nil, 1)
	var mie *MissingImageError
	if !errors.As(err, &mie) || mie.Src != "nope" {
		t.Errorf("err = %v, want MissingImageError", err)
	}
}

func TestEmptyScene(t *testing.T) {
	if _, err := testRasterizer().Rasterize(nil, nil, 2); !errors.Is(err, ErrEmptyScene) {
		t.Errorf("err = %v", err)
	}
}

func TestTextDrawsInk(t *testing.T) {
	n := &scene.Node{
		Kind:  scene.KindText,
		Text:  "Manchete",
		Box:   scene.Box{X: 10, Y: 10, W: 280, H: 40},
		Style: scene.Style{Color: color.NRGBA{0, 0, 0, 255}, FontSize: 32, Weight: 700, LineHeight: 1.2},
	}
	img, err := testRasterizer().Rasterize(canvas(300, 60, n), nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	dark := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 300; x++ {
			if at(img, x, y).R < 128 {
				dark++
			}
		}
	}
	if dark < 100 {
		t.Errorf("only %d dark pixels; text was not drawn", dark)
	}
}

func TestLayoutClamps(t *testing.T) {
	f := &frame{scale: 1, text: newTextEngine(fonts.New("", fonts.WithoutSystemFonts()), 1, false)}
	st := scene.Style{FontSize: 20, LineHeight: 1, MaxLines: 2}
	s, err := f.setter("Inter", st)
	if err != nil {
		t.Fatal(err)
	}
	text := strings.Repeat("palavra ", 40)
	lines := s.layout(text, st, scene.Box{W: 200, H: 1000}, 20)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.HasSuffix(lines[1].text, ellipsis) {
		t.Errorf("clamped line %q should end with an ellipsis", lines[1].text)
	}
	for _, l := range lines {
		if l.width > 200 {
			t.Errorf("line %q is %.1fpx wide", l.text, l.width)
		}
	}

	st.MaxLines = 0
	st.Clip = true
	lines = s.layout(text, st, scene.Box{W: 200, H: 60}, 20)
	if len(lines) != 3 || strings.HasSuffix(lines[2].text, ellipsis) {
		t.Errorf("clipped text: %d lines, last %q", len(lines), lines[len(lines)-1].text)
	}
}

func TestFitLabelKeepsAlignedEdge(t *testing.T) {
	f := &frame{scale: 1, text: newTextEngine(fonts.New("", fonts.WithoutSystemFonts()), 1, false)}
	for _, tt := range []struct {
		align scene.Align
		check func(before, after scene.Box) bool
	}{
		{scene.AlignLeft, func(b, a scene.Box) bool { return near(a.X, b.X) }},
		{scene.AlignRight, func(b, a scene.Box) bool { return near(a.Right(), b.Right()) }},
		{scene.AlignCenter, func(b, a scene.Box) bool { return near(a.X+a.W/2, b.X+b.W/2) }},
	} {
		n := &scene.Node{
			Kind:  scene.KindLabel,
			Text:  "Geral",
			Box:   scene.Box{X: 100, Y: 0, W: 500, H: 40},
			Style: scene.Style{FontSize: 20, Weight: 700, PadX: 10, ShrinkToFit: true, Align: tt.align},
		}
		before := n.Box
		if err := f.fit(n, "Inter"); err != nil {
			t.Fatal(err)
		}
		if n.Box.W >= before.W {
			t.Errorf("%s: width %.1f did not shrink", tt.align, n.Box.W)
		}
		if !tt.check(before, n.Box) {
			t.Errorf("%s: box moved from %+v to %+v", tt.align, before, n.Box)
		}
	}
}

func TestFitRowKeepsGap(t *testing.T) {
	f := &frame{scale: 1, text: newTextEngine(fonts.New("", fonts.WithoutSystemFonts()), 1, false)}
	icon := &scene.Node{Kind: scene.KindCircle, Box: scene.Box{X: 0, Y: 0, W: 32, H: 32}}
	text := &scene.Node{Kind: scene.KindText, Text: "@handle", Box: scene.Box{X: 40, Y: 6, W: 400, H: 20}, Style: scene.Style{FontSize: 20}}
	row := &scene.Node{Kind: scene.KindGroup, Box: scene.Box{W: 440, H: 32}, Style: scene.Style{ShrinkToFit: true}}
	row.Add(icon, text)

	if err := f.fit(row, "Inter"); err != nil {
		t.Fatal(err)
	}
	if text.Box.X != 40 {
		t.Errorf("text moved to %.1f", text.Box.X)
	}
	if got := row.Box.W - text.Box.W; !near(got, 40) {
		t.Errorf("icon and gap take %.1f, want 40", got)
	}
}

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	data, err := PNG(img)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width != 4 || cfg.Height != 3 {
		t.Errorf("decoded %+v, %v", cfg, err)
	}
	if uri := DataURI(data); !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("DataURI = %q", uri[:30])
	}
}

func TestRejectedClipMaskIsLogged(t *testing.T) {
	var buf bytes.Buffer
	f := &frame{
		dc:     gg.NewContext(10, 10),
		logger: log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}),
	}
	f.clips = append(f.clips, image.NewAlpha(image.Rect(0, 0, 5, 5)))
	f.applyClip()

	if !strings.Contains(buf.String(), "clip mask rejected") {
		t.Errorf("mismatched mask not logged: %q", buf.String())
	}
}
