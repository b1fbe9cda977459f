package templates

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ncassessoria/gerapost/pkg/geometry"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/scene"
)

// rem is the root font size all measurements are expressed in.
const rem = 16.0

// Palette.
var (
	white    = color.NRGBA{255, 255, 255, 255}
	black    = color.NRGBA{0, 0, 0, 255}
	slate50  = color.NRGBA{248, 250, 252, 255}
	slate100 = color.NRGBA{241, 245, 249, 255}
	slate200 = color.NRGBA{226, 232, 240, 255}
	slate300 = color.NRGBA{203, 213, 225, 255}
	slate500 = color.NRGBA{100, 116, 139, 255}
	slate600 = color.NRGBA{71, 85, 105, 255}
	slate800 = color.NRGBA{30, 41, 59, 255}
	slate900 = color.NRGBA{15, 23, 42, 255}
	gray100  = color.NRGBA{243, 244, 246, 255}
)

// Line heights and letter spacing.
const (
	leadingNone   = 1.0
	leadingTight  = 1.25
	leadingSnug   = 1.375
	leadingNormal = 1.5

	trackingTighter = -0.05
	trackingTight   = -0.025
	trackingWider   = 0.05
	trackingWidest  = 0.1
)

// Font weights.
const (
	light    = 300
	medium   = 500
	semibold = 600
	bold     = 700
	heavy    = 900
)

func alpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(a * 255))
	return c
}

func nrgba(c colorful.Color) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{r, g, b, 255}
}

func theme(p post.Post) color.NRGBA    { return nrgba(p.Theme()) }
func catColor(p post.Post) color.NRGBA { return nrgba(p.CategoryColor()) }

func full(size geometry.Size) scene.Box {
	return scene.Box{W: float64(size.Width), H: float64(size.Height)}
}

func frame(size geometry.Size) *scene.Node {
	return &scene.Node{Kind: scene.KindGroup, Role: scene.RoleTemplate, Box: full(size), Style: scene.Style{Clip: true}}
}

func rect(box scene.Box, fill color.NRGBA) *scene.Node {
	return &scene.Node{Kind: scene.KindRect, Box: box, Style: scene.Style{Fill: fill}}
}

// toTop is a vertical gradient running from the bottom edge upwards.
func toTop(box scene.Box, stops ...scene.Stop) *scene.Node {
	return &scene.Node{
		Kind:  scene.KindGradient,
		Role:  scene.RoleOverlay,
		Box:   box,
		Style: scene.Style{Gradient: &scene.Gradient{X0: 0, Y0: 1, X1: 0, Y1: 0, Stops: stops}},
	}
}

// toBottom is a vertical gradient running from the top edge downwards.
func toBottom(box scene.Box, stops ...scene.Stop) *scene.Node {
	n := toTop(box, stops...)
	n.Style.Gradient.Y0, n.Style.Gradient.Y1 = 0, 1
	return n
}

func stop(at float64, c color.NRGBA) scene.Stop { return scene.Stop{Offset: at, Color: c} }

var transparent = color.NRGBA{}

func anchor(p post.ImagePosition) scene.Anchor {
	switch p {
	case post.ImageLeft:
		return scene.AnchorLeft
	case post.ImageRight:
		return scene.AnchorRight
	default:
		return scene.AnchorCenter
	}
}

// background is the cover-fit image; nil when the post has no image.
func background(p post.Post, box scene.Box, grayscale float64) *scene.Node {
	if p.ImageURL == "" {
		return nil
	}
	return &scene.Node{
		Kind: scene.KindImage,
		Role: scene.RoleBackground,
		Box:  box,
		Src:  p.ImageURL,
		Style: scene.Style{
			Fit:       scene.FitCover,
			Anchor:    anchor(p.ImagePosition),
			Clip:      true,
			Grayscale: grayscale,
		},
	}
}

// logoWidth is the logo's width at scale 1.
const logoWidth = 200.0

// logo is centred on the percentage position and scaled about that centre.
// Its height is square until the rasterizer knows the image aspect.
func logo(p post.Post, size geometry.Size) *scene.Node {
	if !p.Logo.HasLogo() {
		return nil
	}
	w := logoWidth * p.Logo.Scale
	cx := p.Logo.X / 100 * float64(size.Width)
	cy := p.Logo.Y / 100 * float64(size.Height)
	return &scene.Node{
		Kind: scene.KindImage,
		Role: scene.RoleLogo,
		Box:  scene.Box{X: cx - w/2, Y: cy - w/2, W: w, H: w},
		Src:  p.Logo.URL,
		Style: scene.Style{
			Fit:    scene.FitContain,
			Shadow: &scene.Shadow{OffsetY: 4, Blur: 3, Color: alpha(black, 0.07)},
		},
	}
}

type tagStyle struct {
	size     float64
	padX     float64
	padY     float64
	radius   float64
	tracking float64
	minWidth float64
	fill     *color.NRGBA // defaults to the category color
	border   color.NRGBA
	shadow   *scene.Shadow
	centered bool // x is the centre of the tag
}

// categoryTag is a solid label sized to its text. It is nil when the
// category is hidden or empty, so no empty pill is ever drawn.
func categoryTag(p post.Post, x, y float64, ts tagStyle) *scene.Node {
	if !p.ShowsCategory() {
		return nil
	}
	fill := catColor(p)
	if ts.fill != nil {
		fill = *ts.fill
	}
	st := scene.Style{
		Fill:       fill,
		Radius:     ts.radius,
		Shadow:     ts.shadow,
		Stroke:     ts.border,
		Color:      white,
		FontSize:   ts.size,
		Weight:     bold,
		LineHeight: leadingNormal,
		Tracking:   ts.tracking,
		Uppercase:  true,
		Align:      scene.AlignLeft,
		NoWrap:     true,
		PadX:       ts.padX,
		PadY:       ts.padY,
		MinWidth:   ts.minWidth,
	}
	if ts.border.A > 0 {
		st.StrokeW = 2
	}
	// Align is the edge that stays put when the label is re-fitted to its
	// measured text; the text itself is always centred.
	n := &scene.Node{Kind: scene.KindLabel, Role: scene.RoleCategory, Text: p.Category, Style: st}
	textW := scene.EstimateWidth(n.DisplayText(), ts.size, ts.tracking, bold)
	w := math.Max(ts.minWidth, textW+2*ts.padX)
	h := ts.size*leadingNormal + 2*ts.padY
	if ts.centered {
		x -= w / 2
		st.Align = scene.AlignCenter
	}
	n.Box = scene.Box{X: x, Y: y, W: w, H: h}
	return n
}

// Footer measurements.
const (
	footerBorder = 2.0
	footerPadTop = 1.5 * rem
	footerItemH  = 2 * rem
	footerHeight = footerBorder + footerPadTop + footerItemH
	footerGap    = 0.5 * rem
	footerCenter = 3 * rem
	instaSize    = 1.25 * rem
	urlSize      = 1.125 * rem
)

type footerTheme int

const (
	footerLight footerTheme = iota
	footerDark
)

// footer is the handles row with a top rule. It is nil when both items are
// hidden. Items either spread to the edges or sit centred as a group.
func footer(p post.Post, x, y, w float64, th footerTheme, center bool) *scene.Node {
	if !p.ShowsFooter() {
		return nil
	}
	text, icon, ring, rule := slate800, slate900, slate900, slate300
	if th == footerDark {
		text, icon, ring, rule = white, white, white, alpha(white, 0.2)
	}

	g := &scene.Node{Kind: scene.KindGroup, Role: scene.RoleFooter, Box: scene.Box{X: x, Y: y, W: w, H: footerHeight}}
	g.Add(rect(scene.Box{X: x, Y: y, W: w, H: footerBorder}, rule))
	iy := y + footerBorder + footerPadTop

	var insta, site *scene.Node
	if p.ShowInsta {
		insta = footerItem(scene.RoleFooterInsta, p.Instagram, instaSize, bold, 1, text, func(b scene.Box) []*scene.Node {
			circle := &scene.Node{Kind: scene.KindCircle, Box: b, Style: scene.Style{Stroke: ring, StrokeW: 2}}
			glyph := &scene.Node{Kind: scene.KindIcon, Icon: scene.IconInstagram, Box: inset(b, 7), Style: scene.Style{Color: icon, StrokeW: 2}}
			return []*scene.Node{circle, glyph}
		})
	}
	if p.ShowURL {
		site = footerItem(scene.RoleFooterURL, p.SiteURL, urlSize, semibold, 0.9, text, func(b scene.Box) []*scene.Node {
			return []*scene.Node{{Kind: scene.KindIcon, Icon: scene.IconGlobe, Box: inset(b, 5), Style: scene.Style{Color: text, StrokeW: 2, Opacity: 0.9}}}
		})
		site.Style.Align = scene.AlignRight
	}

	switch {
	case center:
		total := 0.0
		for _, it := range []*scene.Node{insta, site} {
			if it != nil {
				total += it.Box.W
			}
		}
		if insta != nil && site != nil {
			total += footerCenter
		}
		cx := x + (w-total)/2
		for _, it := range []*scene.Node{insta, site} {
			if it == nil {
				continue
			}
			it.Style.Align = scene.AlignCenter
			scene.Translate(it, cx, iy)
			cx += it.Box.W + footerCenter
		}
	default:
		if insta != nil {
			scene.Translate(insta, x, iy)
		}
		if site != nil {
			scene.Translate(site, x+w-site.Box.W, iy)
		}
	}
	return g.Add(insta, site)
}

// footerItem lays an icon and a label left to right at the origin; the
// caller translates it into place.
func footerItem(role scene.Role, label string, size float64, weight int, opacity float64, c color.NRGBA, glyphs func(scene.Box) []*scene.Node) *scene.Node {
	iconBox := scene.Box{W: footerItemH, H: footerItemH}
	textW := scene.EstimateWidth(label, size, 0, weight)
	t := &scene.Node{
		Kind: scene.KindText,
		Text: label,
		Box:  scene.Box{X: footerItemH + footerGap, Y: (footerItemH - size) / 2, W: textW, H: size},
		Style: scene.Style{
			Color:      c,
			FontSize:   size,
			Weight:     weight,
			LineHeight: leadingNone,
			Opacity:    opacity,
		},
	}
	item := &scene.Node{Kind: scene.KindGroup, Role: role, Box: scene.Box{W: footerItemH + footerGap + textW, H: footerItemH}}
	item.Add(glyphs(iconBox)...)
	return item.Add(t)
}

func inset(b scene.Box, d float64) scene.Box {
	return scene.Box{X: b.X + d, Y: b.Y + d, W: b.W - 2*d, H: b.H - 2*d}
}
