package templates

import (
	"github.com/ncassessoria/gerapost/pkg/geometry"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/scene"
)

// Shadows.
var (
	shadowMD  = &scene.Shadow{OffsetY: 4, Blur: 6, Color: alpha(black, 0.1)}
	shadowLG  = &scene.Shadow{OffsetY: 10, Blur: 15, Color: alpha(black, 0.1)}
	shadowXL  = &scene.Shadow{OffsetY: 20, Blur: 25, Color: alpha(black, 0.1)}
	shadow2XL = &scene.Shadow{OffsetY: 25, Blur: 50, Color: alpha(black, 0.25)}
)

// pill is a radius large enough to round a label into a capsule.
const pill = 999

func accent(box scene.Box, p post.Post) *scene.Node {
	n := rect(box, theme(p))
	n.Role = scene.RoleAccent
	return n
}

func dims(size geometry.Size) (float64, float64) {
	return float64(size.Width), float64(size.Height)
}

func bottomPad(p post.Post, story, feed float64) float64 {
	if p.Format.IsStory() {
		return story
	}
	return feed
}

// classicSplit puts the image on the top 60% and a white text panel below a
// theme-colored strip.
func classicSplit(p post.Post, size geometry.Size) *scene.Node {
	W, H := dims(size)
	f := frame(size)
	f.Add(rect(full(size), white))

	imgH := 0.6 * H
	img := &scene.Node{Kind: scene.KindGroup, Box: scene.Box{W: W, H: imgH}, Style: scene.Style{Clip: true}}
	img.Add(
		background(p, scene.Box{W: W, H: imgH}, 0),
		toBottom(scene.Box{W: W, H: 10 * rem}, stop(0, alpha(black, 0.5)), stop(1, transparent)),
	)
	f.Add(img, accent(scene.Box{Y: imgH, W: W, H: rem}, p))

	padTop, padBottom := 2*rem, 2*rem
	if p.Format.IsStory() {
		padTop, padBottom = 1.5*rem, 8*rem
	}
	c := newColumn(2.5*rem, imgH+padTop+1.5*rem, W-5*rem)
	c.add(categoryTag(p, c.x, c.y, tagStyle{size: 1.6 * rem, padX: 1.5 * rem, padY: 0.75 * rem, radius: 2, tracking: trackingWidest, shadow: shadowMD}), 1.5*rem)
	c.text(scene.RoleHeadline, p.Headline, scene.Style{Color: slate900, FontSize: 3.2 * rem, Weight: heavy, LineHeight: 1.1, Tracking: trackingTight}, rem)
	c.text(scene.RoleSubtitle, p.Subtitle, scene.Style{Color: slate500, FontSize: 1.7 * rem, LineHeight: leadingSnug, MaxLines: 4}, 0.5*rem)

	footY := H - padBottom - footerHeight
	if p.ShowsFooter() {
		c.fitBelow(footY)
	} else {
		c.fitBelow(H - padBottom)
	}
	f.Add(c.group()...)
	return f.Add(footer(p, c.x, footY, c.w, footerLight, false), logo(p, size))
}

// fullDarkOverlay darkens the whole image from the bottom and pins the tag
// to the top edge.
func fullDarkOverlay(p post.Post, size geometry.Size) *scene.Node {
	W, H := dims(size)
	f := frame(size)
	ov := toTop(full(size), stop(0, black), stop(0.5, alpha(black, 0.8)), stop(1, transparent))
	ov.Style.Opacity = 0.95
	f.Add(rect(full(size), slate900), background(p, full(size), 0), ov, logo(p, size))

	pad := 3 * rem
	ceiling := pad + 2.5*rem
	tag := categoryTag(p, pad, ceiling, tagStyle{size: 1.6 * rem, padX: 2 * rem, padY: 0.75 * rem, radius: pill, tracking: trackingWidest, shadow: shadowXL})
	if tag != nil {
		ceiling = tag.Box.Bottom() + 1.5*rem
	}

	c := newColumn(pad, 0, W-2*pad)
	c.add(accent(scene.Box{X: c.x, Y: c.y, W: 6 * rem, H: 0.75 * rem}, p), 2*rem)
	c.text(scene.RoleHeadline, p.Headline, scene.Style{Color: white, FontSize: 3.6 * rem, Weight: heavy, LineHeight: 1.05, Shadow: shadow2XL}, 1.5*rem)
	c.ruled(p.Subtitle, scene.Style{Color: slate200, FontSize: 1.9 * rem, Weight: medium, LineHeight: leadingNormal, MaxLines: 4}, 8, 1.5*rem, alpha(white, 0.3), 2.5*rem)
	c.add(footer(p, c.x, c.y, c.w, footerDark, false), 0)
	c.fitAbove(ceiling, H-bottomPad(p, 10*rem, pad))

	return f.Add(tag).Add(c.group()...)
}

// floatingCard sets the text on a white card with rounded top corners,
// floating over the image above a theme-colored bottom border.
func floatingCard(p post.Post, size geometry.Size) *scene.Node {
	W, H := dims(size)
	f := frame(size)
	ov := rect(full(size), alpha(slate900, 0.4))
	ov.Role = scene.RoleOverlay
	f.Add(rect(full(size), slate50), background(p, full(size), 0), ov, logo(p, size))

	margin := 2 * rem
	cardW := W - 2*margin
	pad, padBottom, border := 2.5*rem, 2*rem, rem

	c := newColumn(margin+pad, pad, cardW-2*pad)
	c.add(categoryTag(p, c.x, c.y, tagStyle{size: 1.6 * rem, padX: 1.5 * rem, padY: 0.75 * rem, radius: 4, tracking: trackingWidest, shadow: shadowMD}), 1.5*rem)
	c.text(scene.RoleHeadline, p.Headline, scene.Style{Color: slate900, FontSize: 3.1 * rem, Weight: bold, LineHeight: leadingTight}, 1.25*rem)
	c.text(scene.RoleSubtitle, p.Subtitle, scene.Style{Color: slate600, FontSize: 1.6 * rem, LineHeight: leadingSnug, MaxLines: 4}, 1.5*rem)
	c.add(footer(p, c.x, c.y, c.w, footerLight, false), 0)

	cardBottom := H - bottomPad(p, 10*rem, 4*rem)
	cardH := func() float64 { return c.y + padBottom + border }
	if top := cardBottom - cardH(); top < margin {
		c.shrinkHeadline(margin - top)
	}
	cardTop := cardBottom - cardH()
	c.shift(cardTop)

	box := scene.Box{X: margin, Y: cardTop, W: cardW, H: cardBottom - cardTop}
	shadow := &scene.Node{Kind: scene.KindRect, Box: scene.Box{X: box.X, Y: box.Y + rem, W: box.W, H: box.H}, Style: scene.Style{Fill: alpha(black, 0.4), Blur: 24, Radius: 1.5 * rem, RoundTop: true}}
	card := &scene.Node{Kind: scene.KindRect, Role: scene.RoleCard, Box: box, Style: scene.Style{Fill: white, Radius: 1.5 * rem, RoundTop: true}}
	card.Add(accent(scene.Box{X: box.X, Y: cardBottom - border, W: box.W, H: border}, p))
	card.Add(c.group()...)
	return f.Add(shadow, card)
}

// cleanDark is a full-bleed image with a double gradient and the text block
// at the bottom, the subtitle ruled in the theme color.
func cleanDark(p post.Post, size geometry.Size) *scene.Node {
	W, H := dims(size)
	f := frame(size)
	f.Add(
		rect(full(size), black),
		background(p, full(size), 0),
		toTop(full(size), stop(0, black), stop(0.5, alpha(black, 0.6)), stop(1, transparent)),
		toBottom(full(size), stop(0, alpha(black, 0.4)), stop(0.5, transparent), stop(1, transparent)),
		logo(p, size),
	)

	pad := 3 * rem
	textShadow := &scene.Shadow{OffsetY: 2, Blur: 20, Color: alpha(black, 0.8)}
	c := newColumn(pad, 0, W-2*pad)
	c.add(categoryTag(p, c.x, c.y, tagStyle{size: 1.6 * rem, padX: 1.5 * rem, padY: 0.75 * rem, radius: 8, tracking: trackingWidest, minWidth: 150, shadow: &scene.Shadow{OffsetY: 4, Blur: 15, Color: alpha(black, 0.4)}}), 2*rem)
	c.text(scene.RoleHeadline, p.Headline, scene.Style{Color: white, FontSize: 3.8 * rem, Weight: heavy, LineHeight: leadingNone, Shadow: textShadow}, 2*rem)
	c.ruled(p.Subtitle, scene.Style{Color: slate100, FontSize: 1.8 * rem, Weight: medium, LineHeight: leadingSnug, MaxLines: 4, Shadow: &scene.Shadow{OffsetY: 2, Blur: 10, Color: alpha(black, 0.8)}}, 4, 1.5*rem, theme(p), 2*rem)
	c.space(0.5 * rem)
	c.add(footer(p, c.x, c.y, c.w, footerDark, false), 0)
	c.fitAbove(pad, H-bottomPad(p, 11*rem, 4*rem))

	return f.Add(c.group()...)
}

// modernEditorial splits image and text like classicSplit but floats a
// large badge over the seam.
func modernEditorial(p post.Post, size geometry.Size) *scene.Node {
	W, H := dims(size)
	f := frame(size)
	f.Add(rect(full(size), white))

	imgH := 0.6 * H
	if p.Format.IsStory() {
		imgH = 0.55 * H
	}
	img := &scene.Node{Kind: scene.KindGroup, Box: scene.Box{W: W, H: imgH}, Style: scene.Style{Clip: true}}
	img.Add(
		background(p, scene.Box{W: W, H: imgH}, 0),
		toTop(scene.Box{Y: imgH - 8*rem, W: W, H: 8 * rem}, stop(0, alpha(black, 0.4)), stop(1, transparent)),
	)
	f.Add(img, logo(p, size))

	padX := 2.5 * rem
	c := newColumn(padX, imgH+3*rem, W-2*padX)
	c.text(scene.RoleHeadline, p.Headline, scene.Style{Color: slate900, FontSize: 3.4 * rem, Weight: heavy, LineHeight: 1.1, Tracking: trackingTight}, 1.5*rem)
	c.text(scene.RoleSubtitle, p.Subtitle, scene.Style{Color: slate600, FontSize: 1.7 * rem, Weight: light, LineHeight: leadingSnug, MaxLines: 4}, 0)

	footY := H - bottomPad(p, 10*rem, 2.5*rem) - footerHeight
	if p.ShowsFooter() {
		c.fitBelow(footY - 1.5*rem)
	} else {
		c.fitBelow(footY + footerHeight)
	}
	f.Add(c.group()...)
	f.Add(footer(p, c.x, footY, c.w, footerLight, false))

	return f.Add(categoryTag(p, padX, imgH-1.75*rem, tagStyle{size: 1.8 * rem, padX: 2 * rem, padY: rem, tracking: trackingWidest, shadow: shadowLG}))
}

// centeredModern centres every block over a soft full-height gradient.
func centeredModern(p post.Post, size geometry.Size) *scene.Node {
	W, H := dims(size)
	f := frame(size)
	f.Add(
		rect(full(size), slate900),
		background(p, full(size), 0),
		toTop(full(size), stop(0, black), stop(0.5, alpha(black, 0.5)), stop(1, alpha(black, 0.3))),
		logo(p, size),
	)

	pad := 3 * rem
	c := newColumn(pad, 0, W-2*pad)
	c.add(categoryTag(p, W/2, c.y, tagStyle{
		size: 1.6 * rem, padX: 2.5 * rem, padY: 0.75 * rem, radius: pill, tracking: trackingWidest,
		border: alpha(white, 0.2), shadow: &scene.Shadow{Blur: 20, Color: alpha(black, 0.3)}, centered: true,
	}), 1.5*rem)
	c.text(scene.RoleHeadline, p.Headline, scene.Style{Color: white, FontSize: 3.8 * rem, Weight: heavy, LineHeight: 1.05, Align: scene.AlignCenter, Shadow: &scene.Shadow{OffsetY: 4, Blur: 30, Color: alpha(black, 0.9)}}, 2*rem)
	if p.Subtitle != "" {
		sw := c.w * 0.95
		sub := textBlock(scene.RoleSubtitle, p.Subtitle, c.x+(c.w-sw)/2, c.y, sw, scene.Style{Color: slate200, FontSize: 1.9 * rem, Weight: medium, LineHeight: leadingSnug, Align: scene.AlignCenter, MaxLines: 4, Shadow: &scene.Shadow{OffsetY: 2, Blur: 15, Color: alpha(black, 0.8)}})
		c.add(sub, 2.5*rem)
	}
	bar := accent(scene.Box{X: W/2 - 3*rem, Y: c.y, W: 6 * rem, H: 0.375 * rem}, p)
	bar.Style.Radius = pill
	c.add(bar, 2*rem)
	c.add(footer(p, c.x, c.y, c.w, footerDark, true), 0)
	c.fitAbove(pad, H-bottomPad(p, 6*rem, pad))

	return f.Add(c.group()...)
}

// bottomEdgeStrip keeps the text block high and anchors the footer to a
// solid theme strip along the bottom edge.
func bottomEdgeStrip(p post.Post, size geometry.Size) *scene.Node {
	W, H := dims(size)
	f := frame(size)
	f.Add(
		rect(full(size), slate900),
		background(p, full(size), 0),
		toTop(full(size), stop(0, black), stop(0.5, alpha(black, 0.6)), stop(1, transparent)),
		logo(p, size),
	)

	padX := 2.5 * rem
	c := newColumn(padX, 0, W-2*padX)
	c.add(categoryTag(p, c.x, c.y, tagStyle{size: 1.4 * rem, padX: 1.25 * rem, padY: 0.5 * rem, radius: 2, tracking: trackingWider, shadow: shadowLG}), rem)
	c.text(scene.RoleHeadline, p.Headline, scene.Style{Color: white, FontSize: 3.5 * rem, Weight: heavy, LineHeight: leadingNone, Shadow: shadow2XL}, 1.5*rem)
	c.ruled(p.Subtitle, scene.Style{Color: gray100, FontSize: 1.7 * rem, Weight: medium, LineHeight: leadingSnug, MaxLines: 4, Shadow: shadowLG}, 4, 1.5*rem, alpha(white, 0.4), 0)
	c.fitAbove(3*rem, H-bottomPad(p, 20*rem, 10*rem))
	f.Add(c.group()...)

	strip := 1.5 * rem
	areaH := rem + 1.5*rem
	if p.ShowsFooter() {
		areaH += footerHeight
	}
	areaTop := H - strip - areaH
	return f.Add(
		toTop(scene.Box{Y: areaTop, W: W, H: areaH}, stop(0, black), stop(0.5, alpha(black, 0.8)), stop(1, transparent)),
		footer(p, padX, areaTop+rem, W-2*padX, footerDark, false),
		accent(scene.Box{Y: H - strip, W: W, H: strip}, p),
	)
}

// elegantGradient introduces the category with a glowing theme dot and sets
// the footer on a frosted panel.
func elegantGradient(p post.Post, size geometry.Size) *scene.Node {
	W, H := dims(size)
	f := frame(size)
	f.Add(
		rect(full(size), slate900),
		background(p, full(size), 0),
		toTop(full(size), stop(0, black), stop(0.5, alpha(black, 0.7)), stop(1, transparent)),
		logo(p, size),
	)

	pad := 3 * rem
	c := newColumn(pad, 0, W-2*pad)
	if label := categoryTag(p, c.x+2*rem, c.y, tagStyle{size: 1.6 * rem, tracking: 0.2, fill: &transparent}); label != nil {
		dot := rem
		row := &scene.Node{Kind: scene.KindGroup, Box: scene.Box{X: c.x, Y: c.y, W: c.w, H: label.Box.H}}
		row.Add(&scene.Node{
			Kind: scene.KindCircle,
			Box:  scene.Box{X: c.x, Y: c.y + (label.Box.H-dot)/2, W: dot, H: dot},
			Style: scene.Style{
				Fill:    theme(p),
				Stroke:  alpha(white, 0.2),
				StrokeW: 2,
				Shadow:  &scene.Shadow{Blur: 12, Color: alpha(white, 0.8)},
			},
		}, label)
		c.add(row, 1.5*rem)
	}
	c.text(scene.RoleHeadline, p.Headline, scene.Style{Color: white, FontSize: 3.6 * rem, Weight: heavy, LineHeight: leadingNone, Shadow: shadow2XL}, 1.5*rem)
	c.ruled(p.Subtitle, scene.Style{Color: slate200, FontSize: 1.8 * rem, Weight: medium, LineHeight: leadingSnug, MaxLines: 4, Shadow: shadowLG}, 4, 1.5*rem, theme(p), 2*rem)
	if p.ShowsFooter() {
		inner := 1.25 * rem
		box := scene.Box{X: c.x, Y: c.y, W: c.w, H: footerHeight + 2*inner}
		glass := &scene.Node{Kind: scene.KindRect, Box: box, Style: scene.Style{Fill: alpha(white, 0.1), Stroke: alpha(white, 0.1), StrokeW: 1, Radius: 0.75 * rem, Shadow: shadowLG}}
		glass.Add(footer(p, box.X+inner, box.Y+inner, box.W-2*inner, footerDark, false))
		c.add(glass, 0)
	}
	c.fitAbove(pad, H-bottomPad(p, 10*rem, pad))

	return f.Add(c.group()...)
}

// brandGradient washes a desaturated image with the theme color and sets
// oversized, tightly tracked type.
func brandGradient(p post.Post, size geometry.Size) *scene.Node {
	W, H := dims(size)
	f := frame(size)
	wash := toTop(full(size), stop(0, theme(p)), stop(1, alpha(theme(p), 0)))
	wash.Style.Opacity = 0.9
	f.Add(
		rect(full(size), slate900),
		background(p, full(size), 0.5),
		wash,
		toTop(full(size), stop(0, alpha(black, 0.9)), stop(0.5, alpha(black, 0.4)), stop(1, transparent)),
		logo(p, size),
	)

	pad := 3 * rem
	c := newColumn(pad, 0, W-2*pad)
	c.add(categoryTag(p, c.x, c.y, tagStyle{size: 1.8 * rem, tracking: 0.3, fill: &transparent}), 2*rem)
	c.text(scene.RoleHeadline, p.Headline, scene.Style{Color: white, FontSize: 4 * rem, Weight: heavy, LineHeight: 0.95, Tracking: trackingTighter}, 2*rem)
	c.ruled(p.Subtitle, scene.Style{Color: alpha(white, 0.9), FontSize: 1.8 * rem, Weight: light, LineHeight: leadingSnug, MaxLines: 4}, 2, 1.5*rem, alpha(white, 0.4), 2.5*rem)
	c.add(footer(p, c.x, c.y, c.w, footerDark, false), 0)
	c.fitAbove(pad, H-bottomPad(p, 10*rem, pad))

	return f.Add(c.group()...)
}
