package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/ncassessoria/gerapost/pkg/scene"
)

func (f *frame) drawImage(n *scene.Node, opacity float64) error {
	src, ok := f.images[n.Src]
	if !ok || src == nil {
		return &MissingImageError{Src: n.Src}
	}
	st := n.Style
	b := f.dev(n.Box)

	var img *image.NRGBA
	switch st.Fit {
	case scene.FitContain:
		b, img = contain(src, b)
	default:
		img = cover(src, b, st.Anchor)
	}
	if img == nil {
		return nil
	}
	if st.Grayscale > 0 {
		img = imaging.AdjustSaturation(img, -100*math.Min(st.Grayscale, 1))
	}
	if st.Blur > 0 {
		img = blur(img, f.px(st.Blur))
	}
	if st.Radius > 0 {
		roundCorners(img, f.px(st.Radius))
	}

	at := image.Pt(int(math.Round(b.X)), int(math.Round(b.Y)))
	if sh := st.Shadow; sh != nil && sh.Color.A > 0 {
		f.dropShadow(img, at, sh, opacity)
	}
	f.blit(img, at, opacity)
	return nil
}

// cover scales src to fill the box, cropping the overflow. The anchor
// picks which horizontal part survives the crop.
func cover(src image.Image, b scene.Box, a scene.Anchor) *image.NRGBA {
	w, h := int(math.Round(b.W)), int(math.Round(b.H))
	if w <= 0 || h <= 0 {
		return nil
	}
	pos := imaging.Center
	switch a {
	case scene.AnchorLeft:
		pos = imaging.Left
	case scene.AnchorRight:
		pos = imaging.Right
	}
	return imaging.Fill(src, w, h, pos, imaging.Lanczos)
}

// contain scales src to the box width with its own aspect ratio and centres
// it vertically on the box. It returns the box actually covered.
func contain(src image.Image, b scene.Box) (scene.Box, *image.NRGBA) {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 || b.W <= 0 {
		return b, nil
	}
	h := b.W * float64(sb.Dy()) / float64(sb.Dx())
	out := scene.Box{X: b.X, Y: b.Y + b.H/2 - h/2, W: b.W, H: h}

	w, ih := int(math.Round(out.W)), int(math.Round(out.H))
	if w <= 0 || ih <= 0 {
		return out, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, ih))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, xdraw.Src, nil)
	return out, dst
}

// roundCorners clears the pixels of img outside a rounded rectangle.
func roundCorners(img *image.NRGBA, radius float64) {
	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawRoundedRectangle(0, 0, float64(b.Dx()), float64(b.Dy()), math.Min(radius, float64(min(b.Dx(), b.Dy()))/2))
	dc.SetColor(color.White)
	dc.Fill()
	mask := dc.AsMask()
	for i, a := range mask.Pix {
		p := 4*i + 3
		img.Pix[p] = uint8(uint16(img.Pix[p]) * uint16(a) / 255)
	}
}

// dropShadow draws the blurred silhouette of img, the way a CSS
// drop-shadow filter follows the image's own transparency.
func (f *frame) dropShadow(img *image.NRGBA, at image.Point, sh *scene.Shadow, opacity float64) {
	sigma := f.px(sh.Blur) / 2
	m := int(math.Ceil(3*sigma)) + 1
	b := img.Bounds()
	c := faded(sh.Color, opacity)

	sil := image.NewNRGBA(image.Rect(0, 0, b.Dx()+2*m, b.Dy()+2*m))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a := img.Pix[img.PixOffset(x, y)+3]
			if a == 0 {
				continue
			}
			o := sil.PixOffset(x+m, y+m)
			sil.Pix[o], sil.Pix[o+1], sil.Pix[o+2] = c.R, c.G, c.B
			sil.Pix[o+3] = uint8(uint16(a) * uint16(c.A) / 255)
		}
	}
	dy := int(math.Round(f.px(sh.OffsetY)))
	f.blit(blur(sil, sigma), image.Pt(at.X-m, at.Y-m+dy), 1)
}
