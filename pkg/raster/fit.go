package raster

import (
	"math"

	"github.com/ncassessoria/gerapost/pkg/scene"
)

// fit re-measures shrink-to-fit nodes with real faces, in canvas units.
func (f *frame) fit(n *scene.Node, family string) error {
	if n.FontFamily != "" {
		family = n.FontFamily
	}
	if n.Style.ShrinkToFit {
		var err error
		switch n.Kind {
		case scene.KindLabel:
			err = f.fitLabel(n, family)
		case scene.KindGroup:
			err = f.fitRow(n, family)
		}
		if err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := f.fit(c, family); err != nil {
			return err
		}
	}
	return nil
}

// textWidth measures a node's display text in canvas pixels.
func (f *frame) textWidth(n *scene.Node, family string) (float64, error) {
	s, err := f.setter(family, n.Style)
	if err != nil {
		return 0, err
	}
	return s.measure(n.DisplayText()) / f.scale, nil
}

func (f *frame) fitLabel(n *scene.Node, family string) error {
	tw, err := f.textWidth(n, family)
	if err != nil {
		return err
	}
	w := math.Max(n.Style.MinWidth, tw+2*n.Style.PadX)
	resize(n, w-n.Box.W)
	return nil
}

// fitRow fits an inline row whose last text child sets its width: the text
// box takes its measured width and the row grows or shrinks by the same
// amount, keeping the gaps before the text.
func (f *frame) fitRow(n *scene.Node, family string) error {
	var t *scene.Node
	for _, c := range n.Children {
		if c.Kind == scene.KindText {
			t = c
		}
	}
	if t == nil {
		return nil
	}
	tw, err := f.textWidth(t, family)
	if err != nil {
		return err
	}
	delta := tw - t.Box.W
	t.Box.W = tw
	resize(n, delta)
	return nil
}

// resize widens n by delta, keeping the edge named by its Align in place.
func resize(n *scene.Node, delta float64) {
	n.Box.W += delta
	var dx float64
	switch n.Style.Align {
	case scene.AlignRight:
		dx = -delta
	case scene.AlignCenter:
		dx = -delta / 2
	}
	if dx != 0 {
		scene.Translate(n, dx, 0)
	}
}
