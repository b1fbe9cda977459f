package templates

import (
	"image/color"
	"math"

	"github.com/ncassessoria/gerapost/pkg/scene"
)

// column stacks blocks vertically inside a fixed-width lane. Blocks are laid
// out top-down from y; bottom-anchored templates then move the whole column
// so its last block ends at the bottom margin.
type column struct {
	x, w     float64
	top, y   float64
	nodes    []*scene.Node
	headline *scene.Node
}

func newColumn(x, y, w float64) *column {
	return &column{x: x, w: w, top: y, y: y}
}

// add appends n, which must already be positioned at c.y, and leaves gap
// below it. Nil nodes are skipped together with their gap.
func (c *column) add(n *scene.Node, gap float64) {
	if n == nil {
		return
	}
	c.nodes = append(c.nodes, n)
	c.y = n.Box.Bottom() + gap
}

func (c *column) space(d float64) { c.y += d }

// text adds a text block sized by the layout estimate. Empty text adds
// nothing.
func (c *column) text(role scene.Role, s string, st scene.Style, gap float64) *scene.Node {
	if s == "" {
		return nil
	}
	n := textBlock(role, s, c.x, c.y, c.w, st)
	c.add(n, gap)
	if role == scene.RoleHeadline {
		c.headline = n
	}
	return n
}

// ruled adds a subtitle with a vertical rule on its left edge.
func (c *column) ruled(s string, st scene.Style, ruleW, padL float64, rule color.NRGBA, gap float64) {
	if s == "" {
		return
	}
	t := textBlock(scene.RoleSubtitle, s, c.x+padL, c.y, c.w-padL, st)
	g := &scene.Node{Kind: scene.KindGroup, Box: scene.Box{X: c.x, Y: c.y, W: c.w, H: t.Box.H}}
	g.Add(rect(scene.Box{X: c.x, Y: c.y, W: ruleW, H: t.Box.H}, rule), t)
	c.add(g, gap)
}

func textBlock(role scene.Role, s string, x, y, w float64, st scene.Style) *scene.Node {
	if role == scene.RoleHeadline {
		st.Clip = true
	}
	return &scene.Node{
		Kind:  scene.KindText,
		Role:  role,
		Text:  s,
		Box:   scene.Box{X: x, Y: y, W: w, H: scene.MeasureText(s, w, st)},
		Style: st,
	}
}

func (c *column) shift(dy float64) {
	for _, n := range c.nodes {
		scene.Translate(n, 0, dy)
	}
	c.top += dy
	c.y += dy
}

// bottomAt moves the column so that its running end sits at bottom.
func (c *column) bottomAt(bottom float64) { c.shift(bottom - c.y) }

// shrinkHeadline removes up to by pixels from the headline in whole lines,
// keeping at least one, and pulls later blocks up. It returns the pixels
// actually removed.
func (c *column) shrinkHeadline(by float64) float64 {
	h := c.headline
	if h == nil || by <= 0 {
		return 0
	}
	line := h.Style.FontSize * h.Style.LineHeight
	lines := math.Floor((h.Box.H - by + 0.5) / line)
	if lines < 1 {
		lines = 1
	}
	d := h.Box.H - lines*line
	if d <= 0 {
		return 0
	}
	h.Box.H -= d
	after := false
	for _, n := range c.nodes {
		if after {
			scene.Translate(n, 0, -d)
		}
		if n == h {
			after = true
		}
	}
	c.y -= d
	return d
}

// fitBelow keeps a top-down column from running past limit by clipping the
// headline.
func (c *column) fitBelow(limit float64) {
	if c.y > limit {
		c.shrinkHeadline(c.y - limit)
	}
}

// fitAbove anchors a column to bottom and clips the headline when the
// column would otherwise rise past ceiling.
func (c *column) fitAbove(ceiling, bottom float64) {
	c.bottomAt(bottom)
	if c.top < ceiling {
		c.shrinkHeadline(ceiling - c.top)
		c.bottomAt(bottom)
	}
}

func (c *column) group() []*scene.Node { return c.nodes }
