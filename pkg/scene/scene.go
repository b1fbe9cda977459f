// Package scene defines the styled visual tree that templates produce and
// the rasterizer consumes.
//
// A tree is a set of [Node] values with absolute pixel boxes in canvas
// coordinates. Nodes carry a [Kind] (what to draw) and a [Role] (what the
// node means to the post), so callers can query the tree by meaning:
//
//	if scene.Find(root, scene.RoleCategory) == nil {
//	    // category tag omitted
//	}
//
// Trees are plain data. [Clone] makes a deep copy that can be normalized
// before rasterization without touching the original.
package scene

import (
	"image/color"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is what a node draws.
type Kind string

// Node kinds.
const (
	KindGroup    Kind = "group"
	KindRect     Kind = "rect"
	KindGradient Kind = "gradient"
	KindImage    Kind = "image"
	KindText     Kind = "text"
	KindLabel    Kind = "label"
	KindCircle   Kind = "circle"
	KindIcon     Kind = "icon"
)

// Role is what a node means to the composition.
type Role string

// Node roles. Decorative nodes have no role.
const (
	RoleNone        Role = ""
	RoleRoot        Role = "root"
	RoleTemplate    Role = "template"
	RoleBackground  Role = "background"
	RoleOverlay     Role = "overlay"
	RoleLogo        Role = "logo"
	RoleCategory    Role = "category"
	RoleHeadline    Role = "headline"
	RoleSubtitle    Role = "subtitle"
	RoleFooter      Role = "footer"
	RoleFooterInsta Role = "footer-insta"
	RoleFooterURL   Role = "footer-url"
	RoleAccent      Role = "accent"
	RoleCard        Role = "card"
)

// Icon names for KindIcon nodes.
const (
	IconInstagram = "instagram"
	IconGlobe     = "globe"
)

// Box is an axis-aligned rectangle in canvas pixels.
type Box struct {
	X, Y, W, H float64
}

// Right returns the right edge.
func (b Box) Right() float64 { return b.X + b.W }

// Bottom returns the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.H }

// Stop is one gradient color stop. Offset is 0 at the gradient start.
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// Gradient is a linear gradient between two points relative to the node box,
// expressed as fractions of its width and height.
type Gradient struct {
	X0, Y0, X1, Y1 float64
	Stops          []Stop
}

// Shadow is a soft drop shadow under a node.
type Shadow struct {
	OffsetY float64
	Blur    float64
	Color   color.NRGBA
}

// Align is horizontal text alignment within a box.
type Align string

// Alignments.
const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Anchor positions a cover-fit image horizontally.
type Anchor string

// Anchors.
const (
	AnchorLeft   Anchor = "left"
	AnchorCenter Anchor = "center"
	AnchorRight  Anchor = "right"
)

// Fit is how an image fills its box.
type Fit string

// Fits. A contained image takes the box width and its own aspect ratio,
// centred vertically on the box, so logos of any shape keep their position.
const (
	FitCover   Fit = "cover"
	FitContain Fit = "contain"
)

// Style holds every presentational attribute a node may use.
type Style struct {
	Fill      color.NRGBA
	Gradient  *Gradient
	Stroke    color.NRGBA
	StrokeW   float64
	Radius    float64
	RoundTop  bool // radius applies to the top corners only
	Opacity   float64
	Clip      bool
	Blur      float64
	Grayscale float64
	Anchor    Anchor
	Fit       Fit
	Shadow    *Shadow

	Color       color.NRGBA
	FontSize    float64
	Weight      int
	LineHeight  float64 // multiple of FontSize
	Tracking    float64 // letter spacing in em
	Uppercase   bool
	Align       Align
	MaxLines    int
	NoWrap      bool
	ShrinkToFit bool
	PadX, PadY  float64
	MinWidth    float64

	// Root-only rasterization hints.
	Antialias bool
	Hinting   bool
}

// Node is one element of the visual tree.
type Node struct {
	ID         string
	Kind       Kind
	Role       Role
	Box        Box
	Style      Style
	Text       string
	Src        string
	Icon       string
	FontFamily string
	Children   []*Node
}

// Add appends children that are not nil and returns n.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// DisplayText returns the text as drawn, upper-cased when the style says so.
func (n *Node) DisplayText() string {
	return displayText(n.Text, n.Style)
}

func displayText(s string, st Style) string {
	if st.Uppercase {
		// Casers keep state and must not be shared across goroutines.
		return cases.Upper(language.BrazilianPortuguese).String(s)
	}
	return s
}

// EffectiveOpacity returns the opacity, treating zero as fully opaque.
func (s Style) EffectiveOpacity() float64 {
	if s.Opacity <= 0 || s.Opacity > 1 {
		return 1
	}
	return s.Opacity
}

// Walk visits n and its descendants depth-first in paint order. Returning
// false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Find returns the first node with the given role, or nil.
func Find(root *Node, role Role) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Role == role {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node with the given role in paint order.
func FindAll(root *Node, role Role) []*Node {
	var out []*Node
	Walk(root, func(n *Node) bool {
		if n.Role == role {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindID returns the node with the given ID, or nil.
func FindID(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Texts returns the literal text of every text-bearing node.
func Texts(root *Node) []string {
	var out []string
	Walk(root, func(n *Node) bool {
		if n.Text != "" {
			out = append(out, n.Text)
		}
		return true
	})
	return out
}

// ContainsText reports whether any node carries exactly s.
func ContainsText(root *Node, s string) bool {
	for _, t := range Texts(root) {
		if t == s {
			return true
		}
	}
	return false
}

// Images returns the distinct image sources referenced by the tree in paint
// order.
func Images(root *Node) []string {
	seen := make(map[string]bool)
	var out []string
	Walk(root, func(n *Node) bool {
		if n.Kind == KindImage && n.Src != "" && !seen[n.Src] {
			seen[n.Src] = true
			out = append(out, n.Src)
		}
		return true
	})
	return out
}

// Clone returns a deep copy of the tree.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Style.Gradient != nil {
		g := *n.Style.Gradient
		g.Stops = append([]Stop(nil), n.Style.Gradient.Stops...)
		c.Style.Gradient = &g
	}
	if n.Style.Shadow != nil {
		s := *n.Style.Shadow
		c.Style.Shadow = &s
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = Clone(ch)
		}
	}
	return &c
}

// Translate shifts n and all descendants by dx, dy.
func Translate(n *Node, dx, dy float64) {
	Walk(n, func(m *Node) bool {
		m.Box.X += dx
		m.Box.Y += dy
		return true
	})
}

// Count returns the number of nodes in the tree.
func Count(root *Node) int {
	c := 0
	Walk(root, func(*Node) bool { c++; return true })
	return c
}
