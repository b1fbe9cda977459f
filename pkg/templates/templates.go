// Package templates holds the nine post layouts.
//
// Each template is an independent pure function from a [post.Post] and the
// canvas [geometry.Size] to a scene tree exactly that size. Templates share
// building blocks (background, logo, category tag, footer) but never share
// branching: a new look is a new function, not a flag on an existing one.
//
// Story canvases are taller and the platform draws its own chrome over the
// bottom of the screen, so every template reserves a larger bottom margin
// for the story format.
package templates

import (
	"fmt"
	"strings"

	"github.com/ncassessoria/gerapost/pkg/geometry"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/scene"
)

// Layout builds the visual tree for one template.
type Layout func(p post.Post, size geometry.Size) *scene.Node

// Template is a registered layout.
type Template struct {
	ID     int
	Name   string
	Layout Layout
}

var registry = []Template{
	{1, "Classic Split", classicSplit},
	{2, "Full Dark Overlay", fullDarkOverlay},
	{3, "Floating Card", floatingCard},
	{4, "Clean Dark", cleanDark},
	{5, "Modern Editorial", modernEditorial},
	{6, "Centered Modern", centeredModern},
	{7, "Bottom Edge Strip", bottomEdgeStrip},
	{8, "Elegant Gradient", elegantGradient},
	{9, "Brand Gradient", brandGradient},
}

// Lookup returns the template with the given id.
func Lookup(id int) (Template, bool) {
	if id < 1 || id > len(registry) {
		return Template{}, false
	}
	return registry[id-1], true
}

// Get returns the template with the given id, falling back to the first
// template for unknown ids.
func Get(id int) Template {
	if t, ok := Lookup(id); ok {
		return t
	}
	return registry[0]
}

// All returns every template in id order.
func All() []Template {
	return append([]Template(nil), registry...)
}

// Names returns "id. name" for every template, for help text.
func Names() string {
	var b strings.Builder
	for i, t := range registry {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d. %s", t.ID, t.Name)
	}
	return b.String()
}

// Build runs the template for p at the size of p's format.
func (t Template) Build(p post.Post) *scene.Node {
	return t.Layout(p, p.Size())
}
