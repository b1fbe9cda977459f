package render

import (
	"image/color"
	"math"

	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/scene"
	"github.com/ncassessoria/gerapost/pkg/templates"
)

// Element IDs for the two runtime instances.
const (
	PreviewID = "canvas-preview"
	ExportID  = "ghost-canvas-download"
)

// canvasColor is painted under every template.
var canvasColor = color.NRGBA{248, 250, 252, 255}

// Render builds the full-size tree for p inside a root addressed by id.
func Render(p post.Post, id string) *scene.Node {
	p = p.Normalize()
	size := p.Size()
	tpl := templates.Get(p.TemplateID)

	root := &scene.Node{
		ID:         id,
		Kind:       scene.KindGroup,
		Role:       scene.RoleRoot,
		Box:        scene.Box{W: float64(size.Width), H: float64(size.Height)},
		FontFamily: p.FontFamily,
		Style:      scene.Style{Fill: canvasColor, Clip: true, Antialias: true},
	}
	return root.Add(tpl.Layout(p, size))
}

// View is a scaled preview of a post.
type View struct {
	Root     *scene.Node
	Template templates.Template
	Scale    float64
	Width    float64 // displayed width
	Height   float64 // displayed height
}

// Preview renders p for display in a viewport of maxW×maxH with padding on
// every side. The tree keeps its full pixel size; only Scale changes, and it
// never exceeds maxScale.
func Preview(p post.Post, maxW, maxH, padding, maxScale float64) View {
	root := Render(p, PreviewID)
	s := FitScale(root.Box.W, root.Box.H, maxW, maxH, padding, maxScale)
	return View{
		Root:     root,
		Template: templates.Get(p.Normalize().TemplateID),
		Scale:    s,
		Width:    root.Box.W * s,
		Height:   root.Box.H * s,
	}
}

// FitScale returns the largest scale at which a w×h canvas fits the padded
// viewport, capped at maxScale. Degenerate viewports yield zero.
func FitScale(w, h, maxW, maxH, padding, maxScale float64) float64 {
	availW := maxW - 2*padding
	availH := maxH - 2*padding
	if w <= 0 || h <= 0 || availW <= 0 || availH <= 0 {
		return 0
	}
	s := math.Min(availH/h, availW/w)
	if maxScale > 0 {
		s = math.Min(s, maxScale)
	}
	return s
}
