package render

import (
	"testing"

	"github.com/ncassessoria/gerapost/pkg/geometry"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/scene"
)

func TestRenderRoot(t *testing.T) {
	p := post.Default()
	p.FontFamily = "Oswald"
	p.Format = geometry.Story

	root := Render(p, ExportID)
	if root.ID != ExportID {
		t.Errorf("ID = %q, want %q", root.ID, ExportID)
	}
	if root.Box.W != 1080 || root.Box.H != 1920 {
		t.Errorf("root = %vx%v", root.Box.W, root.Box.H)
	}
	if root.FontFamily != "Oswald" {
		t.Errorf("FontFamily = %q", root.FontFamily)
	}
	if !root.Style.Clip {
		t.Error("root must clip")
	}
	if scene.FindID(root, ExportID) != root {
		t.Error("root not addressable by id")
	}
}

func TestRenderFallsBackToFirstTemplate(t *testing.T) {
	p := post.Default()
	p.TemplateID = 99
	got := Render(p, "x")

	p.TemplateID = 1
	want := Render(p, "x")
	if scene.Count(got) != scene.Count(want) {
		t.Errorf("unknown template rendered %d nodes, template 1 renders %d", scene.Count(got), scene.Count(want))
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	p := post.Default()
	p.Format = geometry.Format("square")
	root := Render(p, "x")
	if root.Box.H != 1350 {
		t.Errorf("unknown format should render as feed, got height %v", root.Box.H)
	}
}

func TestFitScale(t *testing.T) {
	tests := []struct {
		name                        string
		w, h, maxW, maxH, pad, maxS float64
		want                        float64
	}{
		{"height bound", 1080, 1920, 1000, 1000, 0, 1, 1000.0 / 1920},
		{"width bound", 1080, 1350, 540, 2000, 0, 1, 0.5},
		{"capped", 1080, 1350, 5000, 5000, 0, 0.8, 0.8},
		{"padding", 1080, 1350, 1120, 5000, 20, 10, 1},
		{"degenerate", 1080, 1350, 10, 10, 20, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitScale(tt.w, tt.h, tt.maxW, tt.maxH, tt.pad, tt.maxS); got != tt.want {
				t.Errorf("FitScale = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPreviewKeepsPixelSize(t *testing.T) {
	v := Preview(post.Default(), 540, 700, 10, 1)
	if v.Root.Box.W != 1080 || v.Root.Box.H != 1350 {
		t.Errorf("preview tree resized to %vx%v", v.Root.Box.W, v.Root.Box.H)
	}
	if v.Scale <= 0 || v.Scale >= 1 {
		t.Errorf("Scale = %v", v.Scale)
	}
	if v.Root.ID != PreviewID {
		t.Errorf("ID = %q", v.Root.ID)
	}
	if v.Template.Name != "Classic Split" {
		t.Errorf("Template = %q", v.Template.Name)
	}
}
