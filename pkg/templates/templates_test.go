package templates

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/ncassessoria/gerapost/pkg/geometry"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/scene"
)

func each(t *testing.T, p post.Post, fn func(t *testing.T, root *scene.Node, size geometry.Size)) {
	t.Helper()
	for _, tpl := range All() {
		for _, f := range geometry.Formats() {
			p := p
			p.TemplateID = tpl.ID
			p.Format = f
			t.Run(fmt.Sprintf("%d-%s", tpl.ID, f), func(t *testing.T) {
				fn(t, tpl.Build(p), geometry.Lookup(f))
			})
		}
	}
}

func TestTemplateSizes(t *testing.T) {
	count := 0
	each(t, post.Default(), func(t *testing.T, root *scene.Node, size geometry.Size) {
		count++
		if root.Box.W != float64(size.Width) || root.Box.H != float64(size.Height) {
			t.Errorf("root = %vx%v, want %dx%d", root.Box.W, root.Box.H, size.Width, size.Height)
		}
		if !root.Style.Clip {
			t.Error("template root must clip overflow")
		}
	})
	if count != 18 {
		t.Errorf("checked %d combinations, want 18", count)
	}
}

func TestCategoryOmitted(t *testing.T) {
	hidden := post.Default()
	hidden.ShowCategory = false
	empty := post.Default()
	empty.Category = ""

	for name, p := range map[string]post.Post{"hidden": hidden, "empty": empty} {
		t.Run(name, func(t *testing.T) {
			each(t, p, func(t *testing.T, root *scene.Node, _ geometry.Size) {
				if n := scene.Find(root, scene.RoleCategory); n != nil {
					t.Errorf("category node present: %+v", n)
				}
				scene.Walk(root, func(n *scene.Node) bool {
					if n.Kind == scene.KindLabel && strings.TrimSpace(n.Text) == "" {
						t.Errorf("empty label drawn at %+v", n.Box)
					}
					return true
				})
			})
		})
	}
}

func TestCategoryPresent(t *testing.T) {
	each(t, post.Default(), func(t *testing.T, root *scene.Node, size geometry.Size) {
		n := scene.Find(root, scene.RoleCategory)
		if n == nil {
			t.Fatal("category node missing")
		}
		if n.Text != "Geral" {
			t.Errorf("category text = %q", n.Text)
		}
		if n.Box.W >= float64(size.Width)/2 {
			t.Errorf("category tag stretched to %v wide", n.Box.W)
		}
	})
}

func TestLogoOmitted(t *testing.T) {
	each(t, post.Default(), func(t *testing.T, root *scene.Node, _ geometry.Size) {
		if n := scene.Find(root, scene.RoleLogo); n != nil {
			t.Errorf("logo node present without url: %+v", n)
		}
	})
}

func TestLogoPlacement(t *testing.T) {
	p := post.Default()
	p.Logo = post.Logo{URL: "https://example.com/logo.png", X: 85, Y: 90, Scale: 1.5}
	each(t, p, func(t *testing.T, root *scene.Node, size geometry.Size) {
		n := scene.Find(root, scene.RoleLogo)
		if n == nil {
			t.Fatal("logo node missing")
		}
		if n.Box.W != 300 {
			t.Errorf("logo width = %v, want 300", n.Box.W)
		}
		cx, cy := n.Box.X+n.Box.W/2, n.Box.Y+n.Box.H/2
		if math.Abs(cx-0.85*float64(size.Width)) > 1e-9 || math.Abs(cy-0.9*float64(size.Height)) > 1e-9 {
			t.Errorf("logo centre = (%v, %v)", cx, cy)
		}
	})
}

func TestFooterOmittedWhenBothHidden(t *testing.T) {
	p := post.Default()
	p.ShowInsta, p.ShowURL = false, false
	each(t, p, func(t *testing.T, root *scene.Node, _ geometry.Size) {
		if n := scene.Find(root, scene.RoleFooter); n != nil {
			t.Error("footer drawn with both items hidden")
		}
	})
}

func TestFooterItemsFollowFlags(t *testing.T) {
	p := post.Default()
	p.ShowInsta = false
	each(t, p, func(t *testing.T, root *scene.Node, _ geometry.Size) {
		if scene.Find(root, scene.RoleFooterInsta) != nil {
			t.Error("instagram item drawn while hidden")
		}
		if scene.Find(root, scene.RoleFooterURL) == nil {
			t.Error("site item missing")
		}
	})
}

func TestEmptyImage(t *testing.T) {
	p := post.Default()
	p.ImageURL = ""
	each(t, p, func(t *testing.T, root *scene.Node, _ geometry.Size) {
		if scene.Find(root, scene.RoleBackground) != nil {
			t.Error("background image drawn without url")
		}
	})
}

func TestImageAnchor(t *testing.T) {
	p := post.Default()
	p.ImagePosition = post.ImageLeft
	each(t, p, func(t *testing.T, root *scene.Node, _ geometry.Size) {
		bg := scene.Find(root, scene.RoleBackground)
		if bg == nil || bg.Style.Anchor != scene.AnchorLeft || bg.Style.Fit != scene.FitCover {
			t.Errorf("background = %+v", bg)
		}
	})
}

func TestBreakingNewsStory(t *testing.T) {
	p := post.Default()
	p.Headline = "Breaking News"
	p.TemplateID = 2
	p.Format = geometry.Story

	root := Get(p.TemplateID).Build(p)
	if root.Box.W != 1080 || root.Box.H != 1920 {
		t.Errorf("root = %vx%v, want 1080x1920", root.Box.W, root.Box.H)
	}
	if !scene.ContainsText(root, "Breaking News") {
		t.Error("headline text missing")
	}
	foot := scene.Find(root, scene.RoleFooter)
	if foot == nil {
		t.Fatal("footer missing")
	}
	for _, want := range []string{"@noticiascolombia", "www.noticiascolombia.com.br"} {
		if !scene.ContainsText(foot, want) {
			t.Errorf("footer missing %q", want)
		}
	}
}

func TestStoryReservesBottomMargin(t *testing.T) {
	for _, tpl := range All() {
		feed, story := post.Default(), post.Default()
		feed.TemplateID, story.TemplateID = tpl.ID, tpl.ID
		story.Format = geometry.Story

		gap := func(p post.Post) float64 {
			root := tpl.Build(p)
			h := scene.Find(root, scene.RoleHeadline)
			return root.Box.H - h.Box.Bottom()
		}
		if gap(story) <= gap(feed) {
			t.Errorf("template %d: story gap %v not larger than feed gap %v", tpl.ID, gap(story), gap(feed))
		}
	}
}

func TestHeadlineClipsLongText(t *testing.T) {
	p := post.Default()
	p.Headline = strings.Repeat("Manchete extremamente longa ", 60)
	each(t, p, func(t *testing.T, root *scene.Node, size geometry.Size) {
		h := scene.Find(root, scene.RoleHeadline)
		if h == nil {
			t.Fatal("headline missing")
		}
		if !h.Style.Clip {
			t.Error("headline must clip")
		}
		if h.Box.Y < 0 || h.Box.Bottom() > float64(size.Height) {
			t.Errorf("headline box %+v escapes the canvas", h.Box)
		}
	})
}

func TestSubtitleClamped(t *testing.T) {
	each(t, post.Default(), func(t *testing.T, root *scene.Node, _ geometry.Size) {
		s := scene.Find(root, scene.RoleSubtitle)
		if s == nil {
			t.Fatal("subtitle missing")
		}
		if s.Style.MaxLines <= 0 {
			t.Error("subtitle must line-clamp")
		}
	})
}

func TestGetFallback(t *testing.T) {
	if Get(0).ID != 1 || Get(42).ID != 1 {
		t.Error("unknown ids should fall back to template 1")
	}
	if _, ok := Lookup(10); ok {
		t.Error("Lookup(10) should fail")
	}
	if len(All()) != post.TemplateCount {
		t.Errorf("All() = %d templates", len(All()))
	}
	if !strings.Contains(Names(), "9. Brand Gradient") {
		t.Errorf("Names() = %q", Names())
	}
}

func TestTemplatesArePure(t *testing.T) {
	p := post.Default()
	p.Logo.URL = "https://example.com/logo.png"
	for _, tpl := range All() {
		a, b := tpl.Build(p), tpl.Build(p)
		if scene.Count(a) != scene.Count(b) {
			t.Errorf("template %d not deterministic", tpl.ID)
		}
	}
}
