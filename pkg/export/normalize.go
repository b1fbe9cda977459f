package export

import "github.com/ncassessoria/gerapost/pkg/scene"

// Normalize returns a copy of the export tree prepared for capture:
//
//   - the category tag and each footer item take the width of their
//     measured text instead of the layout estimate
//   - footer texts never wrap
//   - the root asks for antialiased, fully hinted text
//
// The input tree is not modified.
func Normalize(root *scene.Node) *scene.Node {
	out := scene.Clone(root)
	if out == nil {
		return nil
	}
	out.Style.Antialias = true
	out.Style.Hinting = true

	scene.Walk(out, func(n *scene.Node) bool {
		switch n.Role {
		case scene.RoleCategory:
			n.Style.ShrinkToFit = true
			n.Style.NoWrap = true
		case scene.RoleFooterInsta, scene.RoleFooterURL:
			n.Style.ShrinkToFit = true
			for _, c := range n.Children {
				if c.Kind == scene.KindText {
					c.Style.NoWrap = true
				}
			}
		}
		return true
	})
	return out
}
