// Package render mounts the active template inside an addressable root.
//
// # Overview
//
// [Render] is the single entry point that turns a [post.Post] into a scene
// tree. It normalizes the post, selects the template by id (unknown ids fall
// back to template 1), and wraps the template output in a root container
// that:
//
//   - carries the caller-supplied element ID, so the export pipeline can
//     locate the node it must rasterize
//   - is exactly the geometry table size for the post's format
//   - clips everything outside that size
//   - sets the font family inherited by every text node
//
// # Preview and Export
//
// Two instances of the same tree exist at runtime. The preview instance is
// shown scaled down to fit a viewport; [Preview] returns the display scale
// alongside the unchanged tree so the pixel size never depends on the
// viewport. The export instance is rendered at 1:1 and rasterized by the
// export pipeline.
//
//	root := render.Render(p, render.ExportID)
//	v := render.Preview(p, 400, 700, 40, 1)
//	fmt.Println(v.Scale) // fits 1080×1350 into the viewport
//
// [post.Post]: github.com/ncassessoria/gerapost/pkg/post.Post
package render
