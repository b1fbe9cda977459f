// Package pkg provides the core libraries of Gera Post, a composer for
// branded social-media news graphics.
//
// # Overview
//
// A post is a headline, subtitle, background image, logo, category tag and
// footer handles laid out by one of nine templates in feed (1080×1350) or
// story (1080×1920) format. The pkg directory is organized into three areas:
//
//  1. Composition: [post], [geometry], [templates], [scene], [render]
//  2. Output: [fonts], [assets], [raster], [export]
//  3. Editing and persistence: [control], [metadata], [store], [session],
//     [config], with [cache], [httputil] and [relay] as plumbing
//
// # Architecture
//
// The typical data flow:
//
//	editor input / URL import
//	         ↓
//	    [control] Editor (normalized post, debounced saves to [store])
//	         ↓
//	    [render] (template → scene tree at canvas size)
//	         ↓
//	    [export] (load images → [raster] at 2x → PNG → sink)
//
// # Quick Start
//
// Render the default post and export it as a PNG:
//
//	import (
//	    "context"
//
//	    "github.com/ncassessoria/gerapost/pkg/assets"
//	    "github.com/ncassessoria/gerapost/pkg/export"
//	    "github.com/ncassessoria/gerapost/pkg/fonts"
//	    "github.com/ncassessoria/gerapost/pkg/post"
//	    "github.com/ncassessoria/gerapost/pkg/raster"
//	)
//
//	p := post.Default().Apply(post.MockNews())
//	pipeline := export.New(assets.NewLoader(), raster.New(fonts.New("")),
//	    export.WithSink(export.DirSink{Dir: "out"}))
//	art, err := pipeline.Export(context.Background(), p)
//	// art.Path is out/gera-post-economia-<unix-ms>.png, 2160×2700
//
// # Importing Metadata
//
// [metadata] reads Open Graph tags from a news page through an
// allorigins-compatible relay ([relay] is one):
//
//	imp := metadata.NewImporter(metadata.DefaultRelay)
//	res, err := imp.Fetch(ctx, "https://example.com/news/1")
//	editor.ApplyImport(res)
//
// # Persistence
//
// [store.Adapter] keeps one draft per user: on-device while signed out,
// in MongoDB under the [session] user id while signed in. Editor changes
// reach it through a [store.Debouncer], so a burst of edits is one write.
//
// [post]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/post
// [geometry]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/geometry
// [templates]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/templates
// [scene]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/scene
// [render]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/render
// [fonts]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/fonts
// [assets]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/assets
// [raster]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/raster
// [export]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/export
// [control]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/control
// [metadata]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/metadata
// [store]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/store
// [store.Adapter]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/store#Adapter
// [store.Debouncer]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/store#Debouncer
// [session]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/session
// [config]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/config
// [cache]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/httputil
// [relay]: https://pkg.go.dev/github.com/ncassessoria/gerapost/pkg/relay
package pkg
