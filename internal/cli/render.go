package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ncassessoria/gerapost/pkg/config"
	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/export"
	"github.com/ncassessoria/gerapost/pkg/geometry"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/render"
	"github.com/ncassessoria/gerapost/pkg/templates"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file; empty writes into the export dir
	template int     // template override; 0 keeps the post's
	format   string  // format override; empty keeps the post's
	scene    bool    // write the scene tree as JSON instead of a PNG
	scale    float64 // oversampling override; 0 uses the config
	sample   bool    // fill the post with the sample story first
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a post file to a PNG",
		Long: `Render a post described by a JSON file (or stdin with "-") to a PNG.

Fields missing from the file take their default values. Without a file the
default post is rendered. Templates: ` + templates.Names(),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := ""
			if len(args) == 1 {
				src = args[0]
			}
			return c.runRender(cmd, src, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <export dir>/gera-post-<category>-<time>.png)")
	cmd.Flags().IntVarP(&opts.template, "template", "t", 0, "template id (1-9)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "canvas format: feed (1080x1350), story (1080x1920)")
	cmd.Flags().BoolVar(&opts.scene, "scene", false, "write the scene tree as JSON instead of a PNG")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "oversampling factor (default from config, 2)")
	cmd.Flags().BoolVar(&opts.sample, "sample", false, "fill the post with the sample news story")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, src string, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	p, err := readPost(src, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if opts.sample {
		p = p.Apply(post.MockNews())
	}
	patch, err := overrides(opts.template, opts.format)
	if err != nil {
		return err
	}
	p = p.Apply(patch).Normalize()
	if err := p.Validate(); err != nil {
		return err
	}

	if opts.scene {
		return writeScene(p, opts.output, cmd.OutOrStdout())
	}

	cfg, err := c.config()
	if err != nil {
		return err
	}
	if opts.scale > 0 {
		cfg.Export.Scale = opts.scale
	}

	prog := newProgress(logger)
	pipeline := c.newPipeline(cfg, renderSink(cfg, opts.output), newSpinnerIndicator(ctx, cmd.ErrOrStderr()))
	art, err := pipeline.Export(ctx, p)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", templates.Get(p.TemplateID).Name))

	printSuccess("Rendered %dx%d %s", art.Width, art.Height, p.Format)
	printFile(art.Path)
	return nil
}

// renderSink writes to output when set, else into the configured export dir.
func renderSink(cfg config.Config, output string) export.Sink {
	if output == "" {
		return export.DirSink{Dir: cfg.Export.OutputDir}
	}
	return export.SinkFunc(func(_ context.Context, a *export.Artifact) (string, error) {
		if err := os.WriteFile(output, a.PNG, 0o644); err != nil {
			return "", err
		}
		return output, nil
	})
}

// readPost reads a post record from a file, from in for "-", or returns the
// defaults for an empty source.
func readPost(src string, in io.Reader) (post.Post, error) {
	var (
		data []byte
		err  error
	)
	switch src {
	case "":
		return post.Default(), nil
	case "-":
		data, err = io.ReadAll(in)
	default:
		data, err = os.ReadFile(src)
		if os.IsNotExist(err) {
			return post.Post{}, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "no such file: %s", src)
		}
	}
	if err != nil {
		return post.Post{}, fmt.Errorf("read post: %w", err)
	}
	p, err := post.Merge(post.Default(), data)
	if err != nil {
		return post.Post{}, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid post JSON")
	}
	return p, nil
}

// overrides builds the patch for --template and --format.
func overrides(templateID int, format string) (post.Patch, error) {
	var patch post.Patch
	if templateID != 0 {
		if _, ok := templates.Lookup(templateID); !ok {
			return patch, perrors.New(perrors.ErrCodeInvalidTemplate, "unknown template %d (choose from %s)", templateID, templates.Names())
		}
		patch.TemplateID = post.Ptr(templateID)
	}
	if format != "" {
		f, err := geometry.Parse(format)
		if err != nil {
			return patch, perrors.New(perrors.ErrCodeInvalidFormat, "%s; use feed or story", err)
		}
		patch.Format = post.Ptr(f)
	}
	return patch, nil
}

// writeScene writes the export tree of p as indented JSON.
func writeScene(p post.Post, output string, stdout io.Writer) error {
	root := render.Render(p, render.ExportID)
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	data = append(data, '\n')
	if output == "" || output == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	printSuccess("Scene written")
	printFile(output)
	return nil
}
