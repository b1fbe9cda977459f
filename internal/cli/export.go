package cli

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ncassessoria/gerapost/pkg/config"
	"github.com/ncassessoria/gerapost/pkg/export"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/templates"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		dir  string
		open bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the saved draft as a PNG",
		Long: `Export the saved draft as a PNG at twice the canvas size.

The file is named gera-post-<category>-<timestamp>.png and written to the
export directory ([export] output_dir, default the current directory).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Export.OutputDir = dir
			}

			adapter, err := c.newAdapter(ctx, cfg)
			if err != nil {
				return err
			}
			defer adapter.Close()
			p, err := adapter.Load(ctx)
			if err != nil {
				return err
			}

			art, err := c.exportPost(ctx, cfg, p, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			printSuccess("Exported %s (%dx%d)", templates.Get(art.TemplateID).Name, art.Width, art.Height)
			printFile(art.Path)
			if open {
				if err := openPath(art.Path); err != nil {
					printWarning("Could not open the image: %v", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory to write the PNG into")
	cmd.Flags().BoolVar(&open, "open", false, "open the image when done")

	return cmd
}

// exportPost runs p through the pipeline into the configured export dir,
// with a spinner on status.
func (c *CLI) exportPost(ctx context.Context, cfg config.Config, p post.Post, status io.Writer) (*export.Artifact, error) {
	prog := newProgress(loggerFromContext(ctx))
	pipeline := c.newPipeline(cfg, export.DirSink{Dir: cfg.Export.OutputDir}, newSpinnerIndicator(ctx, status))
	art, err := pipeline.Export(ctx, p)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Exported %s", art.Filename))
	return art, nil
}

// openPath opens a file with the platform's default viewer.
func openPath(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
