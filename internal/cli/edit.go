package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ncassessoria/gerapost/pkg/export"
	"github.com/ncassessoria/gerapost/pkg/metadata"
	"github.com/ncassessoria/gerapost/pkg/post"
)

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the draft interactively",
		Long: `Open the terminal editor on the saved draft.

The Feed and Story tabs pick a template and switch the canvas format, the
Logo tab places the logo and the Editar tab changes texts, colors and
toggles. Every change is saved automatically; ctrl+s exports a PNG.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			ds, err := c.openDraft(ctx, cfg)
			if err != nil {
				return err
			}

			imp, cc := c.newImporter(ctx, cfg, false)
			defer cc.Close()
			pipeline := c.newPipeline(cfg, export.DirSink{Dir: cfg.Export.OutputDir}, nil)

			model := NewEditorModel(ctx, ds.editor, editorActions{
				Export: pipeline.Export,
				Import: func(ctx context.Context, url string) (metadata.Result, error) {
					return imp.Fetch(ctx, url)
				},
			})

			// Save failures show in the status line instead.
			defer mute(c.Logger, cmd.ErrOrStderr())()

			prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			ds.notifySaveErrors(func(err error) { prog.Send(saveErrMsg{err: err}) })
			_, runErr := prog.Run()

			ds.notifySaveErrors(nil)
			if err := ds.Close(context.WithoutCancel(ctx)); err != nil {
				return err
			}
			if runErr != nil && ctx.Err() == nil {
				return runErr
			}
			p := ds.editor.Post()
			printSuccess("Draft saved")
			printDetail("%s", summary(p))
			return nil
		},
	}
}

func summary(p post.Post) string {
	return shorten(p.Headline, 70)
}
