package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ncassessoria/gerapost/pkg/control"
	"github.com/ncassessoria/gerapost/pkg/templates"
)

// templatesCommand creates the templates command.
func (c *CLI) templatesCommand() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the templates",
		Long: `List the nine templates. With --pick, choose one interactively and
apply it to the saved draft.`,
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
			defer ds.Close(ctx)
			current := ds.editor.Post().TemplateID

			if !pick {
				fmt.Fprintln(cmd.OutOrStdout(), templateTable(templates.All(), -1, current))
				return nil
			}

			final, err := tea.NewProgram(NewTemplateListModel(current), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			m, ok := final.(TemplateListModel)
			if !ok || m.Selected == nil {
				return nil
			}
			return applyTemplate(ds.editor, m.Selected.ID)
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "choose a template for the draft")
	return cmd
}

func applyTemplate(e *control.Editor, id int) error {
	p, err := e.SelectTemplate(id)
	if err != nil {
		return err
	}
	printSuccess("Template %d. %s", p.TemplateID, templates.Get(p.TemplateID).Name)
	return nil
}
