package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ncassessoria/gerapost/pkg/metadata"
)

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var (
		apply   bool
		noCache bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "import <url>",
		Short: "Read headline, subtitle and image from a news URL",
		Long: `Read a news article's Open Graph metadata through the CORS relay.

The headline comes from og:title (or <title>), the subtitle from
og:description (or the description meta tag), the image from og:image and
the site from the URL's host. With --apply the non-empty fields are merged
into the saved draft.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}

			imp, cc := c.newImporter(ctx, cfg, noCache)
			defer cc.Close()

			spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Importing "+args[0]+"...")
			spinner.Start()
			res, err := imp.Fetch(ctx, args[0])
			spinner.Stop()
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			} else {
				printImport(res)
			}
			if !apply {
				printNextStep("Use it", "gerapost import --apply "+args[0])
				return nil
			}

			ds, err := c.openDraft(ctx, cfg)
			if err != nil {
				return err
			}
			ds.editor.ApplyImport(res)
			if err := ds.Close(ctx); err != nil {
				return err
			}
			printSuccess("Draft updated")
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "merge the result into the saved draft")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the import cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

func printImport(res metadata.Result) {
	printSuccess("Metadata imported")
	for _, kv := range [][2]string{
		{"Headline", res.Headline},
		{"Subtitle", res.Subtitle},
		{"Image", res.ImageURL},
		{"Site", res.SiteURL},
	} {
		v := kv[1]
		if v == "" {
			v = StyleDim.Render("(none)")
		}
		printKeyValue(kv[0], v)
	}
}
