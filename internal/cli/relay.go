package cli

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ncassessoria/gerapost/pkg/httputil"
	"github.com/ncassessoria/gerapost/pkg/relay"
)

// relayCommand creates the relay server command.
func (c *CLI) relayCommand() *cobra.Command {
	var (
		addr     string
		maxBytes int64
	)

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the CORS relay used for URL imports",
		Long: `Run a CORS relay compatible with the allorigins API.

GET /get?url=<page> answers {"contents": "<html>", "status": {...}}. Point
[import] relay_url (or GERAPOST_RELAY_URL) at it to import without a public
relay.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			srv := relay.New(
				relay.WithLogger(c.Logger),
				relay.WithClient(httputil.NewClient(0)),
				relay.WithMaxBytes(maxBytes),
			)

			printKeyValue("Relay", StyleLink.Render("http://"+addr+"/get?url="))
			printNextStep("Use it", "GERAPOST_RELAY_URL=http://"+addr+" gerapost import <url>")
			err := srv.ListenAndServe(ctx, addr)
			if errors.Is(err, http.ErrServerClosed) || ctx.Err() != nil {
				printSuccess("Relay stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", relay.DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", relay.DefaultMaxBytes, "largest page relayed")
	return cmd
}
