package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/ncassessoria/gerapost/pkg/config"
	"github.com/ncassessoria/gerapost/pkg/control"
	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/store"
	"github.com/ncassessoria/gerapost/pkg/templates"
)

// =============================================================================
// Draft Session
// =============================================================================

// draftSession is an editor bound to the persisted draft. Edits are saved
// through a debouncer; Close flushes the last one.
type draftSession struct {
	adapter  *store.Adapter
	debounce *store.Debouncer
	editor   *control.Editor

	// onSaveError, when set, also receives background save failures.
	onSaveError atomic.Pointer[func(error)]
}

// notifySaveErrors sends background save failures to fn. A nil fn stops.
func (ds *draftSession) notifySaveErrors(fn func(error)) {
	if fn == nil {
		ds.onSaveError.Store(nil)
		return
	}
	ds.onSaveError.Store(&fn)
}

func (c *CLI) openDraft(ctx context.Context, cfg config.Config) (*draftSession, error) {
	adapter, err := c.newAdapter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p, err := adapter.Load(ctx)
	if err != nil {
		adapter.Close()
		return nil, err
	}

	ds := &draftSession{adapter: adapter}
	ds.debounce = store.NewDebouncer(adapter.Save,
		store.WithDelay(cfg.Store.Debounce),
		store.WithDebounceLogger(c.Logger),
		store.OnError(func(err error) {
			c.Logger.Error("error saving data", "error", err)
			if fn := ds.onSaveError.Load(); fn != nil {
				(*fn)(err)
			}
		}),
	)
	ds.editor = control.NewEditor(p, control.WithPersister(ds.debounce), control.WithLogger(c.Logger))
	return ds, nil
}

// Close saves any pending edit and closes the stores.
func (ds *draftSession) Close(ctx context.Context) error {
	err := ds.debounce.Close(ctx)
	if cerr := ds.adapter.Close(); err == nil {
		err = cerr
	}
	return err
}

// =============================================================================
// Commands
// =============================================================================

// draftCommand creates the draft command with subcommands.
func (c *CLI) draftCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Show and edit the saved draft",
		Long: `Show and edit the saved draft.

Signed out, the draft lives in ~/.config/gerapost/drafts/. Signed in with
the mongo backend configured, it is stored under your user id.`,
	}

	cmd.AddCommand(c.draftShowCommand())
	cmd.AddCommand(c.draftSetCommand())
	cmd.AddCommand(c.draftTabCommand())
	cmd.AddCommand(c.draftTemplateCommand())
	cmd.AddCommand(c.draftLogoCommand())
	cmd.AddCommand(c.draftBackgroundCommand())
	cmd.AddCommand(c.draftSampleCommand())
	cmd.AddCommand(c.draftResetCommand())
	cmd.AddCommand(c.draftPathCommand())

	return cmd
}

// editDraft opens the draft, runs fn on its editor and saves the result.
func (c *CLI) editDraft(cmd *cobra.Command, fn func(e *control.Editor) error) error {
	ctx := cmd.Context()
	cfg, err := c.config()
	if err != nil {
		return err
	}
	ds, err := c.openDraft(ctx, cfg)
	if err != nil {
		return err
	}
	if err := fn(ds.editor); err != nil {
		ds.Close(ctx)
		return err
	}
	if err := ds.Close(ctx); err != nil {
		return err
	}
	c.Logger.Debug("draft saved", "state", ds.editor)
	return nil
}

func (c *CLI) draftShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
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

			if asJSON {
				data, err := p.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			printDraft(p, adapter.Backend(ctx))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the persisted JSON record")
	return cmd
}

func printDraft(p post.Post, backend string) {
	size := p.Size()
	printKeyValue("Template", fmt.Sprintf("%d. %s", p.TemplateID, templates.Get(p.TemplateID).Name))
	printKeyValue("Format", fmt.Sprintf("%s %s", p.Format, StyleNumber.Render(fmt.Sprintf("%dx%d", size.Width, size.Height))))
	printKeyValue("Headline", p.Headline)
	printKeyValue("Subtitle", p.Subtitle)
	printKeyValue("Category", fmt.Sprintf("%s %s", p.Category, onOff(p.ShowCategory)))
	printKeyValue("Image", fmt.Sprintf("%s (%s)", shorten(p.ImageURL, 60), p.ImagePosition))
	printKeyValue("Site", fmt.Sprintf("%s %s", p.SiteURL, onOff(p.ShowURL)))
	printKeyValue("Instagram", fmt.Sprintf("%s %s", p.Instagram, onOff(p.ShowInsta)))
	printKeyValue("Colors", fmt.Sprintf("theme %s, tag %s", p.ThemeColor, p.CategoryBgColor))
	printKeyValue("Font", p.FontFamily)
	logo := StyleDim.Render("none")
	if p.Logo.HasLogo() {
		logo = fmt.Sprintf("%s at (%g%%, %g%%) x%g", shorten(p.Logo.URL, 40), p.Logo.X, p.Logo.Y, p.Logo.Scale)
	}
	printKeyValue("Logo", logo)
	printDetail("Stored in the %s draft", backend)
}

func onOff(b bool) string {
	if b {
		return StyleSuccess.Render("shown")
	}
	return StyleDim.Render("hidden")
}

// shorten trims long values such as data URIs for display.
func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func (c *CLI) draftSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set key=value...",
		Short: "Change draft fields",
		Long: `Change draft fields. Keys are the JSON field names of the draft:

  headline, subtitle, category, showCategory, categoryBgColor, imageUrl,
  imagePosition, siteUrl, instagram, showUrl, showInsta, themeColor,
  fontFamily, templateId, format, logo.url, logo.x, logo.y, logo.scale

Example:
  gerapost draft set headline="Chuva forte atinge a capital" showInsta=false logo.x=90`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseAssignments(args)
			if err != nil {
				return err
			}
			return c.editDraft(cmd, func(e *control.Editor) error {
				if err := e.Post().Apply(patch).Validate(); err != nil {
					return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "%s", err)
				}
				e.UpdateData(patch)
				printSuccess("Updated %d field(s)", len(args))
				return nil
			})
		},
	}
}

// fieldKind is how a draft field's value is parsed.
type fieldKind int

const (
	kindString fieldKind = iota
	kindBool
	kindInt
	kindFloat
)

// draftFields maps every settable key to its kind.
var draftFields = map[string]fieldKind{
	"headline":        kindString,
	"subtitle":        kindString,
	"category":        kindString,
	"showCategory":    kindBool,
	"categoryBgColor": kindString,
	"imageUrl":        kindString,
	"imagePosition":   kindString,
	"siteUrl":         kindString,
	"instagram":       kindString,
	"showUrl":         kindBool,
	"showInsta":       kindBool,
	"themeColor":      kindString,
	"fontFamily":      kindString,
	"templateId":      kindInt,
	"format":          kindString,
	"logo.url":        kindString,
	"logo.x":          kindFloat,
	"logo.y":          kindFloat,
	"logo.scale":      kindFloat,
}

// parseAssignments turns key=value arguments into a patch.
func parseAssignments(args []string) (post.Patch, error) {
	var patch post.Patch
	raw := map[string]any{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return patch, perrors.New(perrors.ErrCodeInvalidInput, "expected key=value, got %q", arg)
		}
		kind, known := draftFields[key]
		if !known {
			return patch, perrors.New(perrors.ErrCodeInvalidInput, "unknown field %q", key)
		}
		v, err := parseValue(kind, value)
		if err != nil {
			return patch, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "%s: invalid value %q", key, value)
		}
		if sub, ok := strings.CutPrefix(key, "logo."); ok {
			logo, _ := raw["logo"].(map[string]any)
			if logo == nil {
				logo = map[string]any{}
				raw["logo"] = logo
			}
			logo[sub] = v
			continue
		}
		raw[key] = v
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return patch, err
	}
	if err := json.Unmarshal(data, &patch); err != nil {
		return patch, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid draft fields")
	}

	// Normalization would silently clamp these, so reject them up front.
	var (
		id     int
		format string
	)
	if patch.TemplateID != nil {
		id = *patch.TemplateID
		if id == 0 {
			id = -1
		}
	}
	if patch.Format != nil {
		format = string(*patch.Format)
	}
	resolved, err := overrides(id, format)
	if err != nil {
		return patch, err
	}
	if resolved.Format != nil {
		patch.Format = resolved.Format
	}
	return patch, nil
}

func parseValue(kind fieldKind, s string) (any, error) {
	switch kind {
	case kindBool:
		return strconv.ParseBool(s)
	case kindInt:
		return strconv.Atoi(s)
	case kindFloat:
		return strconv.ParseFloat(s, 64)
	default:
		return s, nil
	}
}

func (c *CLI) draftTabCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "tab <feed|story|logo|edit>",
		Short:     "Select an editor tab; feed and story also switch the format",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"feed", "story", "logo", "edit"},
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, err := control.ParseTab(args[0])
			if err != nil {
				return err
			}
			return c.editDraft(cmd, func(e *control.Editor) error {
				p, err := e.SelectTab(tab)
				if err != nil {
					return err
				}
				printSuccess("%s tab selected, format %s", tab.Label(), p.Format)
				return nil
			})
		},
	}
}

func (c *CLI) draftTemplateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "template <1-9>",
		Short: "Switch the draft's template",
		Long:  "Switch the draft's template. Templates: " + templates.Names(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return perrors.New(perrors.ErrCodeInvalidTemplate, "template must be a number, got %q", args[0])
			}
			return c.editDraft(cmd, func(e *control.Editor) error {
				return applyTemplate(e, id)
			})
		},
	}
}

func (c *CLI) draftLogoCommand() *cobra.Command {
	var (
		preset string
		remove bool
		scale  float64
	)

	cmd := &cobra.Command{
		Use:   "logo [file]",
		Short: "Upload, place or remove the logo",
		Long: `Upload, place or remove the logo.

Positions: tl (top left), tr, bl, br, c (centre).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editDraft(cmd, func(e *control.Editor) error {
				if remove {
					e.RemoveLogo()
					printSuccess("Logo removed")
					return nil
				}
				if len(args) == 1 {
					if _, err := e.UploadLogo(args[0]); err != nil {
						return err
					}
					printSuccess("Logo uploaded")
				}
				if preset != "" {
					if _, err := e.SetLogoPreset(control.LogoPreset(preset)); err != nil {
						return err
					}
				}
				if scale > 0 {
					cur := e.Post().Logo.Scale
					e.NudgeLogo(0, 0, scale-cur)
				}
				l := e.Post().Logo
				printDetail("Logo at (%g%%, %g%%) x%g", l.X, l.Y, l.Scale)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&preset, "position", "p", "", "preset position: tl, tr, bl, br, c")
	cmd.Flags().Float64Var(&scale, "scale", 0, "logo scale (0.2-3)")
	cmd.Flags().BoolVar(&remove, "remove", false, "remove the logo")
	return cmd
}

func (c *CLI) draftBackgroundCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "background <file>",
		Short: "Use a local image as the background",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editDraft(cmd, func(e *control.Editor) error {
				if _, err := e.UploadBackground(args[0]); err != nil {
					return err
				}
				printSuccess("Background replaced")
				return nil
			})
		},
	}
}

func (c *CLI) draftSampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Fill the draft with the sample news story",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editDraft(cmd, func(e *control.Editor) error {
				p := e.LoadSample()
				printSuccess("Sample loaded: %s", p.Headline)
				return nil
			})
		},
	}
}

func (c *CLI) draftResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the draft to the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editDraft(cmd, func(e *control.Editor) error {
				e.Reset()
				printSuccess("Draft reset")
				return nil
			})
		},
	}
}

func (c *CLI) draftPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the local draft file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			fs, err := store.NewFileStore(filepath.Join(dir, draftsDir))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fs.Path(store.LocalKey))
			return nil
		},
	}
}
