package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ncassessoria/gerapost/pkg/assets"
	"github.com/ncassessoria/gerapost/pkg/buildinfo"
	"github.com/ncassessoria/gerapost/pkg/cache"
	"github.com/ncassessoria/gerapost/pkg/config"
	"github.com/ncassessoria/gerapost/pkg/export"
	"github.com/ncassessoria/gerapost/pkg/fonts"
	"github.com/ncassessoria/gerapost/pkg/httputil"
	"github.com/ncassessoria/gerapost/pkg/metadata"
	"github.com/ncassessoria/gerapost/pkg/raster"
	"github.com/ncassessoria/gerapost/pkg/session"
	"github.com/ncassessoria/gerapost/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// draftsDir is the local draft directory under the config dir.
	draftsDir = "drafts"

	// importCachePrefix scopes import lookups in a shared cache backend.
	importCachePrefix = "import:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Gera Post composes branded news graphics for social media",
		Long: `Gera Post composes a branded social-media graphic from a news headline,
subtitle, background image, logo, category tag and footer handles, using one of
nine templates in feed (4:5) or story (9:16) format, and exports it as a PNG.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/gerapost/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.draftCommand())
	root.AddCommand(c.templatesCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.relayCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.cfg = &cfg
	return cfg, nil
}

// =============================================================================
// Component Factories
// =============================================================================

func (c *CLI) newFonts(cfg config.Config) *fonts.Library {
	return fonts.New(cfg.Fonts.Dir, fonts.WithLogger(c.Logger))
}

// newPipeline wires the export pipeline. sink may be nil.
func (c *CLI) newPipeline(cfg config.Config, sink export.Sink, ind export.Indicator) *export.Pipeline {
	loader := assets.NewLoader(assets.WithLogger(c.Logger))
	r := raster.New(c.newFonts(cfg), raster.WithLogger(c.Logger))
	opts := []export.Option{
		export.WithLogger(c.Logger),
		export.WithScale(cfg.Export.Scale),
	}
	if sink != nil {
		opts = append(opts, export.WithSink(sink))
	}
	if ind != nil {
		opts = append(opts, export.WithIndicator(ind))
	}
	return export.New(loader, r, opts...)
}

// newImportCache opens the import cache backend. An unusable backend is
// logged and replaced with no cache.
func (c *CLI) newImportCache(ctx context.Context, cfg config.Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	opts := cache.Options{Backend: cfg.Import.Cache, RedisAddr: cfg.Import.RedisAddr}
	if opts.Backend == cache.BackendFile || opts.Backend == "" {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		opts.Dir = dir
	}
	cc, err := cache.Open(ctx, opts)
	if err != nil {
		c.Logger.Warn("import cache unavailable", "backend", opts.Backend, "error", err)
		return cache.NewNullCache()
	}
	return cache.NewScoped(cc, importCachePrefix)
}

func (c *CLI) newImporter(ctx context.Context, cfg config.Config, noCache bool) (*metadata.Importer, cache.Cache) {
	cc := c.newImportCache(ctx, cfg, noCache)
	imp := metadata.NewImporter(cfg.Import.RelayURL,
		metadata.WithClient(httputil.NewClient(cfg.Import.Timeout)),
		metadata.WithTimeout(cfg.Import.Timeout),
		metadata.WithCache(cc, cfg.Import.CacheTTL),
		metadata.WithLogger(c.Logger),
	)
	return imp, cc
}

func sessionStore() (*session.CLIStore, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return session.NewCLIStore(filepath.Join(dir, "sessions"))
}

// newAdapter opens the draft stores. The remote store is connected only
// when configured; signed-out users always get the local draft.
func (c *CLI) newAdapter(ctx context.Context, cfg config.Config) (*store.Adapter, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	local, err := store.NewFileStore(filepath.Join(dir, draftsDir))
	if err != nil {
		return nil, err
	}
	sessions, err := sessionStore()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	var remote store.Store
	if cfg.Store.Backend == config.StoreMongo {
		if sess, _ := sessions.GetSession(ctx); sess.Authenticated() {
			m, err := store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
			if err != nil {
				return nil, err
			}
			remote = m
		}
	}
	return store.NewAdapter(local, remote, sessions, store.WithLogger(c.Logger)), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/gerapost/).
func cacheDir() (string, error) {
	return config.CacheDir()
}
