// Package cli implements the slideweave command-line interface.
//
// # Commands
//
//   - build: lay out a deck and render artifacts (json, svg, png, pdf)
//   - layout: print the geometry tree of every slide
//   - check: list diagnostics, or browse them interactively with -i
//   - tree: draw the element tree of a slide with graphviz
//   - cache: inspect and clear the local cache
//
// Settings come from slideweave.toml (see internal/config). Flags given on the
// command line override the file.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/slideweave/internal/config"
	"github.com/matzehuels/slideweave/pkg/buildinfo"
	"github.com/matzehuels/slideweave/pkg/cache"
	"github.com/matzehuels/slideweave/pkg/effect"
	deckio "github.com/matzehuels/slideweave/pkg/io"
	"github.com/matzehuels/slideweave/pkg/pipeline"
	"github.com/matzehuels/slideweave/pkg/slide"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "slideweave"

// stdinInput reads the deck from standard input.
const stdinInput = "-"

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
	Logger *log.Logger

	configPath string
	config     config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Slideweave lays out slide decks and renders them",
		Long: `Slideweave turns a JSON slide deck into positioned draw instructions.

Elements are laid out with a flexbox subset, glass frames get a pre-blurred
backdrop, and the result is written as JSON, SVG, PNG, or PDF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./slideweave.toml, then ~/.config/slideweave/config.toml)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig discovers and reads the config file.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Image references resolve
// against root, the directory of the deck.
func (c *CLI) newRunner(ctx context.Context, noCache bool, root string) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, newKeyer(), effect.FileSource{Root: root}, c.Logger), nil
}

// newCache picks the cache backend. A configured Redis URL wins over the
// local file cache; an unreachable Redis falls back to the file cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || !c.config.Cache.Enabled {
		return cache.NewNullCache(), nil
	}
	if url := c.config.Cache.RedisURL; url != "" {
		rc, err := cache.NewRedisCache(ctx, url)
		if err == nil {
			return rc, nil
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "error", err)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newKeyer scopes cache keys to the running build.
func newKeyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Scope())
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/slideweave/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// deckRoot returns the directory image references resolve against.
func deckRoot(input string) string {
	if input == stdinInput {
		return "."
	}
	return filepath.Dir(input)
}

// =============================================================================
// Input
// =============================================================================

// readDeck loads a deck from a file, or from stdin when input is "-".
func readDeck(input string) (*slide.Deck, error) {
	if input == stdinInput {
		return deckio.ReadDeck(os.Stdin)
	}
	return deckio.ImportDeck(input)
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the flags shared by every command that lays out a deck.
type layoutFlags struct {
	format   string
	width    float64
	height   float64
	measurer string
	dpi      float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "slide format: wide, standard (default: the deck's own)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "viewport width in px (overrides --format)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "viewport height in px (overrides --format)")
	cmd.Flags().StringVar(&f.measurer, "measurer", "", "text measurer: heuristic (default), font")
	cmd.Flags().Float64Var(&f.dpi, "dpi", 0, "px per inch of instruction boxes (default 96)")
}

// apply overrides config values with the flags the user set.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		opts.Format = slide.Format(f.format)
	}
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if flags.Changed("height") {
		opts.Height = f.height
	}
	if flags.Changed("measurer") {
		opts.Measurer = f.measurer
	}
	if flags.Changed("dpi") {
		opts.DPI = f.dpi
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
