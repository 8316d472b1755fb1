package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slideweave/pkg/errors"
	deckio "github.com/matzehuels/slideweave/pkg/io"
	"github.com/matzehuels/slideweave/pkg/pipeline"
)

// buildFlags holds the command-line flags for the build command. Zero values
// defer to the config file.
type buildFlags struct {
	layoutFlags

	output      string  // output directory
	filename    string  // file name pattern, "[name]" is the input base name
	formats     string  // comma-separated output formats
	blur        float64 // glass blur sigma
	quality     int     // glass JPEG quality
	concurrency int     // concurrent glass syntheses per slide
	scale       float64 // PNG scale
	diagnostics bool    // embed diagnostics in JSON output
	noCache     bool
	refresh     bool
}

// buildCommand creates the build command that renders a deck to artifacts.
func (c *CLI) buildCommand() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build [deck.json]",
		Short: "Lay out a deck and render it to JSON, SVG, PNG, or PDF",
		Long: `Lay out a deck and render it.

The build command resolves styles, solves the flexbox layout of every slide,
synthesizes glass backdrops, and writes one file per output format. Use "-" to
read the deck from stdin.

Diagnostics never fail a build. Run 'slideweave check' to list them.

Blurred backdrops and rendered artifacts are cached; use --refresh to bypass
cached results or --no-cache to disable the cache entirely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.buildOptions(cmd, &flags)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			dir, pattern := c.config.Output.Directory, c.config.Output.Filename
			if cmd.Flags().Changed("output") {
				dir = flags.output
			}
			if cmd.Flags().Changed("filename") {
				pattern = flags.filename
			}
			return c.runBuild(cmd.Context(), args[0], opts, dir, pattern, flags.noCache)
		},
	}

	flags.layoutFlags.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output directory (default ./output)")
	cmd.Flags().StringVar(&flags.filename, "filename", "", "output file name pattern (default [name])")
	cmd.Flags().StringVarP(&flags.formats, "formats", "f", "", "output format(s): json (default), svg, png, pdf (comma-separated)")
	cmd.Flags().Float64Var(&flags.blur, "blur", 0, "glass blur strength in px (default 5)")
	cmd.Flags().IntVar(&flags.quality, "quality", 0, "glass JPEG quality 1-100 (default 70)")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "concurrent glass syntheses per slide (default 4)")
	cmd.Flags().Float64Var(&flags.scale, "scale", 0, "PNG scale factor (default 1)")
	cmd.Flags().BoolVar(&flags.diagnostics, "diagnostics", false, "include diagnostics in JSON output")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results")

	return cmd
}

// buildOptions starts from the config file and applies the flags that were
// set on the command line.
func (c *CLI) buildOptions(cmd *cobra.Command, flags *buildFlags) pipeline.Options {
	opts := c.config.PipelineOptions()
	flags.layoutFlags.apply(cmd, &opts)

	set := cmd.Flags().Changed
	if set("formats") {
		opts.Formats = parseFormats(flags.formats)
	}
	if set("blur") {
		opts.BlurStrength = flags.blur
	}
	if set("quality") {
		opts.Quality = flags.quality
	}
	if set("concurrency") {
		opts.Concurrency = flags.concurrency
	}
	if set("scale") {
		opts.Scale = flags.scale
	}
	opts.Diagnostics = flags.diagnostics
	opts.Refresh = flags.refresh
	opts.Logger = c.Logger
	return opts
}

// runBuild loads the deck, runs the pipeline, and writes one file per format.
func (c *CLI) runBuild(ctx context.Context, input string, opts pipeline.Options, dir, pattern string, noCache bool) error {
	prog := newProgress(c.Logger)

	deck, err := readDeck(input)
	if err != nil {
		return fmt.Errorf("load deck %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache, deckRoot(input))
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Building %s...", plural(len(deck.Slides), "slide")))
	spinner.Start()

	result, err := runner.Execute(ctx, deck, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, dir, pattern, input)
	if err != nil {
		return err
	}
	prog.done("Built " + input)

	title := result.Title
	if title == "" {
		title = deckio.BaseName(input)
	}
	printSuccess("Built %s", title)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats, result.CacheInfo.RenderHit)

	if diags := result.Diagnostics(); len(diags) > 0 {
		printNewline()
		printWarning("%s", plural(len(diags), "diagnostic"))
		printDiagnosticSummary(diags)
		printNextStep("Inspect", appName+" check "+input)
	}
	return nil
}

// writeArtifacts writes artifacts in format order and returns the paths.
func writeArtifacts(artifacts map[string][]byte, formats []string, dir, pattern, input string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal, "no %s artifact produced", format)
		}
		path := deckio.OutputPath(dir, pattern, input, format)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory")
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
