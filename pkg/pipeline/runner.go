package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slideweave/pkg/cache"
	"github.com/matzehuels/slideweave/pkg/effect"
	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/observability"
	"github.com/matzehuels/slideweave/pkg/slide"
	"github.com/matzehuels/slideweave/pkg/style"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache, image source, and logger; it
// doesn't store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Source effect.ImageSource
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache, keyer, and image source.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// A nil source degrades glass frames and image sinks to placeholders.
// A nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, source effect.ImageSource, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Source: source,
		Logger: logger,
	}
}

// Execute runs the complete resolve → solve → map → render pipeline with
// caching. Slides are processed in input order; a cancelled ctx stops the run
// and no partial result is returned.
func (r *Runner) Execute(ctx context.Context, deck *slide.Deck, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Layout and mapping
	layoutStart := time.Now()
	result, err := r.Layout(ctx, deck, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)

	opts.Logger.Info("mapped slides",
		"slides", result.Stats.SlideCount,
		"nodes", result.Stats.NodeCount,
		"instructions", result.Stats.InstructionCount,
		"diagnostics", result.Stats.DiagnosticCount,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout resolves, solves, and maps every slide of deck. Artifacts are not
// rendered.
func (r *Runner) Layout(ctx context.Context, deck *slide.Deck, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	if err := deck.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid deck")
	}
	size, err := opts.Viewport(deck)
	if err != nil {
		return nil, err
	}

	styles, defaultDiags := style.NewResolver(size.Width, size.Height).WithDefaults(deck.Defaults)
	env := &slideEnv{
		deck:     deck,
		size:     size,
		styles:   styles,
		measurer: newMeasurer(opts.Measurer),
		effects:  r.synthesizer(opts),
		opts:     opts,
	}

	result := &Result{
		Title:  deck.Title,
		Format: deck.Format,
		Slides: make([]SlideResult, 0, len(deck.Slides)),
	}
	for i := range deck.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := env.solveSlide(ctx, i)
		if err != nil {
			return nil, err
		}
		if i == 0 && len(defaultDiags) > 0 {
			// Deck defaults are reported once, on the first slide.
			res.Diagnostics = append(defaultDiags.WithPath("defaults"), res.Diagnostics...)
		}
		opts.Logger.Debug("solved slide",
			"slide", i,
			"nodes", res.Geometry.Count(),
			"instructions", len(res.Instructions),
			"diagnostics", len(res.Diagnostics))

		result.Slides = append(result.Slides, res)
		result.Stats.NodeCount += res.Geometry.Count()
		result.Stats.InstructionCount += len(res.Instructions)
		result.Stats.DiagnosticCount += len(res.Diagnostics)
	}
	result.Stats.SlideCount = len(result.Slides)
	return result, nil
}

// synthesizer builds the glass synthesizer for a run. Refresh bypasses the
// raster cache entirely.
func (r *Runner) synthesizer(opts Options) *effect.Synthesizer {
	if opts.Refresh {
		return effect.New(r.Source)
	}
	return effect.New(r.Source, effect.WithCache(cache.Observed(r.Cache, cache.KeyTypeEffect), r.Keyer))
}

// RenderWithCacheInfo generates artifacts with caching and returns whether
// every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, result *Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	pages := result.Pages()
	pagesData, err := json.Marshal(pages)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize instructions for cache key")
	}
	pagesHash := cache.Hash(pagesData)
	artifactCache := cache.Observed(r.Cache, cache.KeyTypeArtifact)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(pagesHash, opts.ArtifactKeyOpts(format))
			data, hit, err := artifactCache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered := make(map[string][]byte, len(opts.Formats))
	meta := deckMeta{title: result.Title, format: result.Format}
	for _, format := range opts.Formats {
		start := time.Now()
		observability.Pipeline().OnRenderStart(ctx, format)
		data, err := renderFormat(ctx, format, pages, meta, opts, r.Source)
		observability.Pipeline().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		rendered[format] = data

		key := r.Keyer.ArtifactKey(pagesHash, opts.ArtifactKeyOpts(format))
		if err := artifactCache.Set(ctx, key, data, opts.CacheTTL); err != nil {
			opts.Logger.Debug("cache write failed", "format", format, "error", err)
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, result *Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, result, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
