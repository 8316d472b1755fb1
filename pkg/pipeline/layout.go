package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/slideweave/pkg/diag"
	"github.com/matzehuels/slideweave/pkg/effect"
	"github.com/matzehuels/slideweave/pkg/fonts"
	"github.com/matzehuels/slideweave/pkg/layout"
	"github.com/matzehuels/slideweave/pkg/observability"
	"github.com/matzehuels/slideweave/pkg/render"
	"github.com/matzehuels/slideweave/pkg/slide"
	"github.com/matzehuels/slideweave/pkg/style"
)

// slideEnv is the per-run state shared by all slides of a deck.
type slideEnv struct {
	deck     *slide.Deck
	size     slide.Size
	styles   *style.Resolver
	measurer layout.TextMeasurer
	effects  *effect.Synthesizer
	opts     Options
}

// newMeasurer returns the text measurer named by opts.
func newMeasurer(name string) layout.TextMeasurer {
	if name == MeasurerFont {
		return fonts.NewMeasurer()
	}
	return layout.Heuristic{}
}

// SlidePath returns the diagnostic path of slide i.
func SlidePath(i int) string { return fmt.Sprintf("slide[%d]", i) }

// solveSlide runs one slide through solve and map. Hooks fire around it.
func (env *slideEnv) solveSlide(ctx context.Context, i int) (SlideResult, error) {
	s := env.deck.Slides[i]
	path := SlidePath(i)
	root := s.Root(env.deck.Style)

	start := time.Now()
	observability.Pipeline().OnSlideStart(ctx, i, root.Count())
	res, err := env.run(ctx, i, s, root, path)
	observability.Pipeline().OnSlideComplete(ctx, i, len(res.Instructions), time.Since(start), err)
	return res, err
}

func (env *slideEnv) run(ctx context.Context, i int, s *slide.Slide, root *slide.Element, path string) (SlideResult, error) {
	res := SlideResult{
		Index:  i,
		Title:  s.Title,
		Width:  env.size.Width,
		Height: env.size.Height,
	}

	solver := layout.Solver{Styles: env.styles, Measurer: env.measurer, Path: path}
	geo, diags, err := solver.Solve(root, env.size.Width, env.size.Height)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	res.Geometry = geo

	bg, bgDiags := background(s.Background)
	diags.Extend(bgDiags.WithPath(path))

	mapper := render.Mapper{
		DPI:          env.opts.DPI,
		Effects:      env.effects,
		Background:   bg,
		SlideWidth:   env.size.Width,
		SlideHeight:  env.size.Height,
		BlurStrength: env.opts.BlurStrength,
		Quality:      env.opts.Quality,
		Concurrency:  env.opts.Concurrency,
	}
	ins, mapDiags, err := mapper.Map(ctx, geo)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	diags.Extend(mapDiags)

	res.Instructions = ins
	res.Diagnostics = diags
	return res, nil
}

// background resolves a slide background. A nil background, or one with
// neither a color nor an image, yields nil.
func background(b *slide.Background) (*render.Background, diag.List) {
	if b == nil || (b.Color == "" && b.Image == "") {
		return nil, nil
	}
	var diags diag.List
	out := &render.Background{Image: b.Image, Size: style.FitCover}
	if b.Color != "" {
		c, d := style.ResolveColor(b.Color, "background.color")
		if d != nil {
			diags.Add(*d)
		}
		out.Color = c
	}
	if b.Size != "" {
		f, d := style.ParseFit(b.Size, "background.size", style.FitCover)
		if d != nil {
			diags.Add(*d)
		}
		out.Size = f
	}
	return out, diags
}
