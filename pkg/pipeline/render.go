package pipeline

import (
	"context"

	"github.com/matzehuels/slideweave/pkg/effect"
	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/render/sink"
	"github.com/matzehuels/slideweave/pkg/slide"
)

// deckMeta is the deck-level information the sinks record.
type deckMeta struct {
	title  string
	format slide.Format
}

// renderFormat renders pages in one format. src inlines and rasterizes image
// references; it may be nil.
func renderFormat(ctx context.Context, format string, pages []sink.Page, meta deckMeta, opts Options, src effect.ImageSource) ([]byte, error) {
	switch format {
	case FormatJSON:
		return sink.RenderJSON(pages, buildJSONOptions(meta, opts)...)
	case FormatSVG:
		return sink.RenderSVG(ctx, pages, buildSVGOptions(src)...)
	case FormatPNG:
		return sink.RenderPNG(ctx, pages, sink.WithScale(opts.Scale), sink.WithPNGSource(src))
	case FormatPDF:
		return sink.RenderPDF(ctx, pages, sink.WithPDFSVGOptions(buildSVGOptions(src)...))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
}

func buildJSONOptions(meta deckMeta, opts Options) []sink.JSONOption {
	out := []sink.JSONOption{
		sink.WithJSONTitle(meta.title),
		sink.WithJSONFormat(meta.format),
		sink.WithJSONDPI(opts.DPI),
	}
	if opts.Diagnostics {
		out = append(out, sink.WithJSONDiagnostics())
	}
	return out
}

func buildSVGOptions(src effect.ImageSource) []sink.SVGOption {
	if src == nil {
		return nil
	}
	return []sink.SVGOption{sink.WithSource(src)}
}
