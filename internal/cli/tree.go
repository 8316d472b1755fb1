package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/render/treeviz"
)

// Tree output formats.
const (
	treeFormatDOT = "dot"
	treeFormatSVG = "svg"
	treeFormatPNG = "png"
	treeFormatPDF = "pdf"
)

// treeCommand creates the tree command that draws the element tree of a slide.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		flags    layoutFlags
		output   string
		format   string
		slideIx  int
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "tree [deck.json]",
		Short: "Draw the element tree of a slide with graphviz",
		Long: `Draw the element tree of a slide with graphviz.

Nodes are colored by element kind; placeholders for invalid elements are
dashed. --detailed adds each element's box and text content. The default
output is DOT on stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.config.PipelineOptions()
			flags.apply(cmd, &opts)
			opts.Logger = c.Logger

			result, err := c.layoutDeck(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			slides, err := selectSlides(result, slideIx)
			if err != nil {
				return err
			}
			if len(slides) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "deck has no slides")
			}

			dot := treeviz.ToDOT(slides[0].Geometry, treeviz.Options{Detailed: detailed})
			data, err := renderTree(cmd.Context(), dot, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", output)
			}
			printSuccess("Element tree written")
			printFile(output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "type", "t", treeFormatDOT, "output type: dot, svg, png, pdf")
	cmd.Flags().IntVarP(&slideIx, "slide", "s", 0, "slide to draw (0-based)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show boxes and text content")

	return cmd
}

// renderTree converts DOT source to the requested output type.
func renderTree(ctx context.Context, dot, format string) ([]byte, error) {
	switch format {
	case treeFormatDOT:
		return []byte(dot), nil
	case treeFormatSVG:
		return treeviz.RenderSVG(ctx, dot)
	case treeFormatPNG:
		return treeviz.RenderPNG(ctx, dot, 1)
	case treeFormatPDF:
		return treeviz.RenderPDF(ctx, dot)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid tree type: %q (must be one of: dot, svg, png, pdf)", format)
	}
}
