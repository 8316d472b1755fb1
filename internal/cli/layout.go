package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slideweave/pkg/errors"
	deckio "github.com/matzehuels/slideweave/pkg/io"
	"github.com/matzehuels/slideweave/pkg/layout"
	"github.com/matzehuels/slideweave/pkg/pipeline"
)

// slideGeometry is the JSON shape of one slide in 'layout --json'.
type slideGeometry struct {
	Index    int                  `json:"index"`
	Title    string               `json:"title,omitempty"`
	Width    float64              `json:"width"`
	Height   float64              `json:"height"`
	Geometry *layout.GeometryNode `json:"geometry"`
}

// layoutCommand creates the layout command that prints computed geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		asJSON  bool
		slideIx int
	)

	cmd := &cobra.Command{
		Use:   "layout [deck.json]",
		Short: "Print the computed geometry of every slide",
		Long: `Print the computed geometry of every slide.

Each element is listed with its border box in absolute slide pixels. With
--json the geometry trees are written as JSON instead.`,
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

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", output)
				}
				defer f.Close()
				w = f
			}
			if asJSON {
				return writeGeometryJSON(w, slides)
			}
			return writeGeometryTree(w, slides)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write geometry as JSON")
	cmd.Flags().IntVarP(&slideIx, "slide", "s", -1, "only this slide (0-based)")

	return cmd
}

// layoutDeck loads a deck and runs it through layout and mapping without
// rendering artifacts.
func (c *CLI) layoutDeck(ctx context.Context, input string, opts pipeline.Options) (*pipeline.Result, error) {
	deck, err := readDeck(input)
	if err != nil {
		return nil, fmt.Errorf("load deck %s: %w", input, err)
	}
	runner, err := c.newRunner(ctx, false, deckRoot(input))
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	return runner.Layout(ctx, deck, opts)
}

// selectSlides returns every slide for ix < 0, else the one at ix.
func selectSlides(result *pipeline.Result, ix int) ([]pipeline.SlideResult, error) {
	if ix < 0 {
		return result.Slides, nil
	}
	if ix >= len(result.Slides) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "slide %d out of range (deck has %d)", ix, len(result.Slides))
	}
	return result.Slides[ix : ix+1], nil
}

func writeGeometryTree(w io.Writer, slides []pipeline.SlideResult) error {
	for i, s := range slides {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := pipeline.SlidePath(s.Index)
		if s.Title != "" {
			header += " " + s.Title
		}
		fmt.Fprintf(w, "%s (%gx%g)\n", StyleTitle.Render(header), s.Width, s.Height)
		if _, err := io.WriteString(w, s.Geometry.Tree()); err != nil {
			return err
		}
	}
	return nil
}

func writeGeometryJSON(w io.Writer, slides []pipeline.SlideResult) error {
	out := make([]slideGeometry, len(slides))
	for i, s := range slides {
		out[i] = slideGeometry{
			Index:    s.Index,
			Title:    s.Title,
			Width:    s.Width,
			Height:   s.Height,
			Geometry: s.Geometry,
		}
	}
	return deckio.WriteJSON(w, out)
}
