// Package pkg provides the core libraries for Slideweave slide layout.
//
// # Overview
//
// Slideweave turns a deck of slides, each a tree of containers, text,
// headings, frames and images with CSS-like styles, into positioned draw
// instructions. The pkg directory is organized into these areas:
//
//  1. [slide], [style] - Input model and the unit resolver
//  2. [layout], [fonts] - Flexbox solver and text measurement
//  3. [effect] - Glass (backdrop blur) synthesis
//  4. [render] - Draw instructions, the render mapper and output sinks
//  5. [pipeline] - Orchestration (resolve → solve → map → render)
//  6. [cache], [io], [diag], [errors], [observability] - Supporting infrastructure
//
// # Architecture
//
// The data flow through Slideweave:
//
//	deck.json
//	    ↓
//	[io] package (decode the deck)
//	    ↓
//	[style] package (units, colors, defaults)
//	    ↓
//	[layout] package (geometry tree in slide pixels)
//	    ↓
//	[render] package (draw instructions, glass via [effect])
//	    ↓
//	JSON/SVG/PNG/PDF output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/slideweave/pkg/effect"
//	    "github.com/matzehuels/slideweave/pkg/io"
//	    "github.com/matzehuels/slideweave/pkg/pipeline"
//	)
//
//	deck, _ := io.ImportDeck("talk.json")
//	runner := pipeline.NewRunner(nil, nil, effect.FileSource{Root: "."}, nil)
//	result, _ := runner.Execute(ctx, deck, pipeline.Options{
//	    Formats: []string{"json", "svg"},
//	})
//	os.WriteFile("talk.svg", result.Artifacts["svg"], 0o644)
//
// # Diagnostics
//
// Malformed styles never abort a run. Every fallback the resolver, solver,
// or mapper takes is recorded as a [diag.Diagnostic] with a stable code, the
// element path, and the offending property. Only a deck that cannot be laid
// out at all (no slides array, an unknown element type, an invalid viewport)
// returns an error.
//
// # Caching
//
// Blurred glass rasters and rendered artifacts are content-addressed. The
// [cache] package provides a file cache for local use and a Redis cache for
// sharing between machines; keys hash every input that affects the bytes.
//
// [slide]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/slide
// [style]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/style
// [layout]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/layout
// [fonts]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/fonts
// [effect]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/effect
// [render]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/io
// [diag]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/diag
// [diag.Diagnostic]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/diag#Diagnostic
// [errors]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/slideweave/pkg/observability
package pkg
