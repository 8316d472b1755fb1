// Package io provides JSON import and export for slide decks.
//
// # Overview
//
// Decks are plain JSON documents. The format is designed for:
//
//   - Authoring by hand or by tools that generate presentations
//   - Round-trip preservation: import, export, and re-import identically
//   - Stable output naming for build artifacts
//
// # JSON Format
//
// A deck has a title, a format, text defaults, and a list of slides:
//
//	{
//	  "title": "Quarterly review",
//	  "format": "wide",
//	  "defaults": {"fontSize": "16px", "color": "#1f2937"},
//	  "slides": [
//	    {
//	      "background": {"image": "assets/bg.jpg", "size": "cover"},
//	      "style": {"padding": "40px"},
//	      "children": [
//	        {"type": "heading", "level": 1, "content": "Results"},
//	        {"type": "frame", "style": {"glassEffect": true, "flex": 1}}
//	      ]
//	    }
//	  ]
//	}
//
// # Element Fields
//
// Required:
//   - type: "container", "text", "heading", "frame", or "image"
//
// Optional:
//   - id: Free-form identifier, shown in trees and diagnostics
//   - style: Object of style properties (see the style package)
//   - content: Text of text and heading elements
//   - level: Heading level 1-6
//   - src, alt: Image reference and description
//   - children: Nested elements of containers and frames
//
// # Import
//
// Use [ImportDeck] to read a deck from a file path, or [ReadDeck] to read
// from any io.Reader:
//
//	deck, err := io.ImportDeck("talk.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A missing or unknown element type is a load error. Every other problem
// (bad units, unknown properties, malformed colors) is left to the pipeline,
// which reports it as a diagnostic.
//
// # Export
//
// Use [ExportDeck] or [WriteDeck] to write a deck back out, and [WriteJSON]
// for any other value such as geometry dumps.
//
// # Output Naming
//
// [OutputPath] expands "[name]" in a filename pattern with the base name of
// the input and appends the format extension.
package io
