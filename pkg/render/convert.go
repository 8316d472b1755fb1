package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/matzehuels/slideweave/pkg/errors"
)

// ConverterTool is the executable used for SVG conversion.
var ConverterTool = "rsvg-convert"

// ToPDF converts svg to PDF.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "-f", "pdf")
}

// ToPNG converts svg to PNG at the given scale. A scale <= 0 means 1.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(ctx, svg, "-f", "png", "-z", strconv.FormatFloat(scale, 'f', -1, 64))
}

func convert(ctx context.Context, svg []byte, args ...string) ([]byte, error) {
	path, err := exec.LookPath(ConverterTool)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err,
			"%s not found; install librsvg to export this format", ConverterTool)
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", ConverterTool, bytesOrStatus(stderr.Bytes(), err))
	}
	return out.Bytes(), nil
}

func bytesOrStatus(b []byte, err error) string {
	if s := string(bytes.TrimSpace(b)); s != "" {
		return s
	}
	return fmt.Sprint(err)
}
