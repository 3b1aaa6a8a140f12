package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// ToPDF converts SVG to PDF.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, svg, "-f", "pdf")
}

// ToPNG converts SVG to PNG at the given scale (2.0 gives 2x resolution).
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	return rsvgConvert(ctx, svg, "-f", "png", "-z", strconv.FormatFloat(scale, 'f', -1, 64))
}

func rsvgConvert(ctx context.Context, svg []byte, args ...string) ([]byte, error) {
	path, err := exec.LookPath("rsvg-convert")
	if err != nil {
		return nil, fmt.Errorf("rsvg-convert not found (install librsvg): %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}
