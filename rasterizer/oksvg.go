package rasterizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"icongen/logger"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// RasterizeOKSVG renders the SVG in pure Go. The drawing is scaled uniformly to fit
// the target box and centred; uncovered pixels stay transparent.
func RasterizeOKSVG(ctx context.Context, input, output string, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid target size %dx%d", opts.Width, opts.Height)
	}

	src, err := os.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	// Elements oksvg cannot draw (text, filters, images) fail the job instead of
	// silently leaving holes in the output.
	icon, err := oksvg.ReadIconStream(src, oksvg.StrictErrorMode)
	if err != nil {
		return fmt.Errorf("parse %s: %w (try ICONGEN_RASTERIZER=rsvg-convert)", input, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	img := renderIcon(icon, opts.Width, opts.Height)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return err
	}

	logger.Debugf("oksvg rendered %s to %s (%dx%d)", input, output, opts.Width, opts.Height)
	return nil
}

func renderIcon(icon *oksvg.SvgIcon, width, height int) *image.RGBA {
	tw, th := float64(width), float64(height)

	// Without a viewBox the drawing is stretched over the whole canvas
	x, y, w, h := 0.0, 0.0, tw, th
	if vw, vh := icon.ViewBox.W, icon.ViewBox.H; vw > 0 && vh > 0 {
		scale := math.Min(tw/vw, th/vh)
		w, h = vw*scale, vh*scale
		x, y = (tw-w)/2, (th-h)/2
	}
	icon.SetTarget(x, y, w, h)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)
	return img
}
