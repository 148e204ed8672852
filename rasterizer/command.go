package rasterizer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"icongen/logger"
)

// RasterizeMagick renders with ImageMagick. The image is fitted inside the box and
// padded to the exact size with a transparent background.
func RasterizeMagick(ctx context.Context, in, out string, o Options) error {
	size := fmt.Sprintf("%dx%d", o.Width, o.Height)
	args := []string{
		"-background", "none",
		"-density", "384",
		in,
		"-resize", size,
		"-gravity", "center",
		"-extent", size,
		"png32:" + out,
	}
	return runCommand(ctx, "magick", args...)
}

// RasterizeRSVG renders with librsvg's rsvg-convert at exactly the requested size
func RasterizeRSVG(ctx context.Context, in, out string, o Options) error {
	args := []string{
		"--width", fmt.Sprint(o.Width),
		"--height", fmt.Sprint(o.Height),
		"--format", "png",
		"--output", out,
		in,
	}
	return runCommand(ctx, "rsvg-convert", args...)
}

// RasterizeInkscape renders with the Inkscape 1.x command line
func RasterizeInkscape(ctx context.Context, in, out string, o Options) error {
	args := []string{
		in,
		"--export-type=png",
		"--export-filename=" + out,
		"--export-width=" + fmt.Sprint(o.Width),
		"--export-height=" + fmt.Sprint(o.Height),
	}
	return runCommand(ctx, "inkscape", args...)
}

// runCommand runs an external rasterizer, folding its stderr into the returned error
func runCommand(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	logger.Debugf("running %s %s", name, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
