package rasterizer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"

	"icongen/logger"
)

// RasterizeFunc is the function signature for any rasterizer backend.
// It reads the SVG at input and writes a PNG of exactly opts.Width x opts.Height to output.
type RasterizeFunc func(ctx context.Context, input, output string, opts Options) error

type Options struct {
	Width, Height int
}

// ErrUnavailable is returned by Require when a backend cannot be used on this machine.
var ErrUnavailable = errors.New("rasterizer unavailable")

// Registry maps backend name → rasterizer function
var Registry = map[string]RasterizeFunc{}

// installHints is the remediation text printed when a backend is missing
var installHints = map[string]string{
	"magick": "Install ImageMagick 7 with SVG support:\n" +
		"  apt install imagemagick librsvg2-bin\n" +
		"  or\n" +
		"  brew install imagemagick",
	"rsvg-convert": "Install librsvg:\n" +
		"  apt install librsvg2-bin\n" +
		"  or\n" +
		"  brew install librsvg",
	"inkscape": "Install Inkscape 1.x:\n" +
		"  apt install inkscape\n" +
		"  or\n" +
		"  brew install --cask inkscape",
}

// Register adds a command-backed rasterizer if the underlying command exists, logs status
func Register(name string, cmdName string, fn RasterizeFunc) {
	if _, err := exec.LookPath(cmdName); err != nil {
		logger.Debugf("rasterizer [%s] skipped: command '%s' not found in PATH", name, cmdName)
		return
	}
	Registry[name] = fn
	logger.Debugf("rasterizer [%s] registered (command: %s)", name, cmdName)
}

// RegisterBuiltin adds a rasterizer that has no external command dependency
func RegisterBuiltin(name string, fn RasterizeFunc) {
	Registry[name] = fn
	logger.Debugf("rasterizer [%s] registered (built in)", name)
}

// Get looks up a rasterizer by name
func Get(name string) (RasterizeFunc, bool) {
	fn, ok := Registry[name]
	return fn, ok
}

// Names returns the registered backend names in sorted order
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Require is the dependency check. It returns the rasterizer for name, or an error
// wrapping ErrUnavailable that carries installation guidance.
func Require(name string) (RasterizeFunc, error) {
	if fn, ok := Get(name); ok {
		return fn, nil
	}
	hint, known := installHints[name]
	if !known {
		if name == "oksvg" {
			hint = "The built-in rasterizer was not registered; call RegisterDefaults first."
		} else {
			hint = fmt.Sprintf("Unknown rasterizer %q. Available: %v", name, Names())
		}
	}
	return nil, fmt.Errorf("%w: %s\n\n%s", ErrUnavailable, name, hint)
}

// RegisterDefaults registers every backend usable on this machine
func RegisterDefaults() {
	RegisterBuiltin("oksvg", RasterizeOKSVG)
	Register("magick", "magick", RasterizeMagick)
	Register("rsvg-convert", "rsvg-convert", RasterizeRSVG)
	Register("inkscape", "inkscape", RasterizeInkscape)
}
