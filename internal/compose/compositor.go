// Package compose resolves a stack of encoded layers into a final RGBA image.
//
// Every output pixel is computed from the words at the same coordinate in
// each layer and nothing else, so the image is split into row bands that run
// in parallel.
package compose

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"mc-skin-renderer/internal/layer"
	"mc-skin-renderer/internal/logging"
)

// Options tunes a composite. The zero value is valid.
type Options struct {
	// Workers is the number of row bands processed concurrently.
	// 0 means runtime.NumCPU().
	Workers int
	// Background, if set, is placed under the result. It must match the
	// layer dimensions.
	Background *image.NRGBA
}

// Compose resolves layers into a freshly allocated image. The layers are
// read only; the result does not depend on their order in the slice.
func Compose(ctx context.Context, layers []layer.Layer, opts Options) (*image.NRGBA, error) {
	w, h, err := layer.Validate(layers)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	if bg := opts.Background; bg != nil && (bg.Rect.Dx() != w || bg.Rect.Dy() != h) {
		return nil, fmt.Errorf("compose: %w: background is %dx%d, want %dx%d",
			layer.ErrDimensionMismatch, bg.Rect.Dx(), bg.Rect.Dy(), w, h)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > h {
		workers = h
	}
	band := (h + workers - 1) / workers

	start := time.Now()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	g, gctx := errgroup.WithContext(ctx)
	for y0 := 0; y0 < h; y0 += band {
		y1 := min(y0+band, h)
		g.Go(func() error {
			stack := make([]contribution, 0, len(layers))
			for y := y0; y < y1; y++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				row := out.Pix[y*out.Stride:]
				for x := 0; x < w; x++ {
					c := resolve(layers, y*w+x, stack[:0])
					if opts.Background != nil {
						c = over(c, opts.Background.NRGBAAt(opts.Background.Rect.Min.X+x, opts.Background.Rect.Min.Y+y))
					}
					row[x*4+0] = c.R
					row[x*4+1] = c.G
					row[x*4+2] = c.B
					row[x*4+3] = c.A
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	logging.L().Debug("composite",
		"layers", len(layers), "width", w, "height", h,
		"workers", workers, "elapsed", time.Since(start))
	return out, nil
}

// ResolveAt runs the per-pixel kernel of Compose for one coordinate.
// Coordinates outside the canvas resolve to transparent black.
func ResolveAt(layers []layer.Layer, x, y int) (color.NRGBA, error) {
	w, h, err := layer.Validate(layers)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("compose: %w", err)
	}
	if x < 0 || y < 0 || x >= w || y >= h {
		return color.NRGBA{}, nil
	}
	return resolve(layers, y*w+x, make([]contribution, 0, len(layers))), nil
}
