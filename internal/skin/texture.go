// Package skin holds the textures that decoded codewords index into.
package skin

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"mc-skin-renderer/internal/imageio"
)

// GridSize is the number of texel cells per row addressed by a codeword.
const GridSize = 64

var (
	ErrTextureWidth  = errors.New("skin: texture width is not a multiple of 64")
	ErrTextureHeight = errors.New("skin: texture height must be width or width/2")
)

// Texture is an immutable RGBA bitmap addressed on a 64-wide texel grid.
// HD textures (128, 256, ...) are sampled at the top-left texel of each cell.
type Texture struct {
	img   *image.NRGBA
	scale int
}

// NewTexture validates img and wraps it. The image must not be modified
// afterwards.
func NewTexture(img *image.NRGBA) (*Texture, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || w%GridSize != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrTextureWidth, w, h)
	}
	if h != w && h != w/2 {
		return nil, fmt.Errorf("%w: %dx%d", ErrTextureHeight, w, h)
	}
	if b.Min != (image.Point{}) {
		img = imageio.ToNRGBA(img)
	}
	return &Texture{img: img, scale: w / GridSize}, nil
}

// MustTexture is NewTexture for fixtures and tests.
func MustTexture(img *image.NRGBA) *Texture {
	t, err := NewTexture(img)
	if err != nil {
		panic(err)
	}
	return t
}

// Decode reads and validates a texture without any skin processing.
func Decode(r io.Reader) (*Texture, error) {
	img, err := imageio.Decode(r)
	if err != nil {
		return nil, err
	}
	return NewTexture(img)
}

// Load reads and validates a texture file without any skin processing.
func Load(path string) (*Texture, error) {
	img, err := imageio.Load(path)
	if err != nil {
		return nil, err
	}
	t, err := NewTexture(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Width returns the pixel width.
func (t *Texture) Width() int { return t.img.Rect.Dx() }

// Height returns the pixel height.
func (t *Texture) Height() int { return t.img.Rect.Dy() }

// Image returns the backing image. Callers must not modify it.
func (t *Texture) Image() *image.NRGBA { return t.img }

// At returns the texel for grid cell (u, v). ok is false when the cell lies
// outside the texture, e.g. the lower half of a 64x32 texture.
func (t *Texture) At(u, v uint8) (c color.NRGBA, ok bool) {
	x := int(u) * t.scale
	y := int(v) * t.scale
	if x >= t.img.Rect.Dx() || y >= t.img.Rect.Dy() {
		return color.NRGBA{}, false
	}
	i := y*t.img.Stride + x*4
	p := t.img.Pix[i : i+4 : i+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}, true
}
