// Package layer associates an encoded geometry buffer with the texture it
// indexes and the policy used to blend it.
package layer

import (
	"context"
	"errors"
	"fmt"

	"mc-skin-renderer/internal/codec"
	"mc-skin-renderer/internal/skin"
)

var (
	ErrNoLayers          = errors.New("layer: no layers to composite")
	ErrDimensionMismatch = errors.New("layer: dimension mismatch")
	ErrNoBuffer          = errors.New("layer: missing encoded buffer")
	ErrNoTexture         = errors.New("layer: missing texture")
)

// BlendKind selects how a layer's samples take part in visibility.
type BlendKind uint8

const (
	// Opaque samples hide everything behind them. Fully transparent texels
	// are discarded.
	Opaque BlendKind = iota
	// Cutout is Opaque with a configurable alpha threshold.
	Cutout
	// Translucent samples keep their alpha and are blended over what lies
	// behind them.
	Translucent
)

func (k BlendKind) String() string {
	switch k {
	case Opaque:
		return "opaque"
	case Cutout:
		return "cutout"
	case Translucent:
		return "translucent"
	default:
		return fmt.Sprintf("BlendKind(%d)", uint8(k))
	}
}

// BlendMode is a BlendKind plus its cutout threshold.
type BlendMode struct {
	Kind BlendKind
	// Threshold: samples with alpha <= Threshold are discarded.
	// Ignored for Translucent.
	Threshold uint8
}

func OpaqueMode() BlendMode                { return BlendMode{Kind: Opaque} }
func CutoutMode(threshold uint8) BlendMode { return BlendMode{Kind: Cutout, Threshold: threshold} }
func TranslucentMode() BlendMode           { return BlendMode{Kind: Translucent} }

// Terminates reports whether a surviving sample of this mode hides
// everything behind it.
func (m BlendMode) Terminates() bool {
	return m.Kind != Translucent
}

// Discards reports whether a texel with the given alpha is dropped.
func (m BlendMode) Discards(alpha uint8) bool {
	if m.Kind == Translucent {
		return alpha == 0
	}
	return alpha <= m.Threshold
}

func (m BlendMode) String() string {
	if m.Kind == Cutout {
		return fmt.Sprintf("cutout(%d)", m.Threshold)
	}
	return m.Kind.String()
}

// Layer is one geometry pass ready for compositing. Layers are immutable for
// the duration of a composite and carry no ordering: visibility comes from
// depth alone.
type Layer struct {
	Name    string
	Buffer  *codec.Buffer
	Texture *skin.Texture
	Blend   BlendMode
	Shading bool
}

// Source produces the encoded buffer of one layer. Baked map files and the
// CPU rasterizer both implement it.
type Source interface {
	Buffer(ctx context.Context) (*codec.Buffer, error)
}

// Static is a Source over an already materialized buffer.
type Static struct {
	Buf *codec.Buffer
}

func (s Static) Buffer(context.Context) (*codec.Buffer, error) {
	if s.Buf == nil {
		return nil, ErrNoBuffer
	}
	return s.Buf, nil
}

// FromSource builds a layer by pulling the buffer from src.
func FromSource(ctx context.Context, name string, src Source, tex *skin.Texture, blend BlendMode, shading bool) (Layer, error) {
	buf, err := src.Buffer(ctx)
	if err != nil {
		return Layer{}, fmt.Errorf("layer %q: %w", name, err)
	}
	return Layer{Name: name, Buffer: buf, Texture: tex, Blend: blend, Shading: shading}, nil
}

// Validate checks the compositor's input contract and returns the shared
// dimensions.
func Validate(layers []Layer) (w, h int, err error) {
	if len(layers) == 0 {
		return 0, 0, ErrNoLayers
	}
	for i, l := range layers {
		if l.Buffer == nil {
			return 0, 0, fmt.Errorf("%w: layer %d %q", ErrNoBuffer, i, l.Name)
		}
		if l.Texture == nil {
			return 0, 0, fmt.Errorf("%w: layer %d %q", ErrNoTexture, i, l.Name)
		}
		if l.Texture.Width()%skin.GridSize != 0 {
			return 0, 0, fmt.Errorf("layer %d %q: %w", i, l.Name, skin.ErrTextureWidth)
		}
		if l.Buffer.Width <= 0 || l.Buffer.Height <= 0 {
			return 0, 0, fmt.Errorf("%w: layer %d %q is %dx%d",
				ErrDimensionMismatch, i, l.Name, l.Buffer.Width, l.Buffer.Height)
		}
		if len(l.Buffer.Words) != l.Buffer.Width*l.Buffer.Height {
			return 0, 0, fmt.Errorf("%w: layer %d %q has %d words for %dx%d",
				ErrDimensionMismatch, i, l.Name, len(l.Buffer.Words), l.Buffer.Width, l.Buffer.Height)
		}
		if i == 0 {
			w, h = l.Buffer.Width, l.Buffer.Height
			continue
		}
		if l.Buffer.Width != w || l.Buffer.Height != h {
			return 0, 0, fmt.Errorf("%w: layer %d %q is %dx%d, want %dx%d",
				ErrDimensionMismatch, i, l.Name, l.Buffer.Width, l.Buffer.Height, w, h)
		}
	}
	return w, h, nil
}
