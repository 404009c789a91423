package compose

import (
	"cmp"
	"image/color"
	"math"
	"slices"
	"strings"

	"mc-skin-renderer/internal/codec"
	"mc-skin-renderer/internal/layer"
	"mc-skin-renderer/internal/shading"
)

// contribution is one surviving layer sample at a pixel, already shaded.
type contribution struct {
	depth      uint16
	name       string
	terminates bool
	c          color.NRGBA
}

func packed(c color.NRGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// nearer orders contributions nearest first. Equal depths fall back to the
// layer name, then opaque before translucent, then the shaded colour, so the
// order never depends on where a layer sits in the input slice.
func nearer(a, b contribution) int {
	if c := cmp.Compare(a.depth, b.depth); c != 0 {
		return c
	}
	if c := strings.Compare(a.name, b.name); c != 0 {
		return c
	}
	if a.terminates != b.terminates {
		if a.terminates {
			return -1
		}
		return 1
	}
	return cmp.Compare(packed(a.c), packed(b.c))
}

// resolve computes the output colour at word index i. stack is scratch
// space with enough capacity for one entry per layer.
func resolve(layers []layer.Layer, i int, stack []contribution) color.NRGBA {
	for li := range layers {
		l := &layers[li]
		s := codec.Decode(l.Buffer.Words[i])
		if !s.Present {
			continue
		}
		c, ok := l.Texture.At(s.U, s.V)
		if !ok || l.Blend.Discards(c.A) {
			continue
		}
		if l.Shading {
			c = shade(c, s.Shading)
		}
		stack = append(stack, contribution{
			depth:      s.Depth,
			name:       l.Name,
			terminates: l.Blend.Terminates(),
			c:          c,
		})
	}
	if len(stack) == 0 {
		return color.NRGBA{}
	}
	slices.SortFunc(stack, nearer)

	end := len(stack)
	for k, ct := range stack {
		if ct.terminates {
			end = k + 1
			break
		}
	}

	dst := stack[end-1].c
	for k := end - 2; k >= 0; k-- {
		dst = over(stack[k].c, dst)
	}
	return dst
}

// shade multiplies RGB by the quantized light factor. Alpha is untouched.
func shade(c color.NRGBA, q uint8) color.NRGBA {
	if q == codec.MaxShading {
		return c
	}
	f := shading.Dequantize(q)
	return color.NRGBA{
		R: uint8(math.Round(float64(c.R) * f)),
		G: uint8(math.Round(float64(c.G) * f)),
		B: uint8(math.Round(float64(c.B) * f)),
		A: c.A,
	}
}

// over places src on top of dst using non-premultiplied source-over.
func over(src, dst color.NRGBA) color.NRGBA {
	switch {
	case src.A == 255 || dst.A == 0:
		return src
	case src.A == 0:
		return dst
	}
	sa := float64(src.A) / 255
	da := float64(dst.A) / 255 * (1 - sa)
	oa := sa + da
	mix := func(s, d uint8) uint8 {
		return clamp8((float64(s)*sa + float64(d)*da) / oa)
	}
	return color.NRGBA{
		R: mix(src.R, dst.R),
		G: mix(src.G, dst.G),
		B: mix(src.B, dst.B),
		A: clamp8(oa * 255),
	}
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
