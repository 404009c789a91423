// Package shading computes the per-pixel light scalar that rasterizers bake
// into codewords. The compositor never re-lights; it only multiplies the
// stored scalar back into the sampled color.
package shading

import (
	"math"

	"mc-skin-renderer/internal/mathutil"
)

// MaxLight caps the light scalar; a fully lit surface keeps its texel color.
const MaxLight = 1.0

// Sun is a directional light.
type Sun struct {
	Direction mathutil.Vec3 `json:"direction" yaml:"direction"`
	Intensity float64       `json:"intensity" yaml:"intensity"`
	Ambient   float64       `json:"ambient" yaml:"ambient"`
}

// FullBody is the light used for the 3-D body renders.
func FullBody() Sun {
	return Sun{Direction: mathutil.Vec3{0, -1, 5}, Intensity: 1.0, Ambient: 0.7}
}

// Flat leaves every surface at full brightness. Used when shading is off.
func Flat() Sun {
	return Sun{Ambient: MaxLight}
}

// Shade returns clamp(Intensity * dot(normal, -dir), Ambient, MaxLight).
// The direction is normalized here; normal is expected to be unit length.
func (s Sun) Shade(normal mathutil.Vec3) float64 {
	dir := s.Direction.Normalize()
	dot := normal.Dot(dir.Neg())
	return clamp(s.Intensity*dot, s.Ambient, MaxLight)
}

// Shade is a convenience for Sun{dir, intensity, ambient}.Shade(normal).
func Shade(normal, dir mathutil.Vec3, intensity, ambient float64) float64 {
	return Sun{Direction: dir, Intensity: intensity, Ambient: ambient}.Shade(normal)
}

// Quantize maps a light scalar in [0, 1] to the codec's 8-bit shading field.
func Quantize(f float64) uint8 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(math.Round(f * 255))
}

// Dequantize maps the 8-bit shading field back to [0, 1].
func Dequantize(q uint8) float64 {
	return float64(q) / 255
}

// clamp applies the lower bound first so that an ambient above max still
// yields max, matching the shader clamp semantics.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}
