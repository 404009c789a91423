package raster

import (
	"math"

	"mc-skin-renderer/internal/codec"
	"mc-skin-renderer/internal/mathutil"
	"mc-skin-renderer/internal/shading"
)

// Vertex is a projected vertex. X, Y are screen pixels, Depth is the linear
// distance from the camera and U, V are texel coordinates on the 64-cell
// skin grid. Normal is in world space, where the sun lives.
type Vertex struct {
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Depth  float64       `json:"depth"`
	U      float64       `json:"u"`
	V      float64       `json:"v"`
	Normal mathutil.Vec3 `json:"normal"`
}

// DepthRange maps linear depth onto the codec's depth field.
type DepthRange struct {
	Near float64 `json:"near"`
	Far  float64 `json:"far"`
}

// texelIndex floors t into [lo, hi). A face spanning texels 8..15 carries
// U from 8 to 16, so its far edge must not spill into texel 16.
func texelIndex(t, lo, hi float64) (uint8, bool) {
	if t >= hi {
		t = hi - 1e-6
	}
	if t < lo {
		t = lo
	}
	i := math.Floor(t)
	if i < 0 || i > codec.MaxUV {
		return 0, false
	}
	return uint8(i), true
}

// RasterizeTriangle scan-converts one triangle into codewords with a
// nearest-depth test. Pixels are sampled at their centres. Degenerate
// triangles and texels off the grid are skipped.
//
// This is the hot path; the inner loop does not allocate.
func RasterizeTriangle(fb *FrameBuffer, a, b, c Vertex, sun shading.Sun, dr DepthRange) {
	x0, y0 := a.X, a.Y
	x1, y1 := b.X, b.Y
	x2, y2 := c.X, c.Y

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX > fb.Width-1 {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY > fb.Height-1 {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	uLo, uHi := math.Min(math.Min(a.U, b.U), c.U), math.Max(math.Max(a.U, b.U), c.U)
	vLo, vHi := math.Min(math.Min(a.V, b.V), c.V), math.Max(math.Max(a.V, b.V), c.V)
	if uHi-uLo < 1 {
		uHi = uLo + 1
	}
	if vHi-vLo < 1 {
		vHi = vLo + 1
	}

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -1e-9 || w1 < -1e-9 || w2 < -1e-9 {
				continue
			}

			z := w0*a.Depth + w1*b.Depth + w2*c.Depth
			idx := rowOff + sx
			if z >= fb.ZBuf[idx] {
				continue
			}

			u, okU := texelIndex(w0*a.U+w1*b.U+w2*c.U, uLo, uHi)
			v, okV := texelIndex(w0*a.V+w1*b.V+w2*c.V, vLo, vHi)
			if !okU || !okV {
				continue
			}

			n := mathutil.Barycentric(a.Normal, b.Normal, c.Normal, w0, w1, w2).Normalize()
			light := shading.Quantize(sun.Shade(n))

			fb.ZBuf[idx] = z
			fb.Words[idx] = codec.Encode(u, v, light, codec.QuantizeDepth(z, dr.Near, dr.Far))
		}
	}
}
