package model

import (
	"mc-skin-renderer/internal/mathutil"
)

// Box is a textured cuboid using Minecraft's box UV unwrap: a cross of six
// faces whose top-left corner sits at UV on the 64-cell texel grid.
type Box struct {
	Part    string        // part the box belongs to; several boxes may share one
	Bone    int           // index into Player.Bones
	Min     mathutil.Vec3 // rest-pose corner, model units
	Size    mathutil.Vec3 // width, height, depth in texels
	UV      [2]float64
	Inflate float64 // grows the box on every side without changing its UVs
	Mirror  bool    // flips the texture horizontally, as for legacy left limbs
}

// face is one quad of a box: corners in texture order (top-left, top-right,
// bottom-right, bottom-left) and the texel rectangle they span.
type face struct {
	corners [4]mathutil.Vec3
	normal  mathutil.Vec3
	u, v    float64 // top-left texel
	w, h    float64
}

// faces unwraps the box. The player faces -Z with its right side at -X.
func (b Box) faces() [6]face {
	lo := b.Min.Sub(mathutil.Vec3{b.Inflate, b.Inflate, b.Inflate})
	hi := b.Min.Add(b.Size).Add(mathutil.Vec3{b.Inflate, b.Inflate, b.Inflate})
	x0, y0, z0 := lo[0], lo[1], lo[2]
	x1, y1, z1 := hi[0], hi[1], hi[2]
	w, h, d := b.Size[0], b.Size[1], b.Size[2]
	u, v := b.UV[0], b.UV[1]

	rightU, leftU := u, u+d+w
	if b.Mirror {
		rightU, leftU = leftU, rightU
	}

	fs := [6]face{
		// front
		{[4]vec{{x0, y1, z0}, {x1, y1, z0}, {x1, y0, z0}, {x0, y0, z0}}, vec{0, 0, -1}, u + d, v + d, w, h},
		// back
		{[4]vec{{x1, y1, z1}, {x0, y1, z1}, {x0, y0, z1}, {x1, y0, z1}}, vec{0, 0, 1}, u + 2*d + w, v + d, w, h},
		// right, its right edge meets the front
		{[4]vec{{x0, y1, z1}, {x0, y1, z0}, {x0, y0, z0}, {x0, y0, z1}}, vec{-1, 0, 0}, rightU, v + d, d, h},
		// left, its left edge meets the front
		{[4]vec{{x1, y1, z0}, {x1, y1, z1}, {x1, y0, z1}, {x1, y0, z0}}, vec{1, 0, 0}, leftU, v + d, d, h},
		// top, its bottom edge meets the front
		{[4]vec{{x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0}, {x0, y1, z0}}, vec{0, 1, 0}, u + d, v, w, d},
		// bottom
		{[4]vec{{x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}, {x0, y0, z1}}, vec{0, -1, 0}, u + d + w, v, w, d},
	}

	if b.Mirror {
		// Swapping the corner columns mirrors the texture; the swapped side
		// rectangles above keep each side on its own half of the unwrap.
		for i := range fs {
			c := &fs[i].corners
			c[0], c[1] = c[1], c[0]
			c[2], c[3] = c[3], c[2]
		}
	}
	return fs
}

// texCoords returns the texel coordinates of a face's corners.
func (f face) texCoords() [4][2]float64 {
	return [4][2]float64{
		{f.u, f.v},
		{f.u + f.w, f.v},
		{f.u + f.w, f.v + f.h},
		{f.u, f.v + f.h},
	}
}
