package raster

import (
	"math"

	"mc-skin-renderer/internal/mathutil"
)

// Camera is an orbital camera around LookAt. With zero yaw and pitch it sits
// Distance units towards -Z and looks along +Z.
type Camera struct {
	LookAt   mathutil.Vec3 `json:"look_at"`
	Distance float64       `json:"distance"`
	Yaw      float64       `json:"yaw"`   // degrees
	Pitch    float64       `json:"pitch"` // degrees
	// FOV is the vertical field of view in degrees. Zero selects an
	// orthographic projection showing OrthoHeight world units vertically.
	FOV         float64 `json:"fov"`
	OrthoHeight float64 `json:"ortho_height"`
}

// View returns the world-to-camera transform. Camera-space Z is the linear
// distance in front of the camera.
func (c Camera) View() mathutil.Mat4 {
	rot := mathutil.Mat3Mul(mathutil.RotX(mathutil.Deg2Rad(c.Pitch)), mathutil.RotY(mathutil.Deg2Rad(c.Yaw)))
	t := rot.MulVec3(c.LookAt.Neg()).Add(mathutil.Vec3{0, 0, c.Distance})
	return mathutil.FromMat3Translation(rot, t)
}

// Project maps a world point onto a w×h screen. ok is false for points at
// or behind the camera plane in perspective mode.
func (c Camera) Project(view mathutil.Mat4, p mathutil.Vec3, w, h int) (x, y, depth float64, ok bool) {
	q := view.MulPoint(p)
	aspect := float64(w) / float64(h)

	var nx, ny float64
	if c.FOV > 0 {
		if q[2] <= 1e-6 {
			return 0, 0, 0, false
		}
		f := 1 / math.Tan(mathutil.Deg2Rad(c.FOV)/2)
		nx = f * q[0] / q[2] / aspect
		ny = f * q[1] / q[2]
	} else {
		half := c.OrthoHeight / 2
		if half <= 0 {
			return 0, 0, 0, false
		}
		nx = q[0] / half / aspect
		ny = q[1] / half
	}

	x = (nx + 1) / 2 * float64(w)
	y = (1 - ny) / 2 * float64(h)
	return x, y, q[2], true
}
