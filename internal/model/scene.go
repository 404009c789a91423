package model

import (
	"math"

	"mc-skin-renderer/internal/raster"
	"mc-skin-renderer/internal/request"
)

// framing is the part of the model a mode shows.
type framing struct {
	lookAt vec
	height float64 // model units visible vertically
	aspect float64 // width / height
}

func framingFor(m request.Mode) framing {
	switch {
	case m.IsHead():
		return framing{lookAt: vec{0, 28, 0}, height: 13, aspect: 1}
	case m.IsBust():
		return framing{lookAt: vec{0, 21, 0}, height: 24, aspect: 1}
	default:
		return framing{lookAt: vec{0, 16, 0}, height: 38, aspect: 0.5}
	}
}

// Height returns the canvas height a mode uses for the given width.
func Height(m request.Mode, width int) int {
	return max(int(math.Round(float64(width)/framingFor(m).aspect)), 1)
}

const (
	orthoDistance = 64
	depthMargin   = 40 // model units in front of and behind the look-at point
	perspFOV      = 25
)

// PoseFor returns the limb pose used by a mode.
func PoseFor(m request.Mode) Pose {
	switch m {
	case request.FullBody, request.FullBodyIso:
		return Pose{ArmSpread: 8, CapeTilt: 10}
	default:
		return Pose{CapeTilt: 5}
	}
}

// SceneFor returns the camera, depth range and light for a mode. Back views
// orbit the camera half a turn.
func SceneFor(m request.Mode, back bool, width int) Scene {
	fr := framingFor(m)
	cam := raster.Camera{LookAt: fr.lookAt}

	switch m {
	case request.FullBody, request.BodyBust, request.Head:
		cam.Yaw, cam.Pitch = 20, 10
		cam.FOV = perspFOV
		// fit the framed height, with a little slack for the yaw
		cam.Distance = 1.15 * fr.height / 2 / math.Tan(perspFOV*math.Pi/360)
	case request.FullBodyIso, request.HeadIso:
		cam.Yaw, cam.Pitch = 45, 35.264
		cam.OrthoHeight = fr.height * 1.2
		cam.Distance = orthoDistance
	default:
		cam.OrthoHeight = fr.height
		cam.Distance = orthoDistance
	}
	if back {
		cam.Yaw += 180
	}

	sun := request.Request{Mode: m, Features: request.Shading}.Sun()
	return Scene{
		Width:  width,
		Height: Height(m, width),
		Camera: cam,
		Depth:  raster.DepthRange{Near: max(cam.Distance-depthMargin, 0), Far: cam.Distance + depthMargin},
		Sun:    sun,
	}
}
