package model

import (
	"mc-skin-renderer/internal/mathutil"
)

// Bone is a joint of the player model. Pivot is in model space (rest pose);
// Rotation is applied about it in Z·Y·X order.
type Bone struct {
	Name     string
	Parent   int           // index of the parent bone, -1 for a root
	Pivot    mathutil.Vec3 // model units, y up, feet at 0
	Rotation mathutil.Vec3 // degrees around X, Y, Z
}

// local returns the bone's transform relative to its parent.
func (b Bone) local() mathutil.Mat4 {
	rx := mathutil.Deg2Rad(b.Rotation[0])
	ry := mathutil.Deg2Rad(b.Rotation[1])
	rz := mathutil.Deg2Rad(b.Rotation[2])
	rot := mathutil.Mat3Mul(mathutil.Mat3Mul(mathutil.RotZ(rz), mathutil.RotY(ry)), mathutil.RotX(rx))

	// T(pivot) · R · T(-pivot)
	t := b.Pivot.Sub(rot.MulVec3(b.Pivot))
	return mathutil.FromMat3Translation(rot, t)
}

// WorldMatrices computes the model-space transform of each bone. Parents must
// precede their children; a bone with an out-of-order parent is treated as a
// root.
func WorldMatrices(bones []Bone) []mathutil.Mat4 {
	worlds := make([]mathutil.Mat4, len(bones))
	for i := range worlds {
		worlds[i] = mathutil.Mat4Identity()
	}

	for i, bone := range bones {
		local := bone.local()

		// Chain with parent
		if bone.Parent >= 0 && bone.Parent < i {
			worlds[i] = mathutil.Mat4Mul(worlds[bone.Parent], local)
		} else {
			worlds[i] = local
		}
	}

	return worlds
}
