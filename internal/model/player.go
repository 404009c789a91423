// Package model builds the Minecraft player model out of textured boxes hung
// on a small bone hierarchy, and turns each part into a raster mesh for
// baking.
package model

import (
	"fmt"
	"slices"

	"mc-skin-renderer/internal/mathutil"
	"mc-skin-renderer/internal/raster"
	"mc-skin-renderer/internal/request"
	"mc-skin-renderer/internal/shading"
)

// Pose bends the limbs away from the rest pose. Angles are in degrees.
type Pose struct {
	ArmSpread float64 // arms swing outwards around Z
	LegSpread float64 // legs swing forward/back around X, in opposite directions
	CapeTilt  float64 // cape bottom swings backwards
}

// Bone indices of the player skeleton.
const (
	BoneBody = iota
	BoneHead
	BoneRightArm
	BoneLeftArm
	BoneRightLeg
	BoneLeftLeg
	BoneCape
)

// Player is a posed player model.
type Player struct {
	Bones []Bone
	Boxes []Box

	panels []panel
}

// overlay inflation of the second skin layer
const (
	hatInflate   = 0.5
	layerInflate = 0.25
)

type vec = mathutil.Vec3

// NewPlayer builds the player model for the given arm width.
func NewPlayer(m request.Model, pose Pose) *Player {
	p := &Player{
		Bones: []Bone{
			BoneBody:     {Name: "body", Parent: -1, Pivot: vec{0, 24, 0}},
			BoneHead:     {Name: "head", Parent: BoneBody, Pivot: vec{0, 24, 0}},
			BoneRightArm: {Name: "right_arm", Parent: BoneBody, Pivot: vec{-5, 22, 0}, Rotation: vec{0, 0, -pose.ArmSpread}},
			BoneLeftArm:  {Name: "left_arm", Parent: BoneBody, Pivot: vec{5, 22, 0}, Rotation: vec{0, 0, pose.ArmSpread}},
			BoneRightLeg: {Name: "right_leg", Parent: BoneBody, Pivot: vec{-2, 12, 0}, Rotation: vec{pose.LegSpread, 0, 0}},
			BoneLeftLeg:  {Name: "left_leg", Parent: BoneBody, Pivot: vec{2, 12, 0}, Rotation: vec{-pose.LegSpread, 0, 0}},
			// the cape box is built facing forward and turned around
			BoneCape: {Name: "cape", Parent: BoneBody, Pivot: vec{0, 24, 2.5}, Rotation: vec{pose.CapeTilt, 180, 0}},
		},
	}

	armW, rightArmX := 4.0, -8.0
	if m == request.Alex {
		armW, rightArmX = 3, -7
	}

	limb := func(name string, bone int, lo, size vec, base, overlay [2]float64) {
		p.Boxes = append(p.Boxes,
			Box{Part: name, Bone: bone, Min: lo, Size: size, UV: base},
			Box{Part: name + " Layer", Bone: bone, Min: lo, Size: size, UV: overlay, Inflate: layerInflate},
		)
	}

	p.Boxes = append(p.Boxes,
		Box{Part: "Head", Bone: BoneHead, Min: vec{-4, 24, -4}, Size: vec{8, 8, 8}, UV: [2]float64{0, 0}},
		Box{Part: "Head Layer", Bone: BoneHead, Min: vec{-4, 24, -4}, Size: vec{8, 8, 8}, UV: [2]float64{32, 0}, Inflate: hatInflate},
	)
	limb("Body", BoneBody, vec{-4, 12, -2}, vec{8, 12, 4}, [2]float64{16, 16}, [2]float64{16, 32})
	limb("Right Arm", BoneRightArm, vec{rightArmX, 12, -2}, vec{armW, 12, 4}, [2]float64{40, 16}, [2]float64{40, 32})
	limb("Left Arm", BoneLeftArm, vec{4, 12, -2}, vec{armW, 12, 4}, [2]float64{32, 48}, [2]float64{48, 48})
	limb("Right Leg", BoneRightLeg, vec{-4, 0, -2}, vec{4, 12, 4}, [2]float64{0, 16}, [2]float64{0, 32})
	limb("Left Leg", BoneLeftLeg, vec{0, 0, -2}, vec{4, 12, 4}, [2]float64{16, 48}, [2]float64{0, 48})

	// Cape texture: outer face at (1, 1), 10x16x1.
	p.Boxes = append(p.Boxes, Box{Part: "Cape", Bone: BoneCape, Min: vec{-5, 8, 2}, Size: vec{10, 16, 1}, UV: [2]float64{0, 0}})

	// Armor samples the 64x32 armor textures, which only carry right limbs.
	armor := func(name string, bone int, lo, size vec, uv [2]float64, inflate float64, mirror bool) {
		p.Boxes = append(p.Boxes, Box{Part: name, Bone: bone, Min: lo, Size: size, UV: uv, Inflate: inflate, Mirror: mirror})
	}
	armor("Helmet", BoneHead, vec{-4, 24, -4}, vec{8, 8, 8}, [2]float64{0, 0}, 1, false)
	armor("Chestplate", BoneBody, vec{-4, 12, -2}, vec{8, 12, 4}, [2]float64{16, 16}, 1, false)
	armor("Chestplate", BoneRightArm, vec{rightArmX, 12, -2}, vec{armW, 12, 4}, [2]float64{40, 16}, 1, false)
	armor("Chestplate", BoneLeftArm, vec{4, 12, -2}, vec{armW, 12, 4}, [2]float64{40, 16}, 1, true)
	armor("Leggings", BoneBody, vec{-4, 12, -2}, vec{8, 12, 4}, [2]float64{16, 16}, 0.5, false)
	armor("Leggings", BoneRightLeg, vec{-4, 0, -2}, vec{4, 12, 4}, [2]float64{0, 16}, 0.5, false)
	armor("Leggings", BoneLeftLeg, vec{0, 0, -2}, vec{4, 12, 4}, [2]float64{0, 16}, 0.5, true)
	armor("Boots", BoneRightLeg, vec{-4, 0, -2}, vec{4, 12, 4}, [2]float64{0, 16}, 1, false)
	armor("Boots", BoneLeftLeg, vec{0, 0, -2}, vec{4, 12, 4}, [2]float64{0, 16}, 1, true)

	return p
}

// Parts lists the distinct part names in model order.
func (p *Player) Parts() []string {
	var names []string
	for _, b := range p.Boxes {
		if !slices.Contains(names, b.Part) {
			names = append(names, b.Part)
		}
	}
	for _, ep := range p.panels {
		if !slices.Contains(names, ep.part) {
			names = append(names, ep.part)
		}
	}
	return names
}

// Scene is the shared camera setup every part of one bake is drawn with.
// All parts must share it for their depths to be comparable.
type Scene struct {
	Width, Height int
	Camera        raster.Camera
	Depth         raster.DepthRange
	Sun           shading.Sun
}

// Mesh returns the posed geometry of one part as a world-space mesh.
func (p *Player) Mesh(part string, sc Scene) (*raster.Mesh, error) {
	worlds := WorldMatrices(p.Bones)
	cam := sc.Camera
	mesh := &raster.Mesh{
		Name:   part,
		Width:  sc.Width,
		Height: sc.Height,
		Depth:  sc.Depth,
		Sun:    sc.Sun,
		Camera: &cam,
	}

	add := func(bone int, q quad) error {
		if bone < 0 || bone >= len(worlds) {
			return fmt.Errorf("model: part %q: bone %d out of range", part, bone)
		}
		world := worlds[bone]
		n := world.MulDir(q.normal)
		var vs [4]raster.Vertex
		for i, c := range q.corners {
			w := world.MulPoint(c)
			vs[i] = raster.Vertex{X: w[0], Y: w[1], Depth: w[2], U: q.tex[i][0], V: q.tex[i][1], Normal: n}
		}
		mesh.AddQuad(vs[0], vs[1], vs[2], vs[3])
		return nil
	}

	for _, b := range p.Boxes {
		if b.Part != part {
			continue
		}
		for _, f := range b.faces() {
			if err := add(b.Bone, quad{corners: f.corners, normal: f.normal, tex: f.texCoords()}); err != nil {
				return nil, err
			}
		}
	}
	for _, ep := range p.panels {
		if ep.part != part {
			continue
		}
		for _, q := range ep.sides() {
			if err := add(ep.bone, q); err != nil {
				return nil, err
			}
		}
	}

	if len(mesh.Triangles) == 0 {
		return nil, fmt.Errorf("model: unknown part %q", part)
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}
