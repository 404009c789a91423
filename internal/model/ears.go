package model

import (
	"fmt"

	"mc-skin-renderer/internal/request"
)

// panelTex places one side of a panel on the skin. A turned side is stored
// rotated a quarter turn clockwise, so its stored rectangle is h wide and w
// tall.
type panelTex struct {
	u, v   float64
	turned bool
}

func (t panelTex) coords(w, h float64) [4][2]float64 {
	if t.turned {
		return [4][2]float64{{t.u + h, t.v}, {t.u + h, t.v + w}, {t.u, t.v + w}, {t.u, t.v}}
	}
	return [4][2]float64{{t.u, t.v}, {t.u + w, t.v}, {t.u + w, t.v + h}, {t.u, t.v + h}}
}

// panel is a flat, two-sided quad. Ears are made of them. corners run
// top-left, top-right, bottom-right, bottom-left as seen from the front
// side, which faces along normal.
type panel struct {
	part        string
	bone        int
	corners     [4]vec
	normal      vec
	w, h        float64 // texels
	front, back panelTex
}

// backOffset separates the two sides of a panel in depth.
const backOffset = 0.01

// quad is one textured, posed-space quad ready for meshing.
type quad struct {
	corners [4]vec
	normal  vec
	tex     [4][2]float64
}

func (p panel) sides() [2]quad {
	c := p.corners
	off := p.normal.Scale(-backOffset)
	return [2]quad{
		{corners: c, normal: p.normal, tex: p.front.coords(p.w, p.h)},
		// seen from behind the left and right columns swap
		{
			corners: [4]vec{c[1].Add(off), c[0].Add(off), c[3].Add(off), c[2].Add(off)},
			normal:  p.normal.Neg(),
			tex:     p.back.coords(p.w, p.h),
		},
	}
}

// Ear textures of the ears skin layout.
var (
	earLeft      = [2]panelTex{{u: 32, v: 0}, {u: 56, v: 36, turned: true}}
	earRight     = [2]panelTex{{u: 24, v: 0}, {u: 56, v: 28, turned: true}}
	earTop       = [2]panelTex{{u: 24, v: 0}, {u: 56, v: 28, turned: true}}
	earAroundL   = [2]panelTex{{u: 36, v: 32, turned: true}, {u: 12, v: 32, turned: true}}
	earAroundR   = [2]panelTex{{u: 36, v: 16, turned: true}, {u: 12, v: 16, turned: true}}
	earAnchorOff = map[request.EarAnchor]float64{request.AnchorFront: 0, request.AnchorCenter: 4, request.AnchorBack: 8}
)

// facingFront is an upright panel in the plane z facing the camera of a
// front view.
func facingFront(part string, x0, x1, y0, y1, z float64, tex [2]panelTex) panel {
	return panel{
		part:    part,
		bone:    BoneHead,
		corners: [4]vec{{x0, y1, z}, {x1, y1, z}, {x1, y0, z}, {x0, y0, z}},
		normal:  vec{0, 0, -1},
		w:       x1 - x0,
		h:       y1 - y0,
		front:   tex[0],
		back:    tex[1],
	}
}

// facingSide is an upright panel in the plane x, its front side turned away
// from the head.
func facingSide(part string, x, z0, z1, y0, y1 float64, tex [2]panelTex) panel {
	p := panel{part: part, bone: BoneHead, w: z1 - z0, h: y1 - y0, front: tex[0], back: tex[1]}
	if x < 0 {
		p.corners = [4]vec{{x, y1, z1}, {x, y1, z0}, {x, y0, z0}, {x, y0, z1}}
		p.normal = vec{-1, 0, 0}
	} else {
		p.corners = [4]vec{{x, y1, z0}, {x, y1, z1}, {x, y0, z1}, {x, y0, z0}}
		p.normal = vec{1, 0, 0}
	}
	return p
}

// earPanels builds the geometry of one ears configuration around the head
// box (x and z in [-4, 4], y in [24, 32]).
func earPanels(e request.EarsConfig) ([]panel, error) {
	mode, anchor := e.Mode, e.Anchor
	if mode == request.EarsBehind {
		mode, anchor = request.EarsOut, request.AnchorBack
	}
	off, ok := earAnchorOff[anchor]
	if !ok {
		return nil, fmt.Errorf("model: ear anchor %s", anchor)
	}
	z := -4 + off
	key := request.EarKey(mode, anchor)

	switch mode {
	case request.EarsNone:
		return nil, nil
	case request.EarsAbove:
		return []panel{facingFront(key, -8, 8, 32, 40, z, earTop)}, nil
	case request.EarsAround:
		return []panel{
			facingFront(request.EarKey(request.EarsAbove, anchor), -8, 8, 32, 40, z, earTop),
			facingFront(key, -8, -4, 24, 32, z, earAroundL),
			facingFront(key, 4, 8, 24, 32, z, earAroundR),
		}, nil
	case request.EarsSides:
		return []panel{
			facingFront(key, -12, -4, 24, 32, z, earLeft),
			facingFront(key, 4, 12, 24, 32, z, earRight),
		}, nil
	case request.EarsOut:
		z0, y0 := -12.0, 24.0
		switch anchor {
		case request.AnchorCenter:
			z0, y0 = -4, 32
		case request.AnchorBack:
			z0 = 4
		}
		return []panel{
			facingSide(key, -4, z0, z0+8, y0, y0+8, earLeft),
			facingSide(key, 4, z0, z0+8, y0, y0+8, earRight),
		}, nil
	}
	return nil, fmt.Errorf("model: no geometry for ear mode %s", e.Mode)
}

// BakedEars lists every ears configuration the model has geometry for.
// Behind is the same geometry as out at the back anchor.
func BakedEars() []request.EarsConfig {
	var out []request.EarsConfig
	for _, m := range []request.EarMode{request.EarsAbove, request.EarsAround, request.EarsSides, request.EarsOut} {
		for _, a := range []request.EarAnchor{request.AnchorCenter, request.AnchorFront, request.AnchorBack} {
			out = append(out, request.EarsConfig{Mode: m, Anchor: a})
		}
	}
	return out
}

// AddEars attaches the ears of e to the head. Parts the player already has
// are left as they are, so around after above adds only the side pieces.
func (p *Player) AddEars(e request.EarsConfig) error {
	ps, err := earPanels(e)
	if err != nil {
		return err
	}
	had := make(map[string]bool)
	for _, name := range p.Parts() {
		had[name] = true
	}
	for _, ep := range ps {
		if !had[ep.part] {
			p.panels = append(p.panels, ep)
		}
	}
	return nil
}

// IsEars reports whether part is ears geometry.
func (p *Player) IsEars(part string) bool {
	for _, ep := range p.panels {
		if ep.part == part {
			return true
		}
	}
	return false
}
