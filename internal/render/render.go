// Package render assembles the layers for one request and composites them.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"

	"mc-skin-renderer/internal/compose"
	"mc-skin-renderer/internal/layer"
	"mc-skin-renderer/internal/logging"
	"mc-skin-renderer/internal/parts"
	"mc-skin-renderer/internal/request"
	"mc-skin-renderer/internal/skin"
)

var (
	ErrMissingPart = errors.New("render: required part missing")
	ErrNoSkin      = errors.New("render: no skin texture")
)

// Textures are the images a request samples from. Only Skin is required;
// parts whose texture is nil are left out.
type Textures struct {
	Skin   *skin.Texture
	Cape   *skin.Texture
	Armor1 *skin.Texture
	Armor2 *skin.Texture
}

func (t Textures) slot(s request.TextureSlot) *skin.Texture {
	switch s {
	case request.SkinSlot:
		return t.Skin
	case request.CapeSlot:
		return t.Cape
	case request.Armor1Slot:
		return t.Armor1
	case request.Armor2Slot:
		return t.Armor2
	}
	return nil
}

// Renderer is safe for concurrent use when Parts is.
type Renderer struct {
	Parts   parts.Resolver
	Workers int // compositor row bands per render, 0 = NumCPU
	// Background is placed under every render when set.
	Background *image.NRGBA
}

// Layers resolves the parts of req into compositor layers.
func (r *Renderer) Layers(ctx context.Context, req request.Request, tex Textures) ([]layer.Layer, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if tex.Skin == nil {
		return nil, ErrNoSkin
	}

	log := logging.L()
	var layers []layer.Layer
	for _, spec := range req.Parts() {
		t := tex.slot(spec.Slot)
		if t == nil {
			log.Debug("part skipped, no texture", "part", spec.Name, "slot", spec.Slot.String())
			continue
		}

		key := parts.Key{View: req.View(), Model: req.Model.Dir(), Ears: spec.Ears, Name: spec.Name}
		buf, err := r.Parts.Resolve(ctx, key)
		switch {
		case errors.Is(err, parts.ErrPartNotFound) && spec.Optional:
			log.Debug("optional part missing", "part", key.String())
			continue
		case errors.Is(err, parts.ErrPartNotFound):
			return nil, fmt.Errorf("%w: %s", ErrMissingPart, key)
		case err != nil:
			return nil, fmt.Errorf("render: %w", err)
		}

		l, err := layer.FromSource(ctx, spec.Name, layer.Static{Buf: buf}, t, spec.Blend, spec.Shading)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		layers = append(layers, l)
	}
	return layers, nil
}

// Render resolves and composites one request.
func (r *Renderer) Render(ctx context.Context, req request.Request, tex Textures) (*image.NRGBA, error) {
	layers, err := r.Layers(ctx, req, tex)
	if err != nil {
		return nil, err
	}
	img, err := compose.Compose(ctx, layers, compose.Options{Workers: r.Workers, Background: r.Background})
	if err != nil {
		return nil, fmt.Errorf("render: %s: %w", req.Mode, err)
	}
	return img, nil
}

// PrepareSkin upgrades and cleans a raw skin image unless the request asks
// for the skin as-is.
func PrepareSkin(img *image.NRGBA, req request.Request) (*skin.Texture, error) {
	tex, err := skin.Process(img, req.Features.Has(request.UnprocessedSkin))
	if err != nil {
		return nil, fmt.Errorf("render: skin: %w", err)
	}
	return tex, nil
}
