package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mc-skin-renderer/internal/codec"
	"mc-skin-renderer/internal/layer"
	"mc-skin-renderer/internal/model"
	"mc-skin-renderer/internal/parts"
	"mc-skin-renderer/internal/request"
	"mc-skin-renderer/internal/skin"
)

// mapResolver serves buffers keyed by "<view>/<name>".
type mapResolver map[string]*codec.Buffer

func (m mapResolver) Resolve(_ context.Context, k parts.Key) (*codec.Buffer, error) {
	if buf, ok := m[k.View+"/"+k.Name]; ok {
		return buf, nil
	}
	return nil, fmt.Errorf("%w: %s", parts.ErrPartNotFound, k)
}

// onePixel returns a 1x1 buffer pointing at texel (u, v) with full light.
func onePixel(u, v uint8, depth uint16) *codec.Buffer {
	buf := codec.NewBuffer(1, 1)
	buf.Set(0, 0, codec.Encode(u, v, 255, depth))
	return buf
}

func texture(texels map[[2]int]color.NRGBA) *skin.Texture {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for p, c := range texels {
		img.SetNRGBA(p[0], p[1], c)
	}
	return skin.MustTexture(img)
}

func headOnly() mapResolver {
	return mapResolver{
		"front/Head":       onePixel(8, 8, 10),
		"front/Head Layer": onePixel(40, 8, 5),
		"back/Head":        onePixel(24, 8, 10),
	}
}

func TestRenderHead(t *testing.T) {
	skinTex := texture(map[[2]int]color.NRGBA{
		{8, 8}:  {R: 200, A: 255},
		{40, 8}: {G: 200, A: 255},
		{24, 8}: {B: 200, A: 255},
	})
	r := &Renderer{Parts: headOnly(), Workers: 1}

	img, err := r.Render(context.Background(), request.New(request.Head, request.Steve), Textures{Skin: skinTex})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{G: 200, A: 255}, img.NRGBAAt(0, 0), "hat is nearer")

	req := request.New(request.Head, request.Steve, request.HatLayer)
	img, err = r.Render(context.Background(), req, Textures{Skin: skinTex})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 200, A: 255}, img.NRGBAAt(0, 0))

	req.Back = true
	img, err = r.Render(context.Background(), req, Textures{Skin: skinTex})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{B: 200, A: 255}, img.NRGBAAt(0, 0))
}

func TestLayersOptionalAndSlots(t *testing.T) {
	res := headOnly()
	res["front/Helmet"] = onePixel(1, 1, 1)
	r := &Renderer{Parts: res}
	req := request.New(request.Head, request.Steve)
	req.Armor.Helmet = true

	layers, err := r.Layers(context.Background(), req, Textures{Skin: texture(nil)})
	require.NoError(t, err)
	assert.Len(t, layers, 2, "helmet skipped without an armor texture")

	armor := texture(nil)
	layers, err = r.Layers(context.Background(), req, Textures{Skin: texture(nil), Armor1: armor})
	require.NoError(t, err)
	require.Len(t, layers, 3)
	var helmet layer.Layer
	for _, l := range layers {
		if l.Name == "Helmet" {
			helmet = l
		}
	}
	assert.Same(t, armor, helmet.Texture)
	assert.Equal(t, layer.CutoutMode(0), helmet.Blend)

	// Cape is optional: the texture is there but the map is not.
	full := request.New(request.FullBody, request.Steve, request.BodyLayers, request.HatLayer)
	res["front/Body"] = onePixel(20, 20, 3)
	res["front/Left Arm"] = onePixel(36, 52, 3)
	res["front/Right Arm"] = onePixel(44, 20, 3)
	res["front/Left Leg"] = onePixel(20, 52, 3)
	res["front/Right Leg"] = onePixel(4, 20, 3)
	layers, err = r.Layers(context.Background(), full, Textures{Skin: texture(nil), Cape: texture(nil)})
	require.NoError(t, err)
	assert.Len(t, layers, 6)
}

func TestLayersErrors(t *testing.T) {
	r := &Renderer{Parts: mapResolver{}}
	_, err := r.Layers(context.Background(), request.New(request.Head, request.Steve), Textures{Skin: texture(nil)})
	assert.ErrorIs(t, err, ErrMissingPart)

	_, err = r.Layers(context.Background(), request.New(request.Head, request.Steve), Textures{})
	assert.ErrorIs(t, err, ErrNoSkin)

	bad := request.New(request.Mode(99), request.Steve)
	_, err = r.Layers(context.Background(), bad, Textures{Skin: texture(nil)})
	assert.ErrorIs(t, err, request.ErrInvalid)
}

func TestRenderDimensionMismatch(t *testing.T) {
	res := headOnly()
	res["front/Head Layer"] = codec.NewBuffer(2, 2)
	r := &Renderer{Parts: res}
	_, err := r.Render(context.Background(), request.New(request.Head, request.Steve), Textures{Skin: texture(nil)})
	assert.ErrorIs(t, err, layer.ErrDimensionMismatch)
}

func TestPrepareSkin(t *testing.T) {
	legacy := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	tex, err := PrepareSkin(legacy, request.New(request.FullBody, request.Steve))
	require.NoError(t, err)
	assert.Equal(t, 64, tex.Height())

	req := request.New(request.FullBody, request.Steve)
	req.Features = req.Features.With(request.UnprocessedSkin)
	raw, err := PrepareSkin(legacy, req)
	require.NoError(t, err)
	c, _ := raw.At(8, 8)
	assert.Equal(t, uint8(0), c.A)

	_, err = PrepareSkin(image.NewNRGBA(image.Rect(0, 0, 10, 10)), request.New(request.Head, request.Steve))
	assert.ErrorIs(t, err, skin.ErrTextureWidth)
}

// keyResolver serves buffers by their full key, ears folder included.
type keyResolver map[parts.Key]*codec.Buffer

func (m keyResolver) Resolve(_ context.Context, k parts.Key) (*codec.Buffer, error) {
	if buf, ok := m[k]; ok {
		return buf, nil
	}
	return nil, fmt.Errorf("%w: %s", parts.ErrPartNotFound, k)
}

func TestRenderEars(t *testing.T) {
	p := model.NewPlayer(request.Steve, model.PoseFor(request.Face))
	ears := request.EarsConfig{Mode: request.EarsSides, Anchor: request.AnchorFront}
	require.NoError(t, p.AddEars(ears))

	sc := model.SceneFor(request.Face, false, 64)
	bakePart := func(name string) *codec.Buffer {
		mesh, err := p.Mesh(name, sc)
		require.NoError(t, err)
		buf, err := mesh.Buffer(context.Background())
		require.NoError(t, err)
		return buf
	}
	res := keyResolver{
		{View: "front", Model: "steve", Name: "Head"}:                    bakePart("Head"),
		{View: "front", Model: "steve", Ears: true, Name: "sides-front"}: bakePart("sides-front"),
	}

	face := color.NRGBA{R: 200, A: 255}
	ear := color.NRGBA{G: 180, B: 40, A: 255}
	texels := map[[2]int]color.NRGBA{}
	for y := 8; y < 16; y++ {
		for x := 8; x < 16; x++ {
			texels[[2]int{x, y}] = face
		}
	}
	for y := 0; y < 8; y++ {
		for x := 24; x < 40; x++ {
			texels[[2]int{x, y}] = ear
		}
	}
	skinTex := texture(texels)
	r := &Renderer{Parts: res, Workers: 2}

	req := request.New(request.Face, request.Steve, request.HatLayer)
	req.Features = req.Features.With(request.Ears)
	req.Ears = &ears

	img, err := r.Render(context.Background(), req, Textures{Skin: skinTex})
	require.NoError(t, err)
	assert.Equal(t, face, img.NRGBAAt(32, 32))
	assert.Equal(t, ear, img.NRGBAAt(60, 32), "right ear beside the head")
	assert.Equal(t, ear, img.NRGBAAt(3, 32), "left ear beside the head")

	// without the feature the same pixels stay empty
	req.Features = req.Features.Without(request.Ears)
	img, err = r.Render(context.Background(), req, Textures{Skin: skinTex})
	require.NoError(t, err)
	assert.Equal(t, face, img.NRGBAAt(32, 32))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(60, 32))
}
