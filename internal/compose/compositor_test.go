package compose

import (
	"context"
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mc-skin-renderer/internal/codec"
	"mc-skin-renderer/internal/layer"
	"mc-skin-renderer/internal/skin"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

// textureWith returns a 64x64 texture with the given texels set.
func textureWith(texels map[[2]int]color.NRGBA) *skin.Texture {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for p, c := range texels {
		img.SetNRGBA(p[0], p[1], c)
	}
	return skin.MustTexture(img)
}

// solid returns a 1x1 opaque layer whose only pixel maps to texel (0,0).
func solid(name string, c color.NRGBA, depth uint16, blend layer.BlendMode) layer.Layer {
	buf := codec.NewBuffer(1, 1)
	buf.Set(0, 0, codec.Encode(0, 0, codec.MaxShading, depth))
	return layer.Layer{
		Name:    name,
		Buffer:  buf,
		Texture: textureWith(map[[2]int]color.NRGBA{{0, 0}: c}),
		Blend:   blend,
		Shading: true,
	}
}

func composePixel(t *testing.T, layers ...layer.Layer) color.NRGBA {
	t.Helper()
	img, err := Compose(context.Background(), layers, Options{})
	require.NoError(t, err)
	return img.NRGBAAt(0, 0)
}

func TestComposeConcreteScenario(t *testing.T) {
	buf := codec.NewBuffer(2, 2)
	buf.Set(0, 0, codec.Encode(10, 20, 255, 0))
	l := layer.Layer{
		Name:    "Body",
		Buffer:  buf,
		Texture: textureWith(map[[2]int]color.NRGBA{{10, 20}: {R: 200, G: 100, B: 50, A: 255}}),
		Blend:   layer.OpaqueMode(),
		Shading: true,
	}

	img, err := Compose(context.Background(), []layer.Layer{l}, Options{})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(1, 1))
}

func TestNearestWins(t *testing.T) {
	far := solid("far", red, 50, layer.OpaqueMode())
	near := solid("near", blue, 2, layer.OpaqueMode())

	assert.Equal(t, blue, composePixel(t, far, near))
	assert.Equal(t, blue, composePixel(t, near, far))
}

func TestCutoutDiscard(t *testing.T) {
	hole := solid("hat", color.NRGBA{G: 255, A: 0}, 0, layer.CutoutMode(0))
	body := solid("body", red, 10, layer.OpaqueMode())
	assert.Equal(t, red, composePixel(t, hole, body))

	faint := solid("hat", color.NRGBA{G: 255, A: 100}, 0, layer.CutoutMode(127))
	assert.Equal(t, red, composePixel(t, faint, body), "alpha at or below threshold is discarded")

	strong := solid("hat", color.NRGBA{G: 255, A: 200}, 0, layer.CutoutMode(127))
	assert.Equal(t, color.NRGBA{G: 255, A: 200}, composePixel(t, strong, body))
}

func TestShadingMultiply(t *testing.T) {
	l := solid("body", color.NRGBA{R: 200, G: 100, B: 50, A: 180}, 0, layer.OpaqueMode())

	l.Buffer.Set(0, 0, codec.Encode(0, 0, 0, 0))
	assert.Equal(t, color.NRGBA{A: 180}, composePixel(t, l))

	l.Buffer.Set(0, 0, codec.Encode(0, 0, 128, 0))
	assert.Equal(t, color.NRGBA{R: 100, G: 50, B: 25, A: 180}, composePixel(t, l))

	l.Shading = false
	l.Buffer.Set(0, 0, codec.Encode(0, 0, 0, 0))
	assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 180}, composePixel(t, l))
}

func TestEmptyPixel(t *testing.T) {
	a := solid("a", red, 0, layer.OpaqueMode())
	a.Buffer.Set(0, 0, codec.Absent)
	b := solid("b", color.NRGBA{R: 255}, 0, layer.OpaqueMode())

	assert.Equal(t, color.NRGBA{}, composePixel(t, a, b))
}

func TestOutOfTextureIsAbsent(t *testing.T) {
	legacy := skin.MustTexture(image.NewNRGBA(image.Rect(0, 0, 64, 32)))
	buf := codec.NewBuffer(1, 1)
	buf.Set(0, 0, codec.Encode(5, 40, 255, 0))
	l := layer.Layer{Name: "x", Buffer: buf, Texture: legacy, Blend: layer.TranslucentMode()}

	assert.Equal(t, color.NRGBA{}, composePixel(t, l))
}

func TestTranslucentBlend(t *testing.T) {
	body := solid("body", red, 5, layer.OpaqueMode())
	glass := solid("glass", color.NRGBA{B: 255, A: 128}, 1, layer.TranslucentMode())
	behind := solid("behind", color.NRGBA{G: 255, A: 128}, 9, layer.TranslucentMode())

	want := color.NRGBA{R: 127, B: 128, A: 255}
	assert.Equal(t, want, composePixel(t, body, glass, behind))
	assert.Equal(t, want, composePixel(t, behind, glass, body))

	// Translucent with nothing behind keeps its own alpha.
	assert.Equal(t, color.NRGBA{B: 255, A: 128}, composePixel(t, glass))

	// Two translucent layers over nothing.
	front := solid("front", color.NRGBA{R: 255, A: 128}, 0, layer.TranslucentMode())
	got := composePixel(t, glass, front)
	assert.Equal(t, uint8(192), got.A)
	assert.InDelta(t, 170, int(got.R), 1)
	assert.InDelta(t, 85, int(got.B), 1)
}

func TestEqualDepthTieBreak(t *testing.T) {
	a := solid("Alpha", red, 3, layer.OpaqueMode())
	b := solid("Beta", blue, 3, layer.OpaqueMode())
	assert.Equal(t, red, composePixel(t, a, b))
	assert.Equal(t, red, composePixel(t, b, a))

	// Same name: the opaque sample sorts first and hides the translucent one.
	c := solid("Same", red, 3, layer.OpaqueMode())
	d := solid("Same", color.NRGBA{B: 255, A: 128}, 3, layer.TranslucentMode())
	assert.Equal(t, red, composePixel(t, c, d))
	assert.Equal(t, red, composePixel(t, d, c))
}

func randomLayer(rng *rand.Rand, name string, w, h int, blend layer.BlendMode) layer.Layer {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.IntN(256))
	}
	buf := codec.NewBuffer(w, h)
	for i := range buf.Words {
		if rng.IntN(4) == 0 {
			continue
		}
		buf.Words[i] = codec.Encode(uint8(rng.IntN(64)), uint8(rng.IntN(64)),
			uint8(rng.IntN(256)), uint16(rng.IntN(4)))
	}
	return layer.Layer{
		Name:    name,
		Buffer:  buf,
		Texture: skin.MustTexture(img),
		Blend:   blend,
		Shading: rng.IntN(2) == 0,
	}
}

func TestOrderIndependence(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	layers := []layer.Layer{
		randomLayer(rng, "Body", 8, 8, layer.OpaqueMode()),
		randomLayer(rng, "Body Layer", 8, 8, layer.TranslucentMode()),
		randomLayer(rng, "Helmet", 8, 8, layer.CutoutMode(64)),
		randomLayer(rng, "Body Layer", 8, 8, layer.TranslucentMode()),
	}

	ref, err := Compose(context.Background(), layers, Options{Workers: 1})
	require.NoError(t, err)

	perms := [][]int{
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
		{0, 2, 1, 3},
	}
	for _, p := range perms {
		shuffled := make([]layer.Layer, len(p))
		for i, j := range p {
			shuffled[i] = layers[j]
		}
		img, err := Compose(context.Background(), shuffled, Options{Workers: 3})
		require.NoError(t, err)
		assert.Equal(t, ref.Pix, img.Pix, "permutation %v", p)
	}
}

func TestWorkersAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	layers := []layer.Layer{
		randomLayer(rng, "Head", 17, 13, layer.OpaqueMode()),
		randomLayer(rng, "Head Layer", 17, 13, layer.TranslucentMode()),
	}
	one, err := Compose(context.Background(), layers, Options{Workers: 1})
	require.NoError(t, err)
	many, err := Compose(context.Background(), layers, Options{Workers: 64})
	require.NoError(t, err)
	assert.Equal(t, one.Pix, many.Pix)
}

func TestBackground(t *testing.T) {
	l := solid("body", red, 0, layer.OpaqueMode())
	l.Buffer = codec.NewBuffer(2, 1)
	l.Buffer.Set(0, 0, codec.Encode(0, 0, 255, 0))

	bg := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	bg.SetNRGBA(0, 0, blue)
	bg.SetNRGBA(1, 0, blue)

	img, err := Compose(context.Background(), []layer.Layer{l}, Options{Background: bg})
	require.NoError(t, err)
	assert.Equal(t, red, img.NRGBAAt(0, 0))
	assert.Equal(t, blue, img.NRGBAAt(1, 0))

	_, err = Compose(context.Background(), []layer.Layer{l}, Options{Background: image.NewNRGBA(image.Rect(0, 0, 3, 3))})
	assert.ErrorIs(t, err, layer.ErrDimensionMismatch)
}

func TestComposeErrors(t *testing.T) {
	_, err := Compose(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, layer.ErrNoLayers)

	a := solid("a", red, 0, layer.OpaqueMode())
	b := solid("b", red, 0, layer.OpaqueMode())
	b.Buffer = codec.NewBuffer(2, 1)
	_, err = Compose(context.Background(), []layer.Layer{a, b}, Options{})
	assert.ErrorIs(t, err, layer.ErrDimensionMismatch)

	flat := solid("flat", red, 0, layer.OpaqueMode())
	flat.Buffer = codec.NewBuffer(4, 0)
	assert.NotPanics(t, func() {
		_, err = Compose(context.Background(), []layer.Layer{flat}, Options{})
	})
	assert.ErrorIs(t, err, layer.ErrDimensionMismatch)

	neg := solid("neg", red, 0, layer.OpaqueMode())
	neg.Buffer = &codec.Buffer{Width: -2, Height: -3, Words: make([]codec.Word, 6)}
	img, err := Compose(context.Background(), []layer.Layer{neg}, Options{})
	assert.ErrorIs(t, err, layer.ErrDimensionMismatch)
	assert.Nil(t, img)
}

func TestComposeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compose(ctx, []layer.Layer{solid("a", red, 0, layer.OpaqueMode())}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveAt(t *testing.T) {
	l := solid("a", red, 0, layer.OpaqueMode())
	c, err := ResolveAt([]layer.Layer{l}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, red, c)

	c, err = ResolveAt([]layer.Layer{l}, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{}, c)

	_, err = ResolveAt(nil, 0, 0)
	assert.ErrorIs(t, err, layer.ErrNoLayers)
}
