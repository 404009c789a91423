package skin

import (
	"image"
	"image/draw"
)

// Regions are in 64x64 texel units and scaled for HD skins.
type rect struct{ x0, y0, x1, y1 int }

// copyOp mirrors a limb face from the legacy layout into the left-limb area.
type copyOp struct{ x, y, dx, dy, w, h int }

var legacyCopies = []copyOp{
	// right leg -> left leg
	{4, 16, 16, 32, 4, 4},
	{8, 16, 16, 32, 4, 4},
	{0, 20, 24, 32, 4, 12},
	{4, 20, 16, 32, 4, 12},
	{8, 20, 8, 32, 4, 12},
	{12, 20, 16, 32, 4, 12},
	// right arm -> left arm
	{44, 16, -8, 32, 4, 4},
	{48, 16, -8, 32, 4, 4},
	{40, 20, 0, 32, 4, 12},
	{44, 20, -8, 32, 4, 12},
	{48, 20, -16, 32, 4, 12},
	{52, 20, -8, 32, 4, 12},
}

var (
	// base (non-overlay) regions that must be fully opaque
	opaqueRegions = []rect{{0, 0, 32, 16}, {0, 16, 64, 32}, {16, 48, 48, 64}}
	hatRegion     = rect{32, 0, 64, 32}
)

// IsLegacy reports whether img uses the pre-1.8 64x32 layout.
func IsLegacy(img *image.NRGBA) bool {
	b := img.Bounds()
	return b.Dx() == 2*b.Dy()
}

// UpgradeLegacy converts a 64x32 (or scaled) skin to the 64x64 layout by
// mirroring the right limbs into the left-limb regions. Skins already in the
// square layout are returned unchanged.
func UpgradeLegacy(img *image.NRGBA) *image.NRGBA {
	if !IsLegacy(img) {
		return img
	}
	b := img.Bounds()
	w := b.Dx()
	s := w / GridSize
	if s == 0 {
		return img
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, w))
	draw.Draw(out, image.Rect(0, 0, w, b.Dy()), img, b.Min, draw.Src)

	for _, op := range legacyCopies {
		fw, fh := op.w*s, op.h*s
		sx, sy := op.x*s, op.y*s
		for y := 0; y < fh; y++ {
			for x := 0; x < fw; x++ {
				dx := sx + op.dx*s + (fw - 1 - x)
				dy := sy + op.dy*s + y
				out.SetNRGBA(dx, dy, out.NRGBAAt(sx+x, sy+y))
			}
		}
	}
	return out
}

// StripAlpha makes the base regions of a skin opaque. For legacy skins the
// hat region is cleared when it carries no transparency at all, since old
// skins painted it solid to mean "no hat". The input is not modified.
func StripAlpha(img *image.NRGBA, legacy bool) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	s := out.Bounds().Dx() / GridSize
	if s == 0 {
		return out
	}

	setAlpha := func(r rect, a uint8) {
		for y := r.y0 * s; y < r.y1*s && y < out.Rect.Dy(); y++ {
			for x := r.x0 * s; x < r.x1*s && x < out.Rect.Dx(); x++ {
				out.Pix[y*out.Stride+x*4+3] = a
			}
		}
	}

	setAlpha(opaqueRegions[0], 255)
	if legacy && !hasTransparency(out, hatRegion, s) {
		setAlpha(hatRegion, 0)
	}
	for _, r := range opaqueRegions[1:] {
		setAlpha(r, 255)
	}
	return out
}

func hasTransparency(img *image.NRGBA, r rect, s int) bool {
	for y := r.y0 * s; y < r.y1*s && y < img.Rect.Dy(); y++ {
		for x := r.x0 * s; x < r.x1*s && x < img.Rect.Dx(); x++ {
			if img.Pix[y*img.Stride+x*4+3] < 128 {
				return true
			}
		}
	}
	return false
}

// Process prepares a player skin for rendering: upgrade legacy layout and
// strip alpha from the base regions. With raw set, only the layout upgrade
// happens.
func Process(img *image.NRGBA, raw bool) (*Texture, error) {
	legacy := IsLegacy(img)
	img = UpgradeLegacy(img)
	if !raw {
		img = StripAlpha(img, legacy)
	}
	return NewTexture(img)
}
