package postprocess

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Upscale enlarges img by an integer factor with nearest-neighbour
// sampling, keeping skin texels crisp.
func Upscale(img *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Crop trims fully transparent borders. An empty image is returned as is.
func Crop(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.Pix[y*img.Stride+x*4+3] > 0 {
				minX = min(minX, x)
				maxX = max(maxX, x)
				minY = min(minY, y)
				maxY = max(maxY, y)
			}
		}
	}
	if maxX < 0 {
		return img
	}

	cropW := maxX - minX + 1
	cropH := maxY - minY + 1
	cropped := image.NewNRGBA(image.Rect(0, 0, cropW, cropH))
	for y := 0; y < cropH; y++ {
		srcOff := (minY+y)*img.Stride + minX*4
		dstOff := y * cropped.Stride
		copy(cropped.Pix[dstOff:dstOff+cropW*4], img.Pix[srcOff:srcOff+cropW*4])
	}
	return cropped
}

// Fit scales img to fill fillRatio of a w×h canvas, keeping its aspect
// ratio, and centers it. Enlarging uses nearest-neighbour, shrinking the
// premultiplied filter of Downsample.
func Fit(img *image.NRGBA, w, h int, fillRatio float64) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return canvas
	}

	scaleF := math.Min(float64(w)*fillRatio/float64(srcW), float64(h)*fillRatio/float64(srcH))
	newW := max(1, int(float64(srcW)*scaleF+0.5))
	newH := max(1, int(float64(srcH)*scaleF+0.5))

	var scaled *image.NRGBA
	if newW >= srcW {
		scaled = image.NewNRGBA(image.Rect(0, 0, newW, newH))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
	} else {
		scaled = Downsample(img, newW, newH)
	}

	offX := (w - newW) / 2
	offY := (h - newH) / 2
	draw.Draw(canvas, image.Rect(offX, offY, offX+newW, offY+newH), scaled, image.Point{}, draw.Src)
	return canvas
}
