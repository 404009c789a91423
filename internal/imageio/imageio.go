// Package imageio decodes skin, cape and armor textures and encodes finished
// renders.
package imageio

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// Format is an output encoding.
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
)

// FormatFromPath picks the output format from a file extension.
// Unknown extensions fall back to PNG.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		return WebP
	default:
		return PNG
	}
}

// Decode reads PNG, JPEG, WebP or TGA and returns it as NRGBA.
// TGA has no magic number, so formats are dispatched here rather than
// through image.Decode: anything unrecognised is tried as TGA.
func Decode(r io.Reader) (*image.NRGBA, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(12)

	var (
		img image.Image
		err error
	)
	switch {
	case bytes.HasPrefix(head, []byte("\x89PNG\r\n\x1a\n")):
		img, err = png.Decode(br)
	case bytes.HasPrefix(head, []byte{0xFF, 0xD8}):
		img, err = jpeg.Decode(br)
	case len(head) >= 12 && string(head[:4]) == "RIFF" && string(head[8:12]) == "WEBP":
		img, err = webp.Decode(br)
	default:
		img, err = tga.Decode(br)
	}
	if err != nil {
		return nil, fmt.Errorf("imageio: decode: %w", err)
	}
	return ToNRGBA(img), nil
}

// Load decodes the image file at path.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imageio: %s: %w", path, err)
	}
	return img, nil
}

// Encode writes img in the requested format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case WebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("imageio: webp encode: %w", err)
		}
	case PNG, "":
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("imageio: png encode: %w", err)
		}
	default:
		return fmt.Errorf("imageio: unknown format %q", format)
	}
	return nil
}

// Save encodes img to path, choosing the format from the extension and
// creating parent directories.
func Save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := Encode(bw, img, FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("imageio: write %s: %w", path, err)
	}
	return f.Close()
}

// ToNRGBA converts any image to NRGBA with its origin at (0, 0).
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// No alpha channel: draw and force opaque.
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 255
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				dst.SetNRGBA(x, y, c)
			}
		}
	}
	return dst
}
