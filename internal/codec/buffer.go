package codec

import (
	"image"
	"image/color"
	"image/draw"
)

// Buffer is a row-major grid of codewords covering one render target.
type Buffer struct {
	Width  int
	Height int
	Words  []Word // len = Width*Height
}

// NewBuffer allocates a buffer with every pixel absent.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{
		Width:  w,
		Height: h,
		Words:  make([]Word, w*h),
	}
}

// At returns the word at (x, y), or Absent outside the buffer.
func (b *Buffer) At(x, y int) Word {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return Absent
	}
	return b.Words[y*b.Width+x]
}

// Set stores w at (x, y). Writes outside the buffer are dropped.
func (b *Buffer) Set(x, y int, w Word) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	b.Words[y*b.Width+x] = w
}

// Coverage returns the number of pixels carrying geometry.
func (b *Buffer) Coverage() int {
	n := 0
	for _, w := range b.Words {
		if w.Present() {
			n++
		}
	}
	return n
}

// DepthRange returns the nearest and farthest decoded depth.
// ok is false when the buffer is empty.
func (b *Buffer) DepthRange() (near, far uint16, ok bool) {
	for _, w := range b.Words {
		s := Decode(w)
		if !s.Present {
			continue
		}
		if !ok {
			near, far, ok = s.Depth, s.Depth, true
			continue
		}
		if s.Depth < near {
			near = s.Depth
		}
		if s.Depth > far {
			far = s.Depth
		}
	}
	return near, far, ok
}

// ToImage lays the buffer out as an NRGBA image, one word per pixel.
// Channels are raw bytes: alpha is not coverage.
func (b *Buffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		row := y * img.Stride
		for x := 0; x < b.Width; x++ {
			p := b.Words[y*b.Width+x].Bytes()
			copy(img.Pix[row+x*4:row+x*4+4], p[:])
		}
	}
	return img
}

// BufferFromImage reads a frame that was carried as an image. Only NRGBA
// (and fully opaque RGBA) sources keep the channel bytes intact; other
// models are converted channel-by-channel without premultiplication.
func BufferFromImage(src image.Image) *Buffer {
	nrgba, ok := src.(*image.NRGBA)
	if !ok {
		nrgba = toRawNRGBA(src)
	}
	r := nrgba.Bounds()
	buf := NewBuffer(r.Dx(), r.Dy())
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			i := nrgba.PixOffset(r.Min.X+x, r.Min.Y+y)
			buf.Words[y*buf.Width+x] = FromBytes([4]byte{
				nrgba.Pix[i], nrgba.Pix[i+1], nrgba.Pix[i+2], nrgba.Pix[i+3],
			})
		}
	}
	return buf
}

func toRawNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	switch s := src.(type) {
	case *image.RGBA:
		// Raw bytes: the producer wrote codewords, not colors.
		for y := b.Min.Y; y < b.Max.Y; y++ {
			copy(dst.Pix[dst.PixOffset(b.Min.X, y):dst.PixOffset(b.Max.X, y)],
				s.Pix[s.PixOffset(b.Min.X, y):s.PixOffset(b.Max.X, y)])
		}
	case *image.NRGBA64:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := s.NRGBA64At(x, y)
				dst.SetNRGBA(x, y, color.NRGBA{
					R: uint8(c.R >> 8), G: uint8(c.G >> 8), B: uint8(c.B >> 8), A: uint8(c.A >> 8),
				})
			}
		}
	default:
		draw.Draw(dst, b, src, b.Min, draw.Src)
	}
	return dst
}
