package raster

import (
	"math"

	"mc-skin-renderer/internal/codec"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Words  []codec.Word // len = W*H, Absent where nothing was drawn
	ZBuf   []float64    // linear depth per pixel, initialized to +inf
}

// NewFrameBuffer allocates an empty buffer with a +inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(1)
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Words:  make([]codec.Word, n),
		ZBuf:   zbuf,
	}
}

// Buffer returns the drawn words as a codec buffer. The words are shared.
func (fb *FrameBuffer) Buffer() *codec.Buffer {
	return &codec.Buffer{Width: fb.Width, Height: fb.Height, Words: fb.Words}
}
