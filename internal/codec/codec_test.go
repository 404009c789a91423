package codec

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	depths := []uint16{0, 1, 2, 511, 2048, MaxDepth - 1, MaxDepth}
	shadings := []uint8{0, 1, 127, 128, 254, 255}

	for u := uint8(0); u <= MaxUV; u++ {
		for v := uint8(0); v <= MaxUV; v += 7 {
			for _, s := range shadings {
				for _, d := range depths {
					got := Decode(Encode(u, v, s, d))
					want := Sample{U: u, V: v, Shading: s, Depth: d, Present: true}
					if got != want {
						t.Fatalf("round trip (%d,%d,%d,%d): got %+v", u, v, s, d, got)
					}
				}
			}
		}
	}
}

func TestAbsentSentinel(t *testing.T) {
	assert.False(t, Decode(Absent).Present)
	assert.False(t, Absent.Present())

	// Any word with an empty depth field is absent, whatever the low bits hold.
	assert.False(t, Decode(Word(0x000FFFFF)).Present)

	// The smallest encodable sample is never the sentinel.
	w := Encode(0, 0, 0, 0)
	assert.NotEqual(t, Absent, w)
	assert.True(t, w.Present())
}

func TestEncodeRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		u, v, s uint8
		depth   uint16
	}{
		{"u", 64, 0, 0, 0},
		{"v", 0, 64, 0, 0},
		{"depth", 0, 0, 0, MaxDepth + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TryEncode(tt.u, tt.v, tt.s, tt.depth)
			require.ErrorIs(t, err, ErrOutOfRange)
			assert.Panics(t, func() { Encode(tt.u, tt.v, tt.s, tt.depth) })
		})
	}
}

func TestDecodeNeverExceedsGrid(t *testing.T) {
	for _, w := range []Word{0xFFFFFFFF, 0xDEADBEEF, 0x00100FFF, 0x80000000} {
		s := Decode(w)
		assert.LessOrEqual(t, s.U, uint8(MaxUV))
		assert.LessOrEqual(t, s.V, uint8(MaxUV))
		assert.LessOrEqual(t, s.Depth, uint16(MaxDepth))
	}
}

func TestFieldsStraddleChannels(t *testing.T) {
	// u=63 v=63 fills the first 12 bits: R=0xFF, low nibble of G=0xF.
	b := Encode(63, 63, 0xAB, 0).Bytes()
	assert.Equal(t, byte(0xFF), b[0])
	assert.Equal(t, byte(0xBF), b[1]) // shading low nibble in G's high nibble
	assert.Equal(t, byte(0x1A), b[2]) // shading high nibble + depth field low nibble (1)
	assert.Equal(t, byte(0x00), b[3])

	assert.Equal(t, Encode(5, 6, 7, 8), FromBytes(Encode(5, 6, 7, 8).Bytes()))
}

func TestQuantizeDepth(t *testing.T) {
	assert.Equal(t, uint16(0), QuantizeDepth(1, 1, 10))
	assert.Equal(t, uint16(MaxDepth), QuantizeDepth(10, 1, 10))
	assert.Equal(t, uint16(0), QuantizeDepth(-5, 1, 10))
	assert.Equal(t, uint16(MaxDepth), QuantizeDepth(50, 1, 10))
	assert.Equal(t, uint16(0), QuantizeDepth(5, 3, 3))

	// monotonic in distance
	prev := QuantizeDepth(0, 0, 100)
	for d := 1.0; d <= 100; d++ {
		cur := QuantizeDepth(d, 0, 100)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestBufferImageTransport(t *testing.T) {
	buf := NewBuffer(3, 2)
	buf.Set(0, 0, Encode(10, 20, 255, 0))
	buf.Set(2, 1, Encode(63, 0, 3, MaxDepth))
	buf.Set(5, 5, Encode(1, 1, 1, 1)) // dropped

	var out bytes.Buffer
	require.NoError(t, png.Encode(&out, buf.ToImage()))
	img, err := png.Decode(&out)
	require.NoError(t, err)

	got := BufferFromImage(img)
	assert.Equal(t, buf.Words, got.Words)
	assert.Equal(t, 2, got.Coverage())
	assert.Equal(t, Absent, got.At(-1, 0))

	near, far, ok := got.DepthRange()
	require.True(t, ok)
	assert.Equal(t, uint16(0), near)
	assert.Equal(t, uint16(MaxDepth), far)
}

func TestBufferFromOpaqueRGBA(t *testing.T) {
	// Opaque PNGs decode as *image.RGBA; their bytes must be taken as-is.
	w := Encode(1, 2, 3, 4000)
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	b := w.Bytes()
	copy(img.Pix, b[:])
	assert.Equal(t, w, BufferFromImage(img).At(0, 0))
}

func TestBufferFileRoundTrip(t *testing.T) {
	buf := NewBuffer(64, 32)
	for i := range buf.Words {
		if i%3 == 0 {
			buf.Words[i] = Encode(uint8(i%64), uint8(i/64%64), uint8(i%256), uint16(i%MaxDepth))
		}
	}

	var out bytes.Buffer
	require.NoError(t, WriteBuffer(&out, buf))

	got, err := ReadBuffer(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, buf.Width, got.Width)
	assert.Equal(t, buf.Height, got.Height)
	assert.Equal(t, buf.Words, got.Words)
}

func TestReadBufferRejects(t *testing.T) {
	var good bytes.Buffer
	require.NoError(t, WriteBuffer(&good, NewBuffer(4, 4)))

	t.Run("magic", func(t *testing.T) {
		data := append([]byte(nil), good.Bytes()...)
		data[0] = 'X'
		_, err := ReadBuffer(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("layout", func(t *testing.T) {
		data := append([]byte(nil), good.Bytes()...)
		data[4] = 1
		_, err := ReadBuffer(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrLayoutVersion)
	})

	t.Run("header", func(t *testing.T) {
		_, err := ReadBuffer(bytes.NewReader(good.Bytes()[:6]))
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrBadMagic))
	})

	t.Run("payload", func(t *testing.T) {
		var other bytes.Buffer
		require.NoError(t, WriteBuffer(&other, NewBuffer(2, 2)))
		data := append([]byte(nil), other.Bytes()...)
		// claim more pixels than the payload holds
		data[5] = 200
		_, err := ReadBuffer(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrTruncated)
	})
}
