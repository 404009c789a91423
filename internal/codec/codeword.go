package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// LayoutVersion identifies the bit packing below. Buffers written with any
// other layout are rejected; layouts are not interchangeable.
const LayoutVersion = 2

// Bit layout of a codeword (LSB first):
//
//	bits  0-5   u
//	bits  6-11  v
//	bits 12-19  shading
//	bits 20-31  depth+1 (0 = no geometry)
//
// Split little-endian across R, G, B, A so a frame travels as a plain image.
const (
	uShift       = 0
	vShift       = 6
	shadingShift = 12
	depthShift   = 20

	uvMask      = 0x3F
	shadingMask = 0xFF
	depthMask   = 0xFFF

	// MaxUV is the largest texel index on either axis.
	MaxUV = uvMask
	// MaxShading is the quantized value for full light.
	MaxShading = shadingMask
	// MaxDepth is the farthest encodable depth; the stored field is biased by one.
	MaxDepth = depthMask - 1
)

// ErrOutOfRange is returned by TryEncode for fields that do not fit the layout.
var ErrOutOfRange = errors.New("codec: field out of range")

// Word is one packed geometry sample.
type Word uint32

// Absent is the sentinel for "no geometry at this pixel".
const Absent Word = 0

// Sample is a decoded Word.
type Sample struct {
	U, V    uint8
	Shading uint8
	Depth   uint16
	Present bool
}

// Encode packs a sample. Out-of-range input is a bug in the producer and panics.
func Encode(u, v, shading uint8, depth uint16) Word {
	w, err := TryEncode(u, v, shading, depth)
	if err != nil {
		panic(err)
	}
	return w
}

// TryEncode is Encode for producers that cannot guarantee their input,
// e.g. importers of foreign buffers.
func TryEncode(u, v, shading uint8, depth uint16) (Word, error) {
	switch {
	case u > MaxUV:
		return Absent, fmt.Errorf("%w: u=%d", ErrOutOfRange, u)
	case v > MaxUV:
		return Absent, fmt.Errorf("%w: v=%d", ErrOutOfRange, v)
	case depth > MaxDepth:
		return Absent, fmt.Errorf("%w: depth=%d", ErrOutOfRange, depth)
	}
	// shading spans the full uint8 range
	return Word(uint32(u)<<uShift |
		uint32(v)<<vShift |
		uint32(shading)<<shadingShift |
		(uint32(depth)+1)<<depthShift), nil
}

// Decode unpacks w. Every bit pattern decodes; a zero depth field means absent.
func Decode(w Word) Sample {
	stored := uint32(w) >> depthShift & depthMask
	if stored == 0 {
		return Sample{}
	}
	return Sample{
		U:       uint8(uint32(w) >> uShift & uvMask),
		V:       uint8(uint32(w) >> vShift & uvMask),
		Shading: uint8(uint32(w) >> shadingShift & shadingMask),
		Depth:   uint16(stored - 1),
		Present: true,
	}
}

// Present reports whether w carries geometry without a full decode.
func (w Word) Present() bool {
	return uint32(w)>>depthShift != 0
}

// Bytes splits w into R, G, B, A channel bytes.
func (w Word) Bytes() [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(w))
	return b
}

// FromBytes joins R, G, B, A channel bytes into a Word.
func FromBytes(b [4]byte) Word {
	return Word(binary.LittleEndian.Uint32(b[:]))
}

// QuantizeDepth maps a linear camera-space depth in [near, far] onto
// [0, MaxDepth]. Values outside the range are clamped.
func QuantizeDepth(linear, near, far float64) uint16 {
	if far <= near {
		return 0
	}
	t := (linear - near) / (far - near)
	if t <= 0 || math.IsNaN(t) {
		return 0
	}
	if t >= 1 {
		return MaxDepth
	}
	return uint16(math.Round(t * MaxDepth))
}
