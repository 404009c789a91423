package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// On-disk buffer file (.cwb):
//
//	magic   [4]byte "CWB1"
//	layout  uint8   LayoutVersion
//	width   uint32  LE
//	height  uint32  LE
//	payload zstd(width*height little-endian uint32 words)
var fileMagic = [4]byte{'C', 'W', 'B', '1'}

const headerSize = 4 + 1 + 4 + 4

// maxDimension bounds width and height read from a file header.
const maxDimension = 1 << 14

var (
	ErrBadMagic      = errors.New("codec: not a codeword buffer file")
	ErrLayoutVersion = errors.New("codec: unsupported layout version")
	ErrTruncated     = errors.New("codec: truncated buffer payload")
)

// WriteBuffer serializes b in the versioned file format.
func WriteBuffer(w io.Writer, b *Buffer) error {
	var hdr [headerSize]byte
	copy(hdr[:4], fileMagic[:])
	hdr[4] = LayoutVersion
	binary.LittleEndian.PutUint32(hdr[5:9], uint32(b.Width))
	binary.LittleEndian.PutUint32(hdr[9:13], uint32(b.Height))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("codec: write header: %w", err)
	}

	raw := make([]byte, len(b.Words)*4)
	for i, word := range b.Words {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(word))
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("codec: zstd writer: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return fmt.Errorf("codec: write payload: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("codec: flush payload: %w", err)
	}
	return nil
}

// ReadBuffer parses a buffer file. Files written with another layout
// version fail with ErrLayoutVersion.
func ReadBuffer(r io.Reader) (*Buffer, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("codec: read header: %w", err)
	}
	if !bytes.Equal(hdr[:4], fileMagic[:]) {
		return nil, ErrBadMagic
	}
	if hdr[4] != LayoutVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrLayoutVersion, hdr[4], LayoutVersion)
	}
	w := int(binary.LittleEndian.Uint32(hdr[5:9]))
	h := int(binary.LittleEndian.Uint32(hdr[9:13]))
	if w <= 0 || h <= 0 || w > maxDimension || h > maxDimension {
		return nil, fmt.Errorf("codec: invalid dimensions %dx%d", w, h)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("codec: zstd reader: %w", err)
	}
	defer dec.Close()

	raw := make([]byte, w*h*4)
	if _, err := io.ReadFull(dec, raw); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("codec: read payload: %w", err)
	}

	buf := NewBuffer(w, h)
	for i := range buf.Words {
		buf.Words[i] = Word(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return buf, nil
}
