package parts

import (
	"bufio"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"mc-skin-renderer/internal/codec"
)

// LoadMap reads a .cwb buffer or a PNG-transported frame.
func LoadMap(path string) (*codec.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parts: open %s: %w", path, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cwb":
		buf, err := codec.ReadBuffer(r)
		if err != nil {
			return nil, fmt.Errorf("parts: %s: %w", path, err)
		}
		return buf, nil
	case ".png":
		// decoded without colour conversion: the channels are codeword bytes
		img, err := png.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("parts: decode %s: %w", path, err)
		}
		return codec.BufferFromImage(img), nil
	default:
		return nil, fmt.Errorf("parts: unknown extension: %s", ext)
	}
}
