package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mc-skin-renderer/internal/codec"
	"mc-skin-renderer/internal/parts"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: inspect map.cwb|map.png ...")
		fmt.Fprintln(os.Stderr, "       inspect <parts dir>")
		os.Exit(2)
	}

	failed := false
	for _, path := range os.Args[1:] {
		if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			listParts(path)
			continue
		}
		if err := inspect(path); err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func listParts(root string) {
	idx := parts.BuildIndex(root)
	fmt.Printf("%s: %d part maps\n", root, idx.Len())
	for _, k := range idx.Keys() {
		fmt.Printf("  %s\n", k)
	}
}

func inspect(path string) error {
	buf, err := parts.LoadMap(path)
	if err != nil {
		return err
	}

	layout := "png transport"
	if strings.EqualFold(filepath.Ext(path), ".cwb") {
		layout = fmt.Sprintf("cwb v%d", codec.LayoutVersion)
	}
	total := buf.Width * buf.Height
	covered := buf.Coverage()

	fmt.Printf("%s\n", path)
	fmt.Printf("  Size: %dx%d, layout: %s\n", buf.Width, buf.Height, layout)
	if total > 0 {
		fmt.Printf("  Coverage: %d/%d (%.1f%%)\n", covered, total, 100*float64(covered)/float64(total))
	}

	near, far, ok := buf.DepthRange()
	if !ok {
		fmt.Println("  Empty: no geometry")
		return nil
	}
	fmt.Printf("  Depth: [%d, %d]\n", near, far)

	// Texel footprint and shading spread
	minU, minV, maxU, maxV := uint8(codec.MaxUV), uint8(codec.MaxUV), uint8(0), uint8(0)
	minS, maxS := uint8(codec.MaxShading), uint8(0)
	for _, w := range buf.Words {
		s := codec.Decode(w)
		if !s.Present {
			continue
		}
		minU, maxU = min(minU, s.U), max(maxU, s.U)
		minV, maxV = min(minV, s.V), max(maxV, s.V)
		minS, maxS = min(minS, s.Shading), max(maxS, s.Shading)
	}
	fmt.Printf("  UV: U[%d, %d] V[%d, %d]\n", minU, maxU, minV, maxV)
	fmt.Printf("  Shading: [%d, %d]\n", minS, maxS)
	return nil
}
