package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"mc-skin-renderer/internal/codec"
	"mc-skin-renderer/internal/imageio"
	"mc-skin-renderer/internal/logging"
	"mc-skin-renderer/internal/model"
	"mc-skin-renderer/internal/parts"
	"mc-skin-renderer/internal/raster"
	"mc-skin-renderer/internal/request"
)

// load reads a JSON mesh and rasterizes it, or reads an existing map.
func load(ctx context.Context, path string) (*codec.Buffer, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		mesh, err := raster.LoadMesh(path)
		if err != nil {
			return nil, err
		}
		return mesh.Buffer(ctx)
	}
	return parts.LoadMap(path)
}

func writeCWB(path string, buf *codec.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := codec.WriteBuffer(bw, buf); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func save(dst string, buf *codec.Buffer, asPNG bool) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	if asPNG {
		return imageio.Save(dst, buf.ToImage())
	}
	return writeCWB(dst, buf)
}

func bake(ctx context.Context, src, outDir string, asPNG bool) error {
	buf, err := load(ctx, src)
	if err != nil {
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(src)
	}

	ext := ".cwb"
	if asPNG {
		ext = ".png"
	}
	dst := filepath.Join(dir, stem+ext)
	if dst == src {
		return fmt.Errorf("%s: refusing to overwrite the input", src)
	}

	if err := save(dst, buf, asPNG); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}

	fmt.Printf("OK  %s -> %s  (%dx%d, %d covered)\n", src, dst, buf.Width, buf.Height, buf.Coverage())
	return nil
}

// bakePlayer rasterizes every part of the built-in player model, ears
// included, for both views. Parts that come out identical for both arm
// widths go to the shared folder; the rest get one map per model.
func bakePlayer(ctx context.Context, mode request.Mode, width int, outDir string, asPNG bool) (int, error) {
	pose := model.PoseFor(mode)
	players := []*model.Player{model.NewPlayer(request.Steve, pose), model.NewPlayer(request.Alex, pose)}
	for _, p := range players {
		for _, e := range model.BakedEars() {
			if err := p.AddEars(e); err != nil {
				return 0, err
			}
		}
	}
	ext := ".cwb"
	if asPNG {
		ext = ".png"
	}

	var written atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, back := range []bool{false, true} {
		view := request.Request{Back: back}.View()
		sc := model.SceneFor(mode, back, width)
		for _, part := range players[0].Parts() {
			g.Go(func() error {
				var bufs [2]*codec.Buffer
				for i, p := range players {
					mesh, err := p.Mesh(part, sc)
					if err != nil {
						return err
					}
					if bufs[i], err = mesh.Buffer(ctx); err != nil {
						return err
					}
				}

				ears := players[0].IsEars(part)
				keys := []parts.Key{{View: view, Ears: ears, Name: part}}
				if !slices.Equal(bufs[0].Words, bufs[1].Words) {
					keys = []parts.Key{
						{View: view, Model: request.Steve.Dir(), Ears: ears, Name: part},
						{View: view, Model: request.Alex.Dir(), Ears: ears, Name: part},
					}
				}
				for i, k := range keys {
					dst := filepath.Join(outDir, filepath.FromSlash(k.Path())+ext)
					if err := save(dst, bufs[i], asPNG); err != nil {
						return fmt.Errorf("write %s: %w", dst, err)
					}
					fmt.Printf("OK  %s -> %s  (%d covered)\n", k, dst, bufs[i].Coverage())
					written.Add(1)
				}
				return nil
			})
		}
	}

	err := g.Wait()
	return int(written.Load()), err
}

func main() {
	outDir := flag.String("out", "", "Output directory (default: next to each input, ./parts with -player)")
	asPNG := flag.Bool("png", false, "Write PNG-transported maps instead of .cwb")
	player := flag.Bool("player", false, "Bake every part of the built-in player model")
	modeName := flag.String("mode", "fullbody", "Camera setup for -player")
	width := flag.Int("width", 256, "Map width for -player; the height follows the mode")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bake [-out dir] [-png] map.png|mesh.json ...")
		fmt.Fprintln(os.Stderr, "       bake -player [-mode fullbody] [-width 256] [-out parts]")
		flag.PrintDefaults()
	}
	flag.Parse()

	logging.SetLogger(logging.NewText(os.Stderr, *verbose))
	ctx := context.Background()

	if *player {
		mode, err := request.ParseMode(*modeName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		if *width <= 0 {
			fmt.Fprintln(os.Stderr, "Error: -width must be positive")
			os.Exit(2)
		}
		dir := *outDir
		if dir == "" {
			dir = "parts"
		}
		n, err := bakePlayer(ctx, mode, *width, dir, *asPNG)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nDone. %d maps baked for %s into %s.\n", n, mode, dir)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	errors := 0
	for _, src := range flag.Args() {
		if err := bake(ctx, src, *outDir, *asPNG); err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			errors++
		}
	}
	if errors > 0 {
		fmt.Printf("\nDone with %d error(s).\n", errors)
		os.Exit(1)
	}
	fmt.Println("\nDone. All maps baked.")
}
