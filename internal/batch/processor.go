package batch

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"mc-skin-renderer/internal/imageio"
	"mc-skin-renderer/internal/logging"
	"mc-skin-renderer/internal/postprocess"
	"mc-skin-renderer/internal/render"
	"mc-skin-renderer/internal/request"
	"mc-skin-renderer/internal/skin"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Renderer  *render.Renderer
	Defaults  request.Request
	OutputDir string
	Format    imageio.Format // for jobs without an explicit output path

	Supersample int     // part maps are this many times the output size
	Scale       int     // nearest-neighbour upscale after downsampling
	Crop        bool    // trim transparent borders
	Size        int     // square canvas to fit the result into, 0 keeps the render size
	FillRatio   float64 // share of Size the fitted render may span

	Workers  int
	Metrics  *Metrics  // optional
	Progress io.Writer // optional progress lines
}

// Result holds the outcome of processing one job.
type Result struct {
	Name    string `json:"name"`
	Skin    string `json:"skin"`
	Mode    string `json:"mode,omitempty"`
	Output  string `json:"output,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Run processes all jobs using a worker pool. Jobs not started before ctx is
// cancelled are reported as failed with the context error.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f renders/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(ctx, cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	sent := 0
feed:
	for ; sent < total; sent++ {
		select {
		case jobChan <- sent:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobChan)

	wg.Wait()
	close(done)

	for i := sent; i < total; i++ {
		results[i] = failed(jobs[i], "", ctx.Err())
		cfg.Metrics.observeFailure("cancelled")
	}

	logging.L().Debug("batch finished", "jobs", total, "elapsed", time.Since(start))
	return results
}

func failed(job Job, mode string, err error) Result {
	return Result{Name: job.displayName(), Skin: job.Skin, Mode: mode, Error: err.Error()}
}

func processJob(ctx context.Context, cfg Config, job Job) Result {
	if err := ctx.Err(); err != nil {
		cfg.Metrics.observeFailure("cancelled")
		return failed(job, "", err)
	}

	req, err := job.Request(cfg.Defaults)
	if err != nil {
		cfg.Metrics.observeFailure("request")
		return failed(job, "", err)
	}
	mode := req.Mode.String()

	tex, err := loadTextures(job, req)
	if err != nil {
		cfg.Metrics.observeFailure("texture")
		return failed(job, mode, err)
	}

	begin := time.Now()
	img, err := cfg.Renderer.Render(ctx, req, tex)
	if err != nil {
		cfg.Metrics.observeFailure("render")
		return failed(job, mode, err)
	}
	cfg.Metrics.observeComposite(time.Since(begin))

	img = finish(img, cfg)

	outPath := job.Output
	if outPath == "" {
		format := cfg.Format
		if format == "" {
			format = imageio.PNG
		}
		outPath = fmt.Sprintf("%s_%s.%s", job.displayName(), mode, format)
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(cfg.OutputDir, outPath)
	}
	if err := imageio.Save(outPath, img); err != nil {
		cfg.Metrics.observeFailure("encode")
		return failed(job, mode, err)
	}
	cfg.Metrics.observeRendered(mode)

	return Result{
		Name:    job.displayName(),
		Skin:    job.Skin,
		Mode:    mode,
		Output:  outPath,
		Success: true,
	}
}

func loadTextures(job Job, req request.Request) (render.Textures, error) {
	var tex render.Textures
	img, err := imageio.Load(job.Skin)
	if err != nil {
		return tex, err
	}
	if tex.Skin, err = render.PrepareSkin(img, req); err != nil {
		return tex, err
	}

	// Cape and armor textures are used as-is.
	for _, opt := range []struct {
		path string
		dst  **skin.Texture
	}{
		{job.Cape, &tex.Cape},
		{job.Armor1, &tex.Armor1},
		{job.Armor2, &tex.Armor2},
	} {
		if opt.path == "" {
			continue
		}
		if *opt.dst, err = skin.Load(opt.path); err != nil {
			return tex, err
		}
	}
	return tex, nil
}

// finish applies the output shaping steps in order: downsample, crop, fit,
// upscale.
func finish(img *image.NRGBA, cfg Config) *image.NRGBA {
	if cfg.Supersample > 1 {
		w := max(img.Rect.Dx()/cfg.Supersample, 1)
		h := max(img.Rect.Dy()/cfg.Supersample, 1)
		img = postprocess.Downsample(img, w, h)
	}
	if cfg.Crop {
		img = postprocess.Crop(img)
	}
	if cfg.Size > 0 {
		fill := cfg.FillRatio
		if fill <= 0 || fill > 1 {
			fill = 1
		}
		img = postprocess.Fit(img, cfg.Size, cfg.Size, fill)
	}
	if cfg.Scale > 1 {
		img = postprocess.Upscale(img, cfg.Scale)
	}
	return img
}
