package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mc-skin-renderer/internal/batch"
	"mc-skin-renderer/internal/config"
	"mc-skin-renderer/internal/imageio"
	"mc-skin-renderer/internal/logging"
	"mc-skin-renderer/internal/parts"
	"mc-skin-renderer/internal/render"
	"mc-skin-renderer/internal/request"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .yaml)")
	manifest := flag.String("manifest", "", "Jobs file (.json, .yaml) for batch rendering")
	skinPath := flag.String("skin", "", "Skin texture for a single render")
	capePath := flag.String("cape", "", "Cape texture (single render)")
	armor1 := flag.String("armor1", "", "Armor layer 1 texture (single render)")
	armor2 := flag.String("armor2", "", "Armor layer 2 texture (single render)")
	armor := flag.String("armor", "", "Armor pieces to wear: helmet,chestplate,leggings,boots")
	back := flag.Bool("back", false, "Render the back view (single render)")
	out := flag.String("out", "", "Output file for a single render (.png or .webp)")

	mode := flag.String("mode", "", "Render mode (default: fullbody)")
	model := flag.String("model", "", "Player model: steve or alex (default: steve)")
	exclude := flag.String("exclude", "", "Comma separated features to turn off")
	format := flag.String("format", "", "Output format for batch renders: png or webp")
	baseDir := flag.String("base", "", "Base directory (default: auto-detect)")
	partsDir := flag.String("parts", "", "Baked part maps directory (default: <base>/parts)")
	outputDir := flag.String("output", "", "Output directory (default: <base>/renders)")
	supersample := flag.Int("supersample", 0, "Part map scale relative to the output (default: 1)")
	scale := flag.Int("scale", 0, "Nearest-neighbour upscale of the result (default: 1)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :2112")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	logging.SetLogger(logging.NewText(os.Stderr, *verbose))

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		BaseDir:     *baseDir,
		PartsDir:    *partsDir,
		OutputDir:   *outputDir,
		Mode:        *mode,
		Model:       *model,
		Exclude:     *exclude,
		Format:      *format,
		Supersample: *supersample,
		Scale:       *scale,
		Workers:     *workers,
		MetricsAddr: *metricsAddr,
	})

	if (*manifest == "") == (*skinPath == "") {
		fmt.Fprintln(os.Stderr, "Error: pass exactly one of -skin or -manifest.")
		os.Exit(2)
	}

	defaults, err := cfg.Request()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	outFormat := imageio.Format(cfg.Format)
	if outFormat != imageio.PNG && outFormat != imageio.WebP {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", cfg.Format)
		os.Exit(2)
	}

	// Build part index
	partIndex := parts.BuildIndex(cfg.PartsDir)
	if partIndex.Len() == 0 {
		fmt.Fprintf(os.Stderr, "Error: no part maps found in %s. Use -parts or -base.\n", cfg.PartsDir)
		os.Exit(1)
	}
	fmt.Printf("Parts: %d indexed in %s\n", partIndex.Len(), cfg.PartsDir)

	renderer := &render.Renderer{Parts: parts.NewCache(partIndex), Workers: cfg.ComposeWorkers}
	if cfg.Background != "" {
		bg, err := imageio.Load(cfg.Background)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading background: %v\n", err)
			os.Exit(1)
		}
		renderer.Background = bg
	}

	// Collect jobs
	var jobs []batch.Job
	if *manifest != "" {
		jobs, err = batch.LoadJobs(*manifest)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading jobs: %v\n", err)
			os.Exit(1)
		}
	} else {
		job := batch.Job{
			Skin:   *skinPath,
			Cape:   *capePath,
			Armor1: *armor1,
			Armor2: *armor2,
			Back:   *back,
			Output: *out,
		}
		if job.Armor, err = request.ParseArmor(*armor); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		if job.Output != "" && !filepath.IsAbs(job.Output) {
			if abs, err := filepath.Abs(job.Output); err == nil {
				job.Output = abs
			}
		}
		jobs = []batch.Job{job}
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs to render.")
		os.Exit(0)
	}

	// Metrics endpoint
	var metrics *batch.Metrics
	if cfg.MetricsAddr != "" {
		metrics = batch.NewMetrics(prometheus.DefaultRegisterer)
		go func() {
			logging.L().Info("metrics endpoint listening", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, promhttp.Handler()); err != nil {
				logging.L().Error("metrics endpoint failed", "err", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Minecraft skin renderer → %s (%s, %s)\n", outFormat, defaults.Mode, defaults.Model)
	fmt.Printf("Jobs: %d, Workers: %d\n", len(jobs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		Renderer:    renderer,
		Defaults:    defaults,
		OutputDir:   cfg.OutputDir,
		Format:      outFormat,
		Supersample: cfg.Supersample,
		Scale:       cfg.Scale,
		Crop:        cfg.Crop,
		Size:        cfg.Size,
		FillRatio:   cfg.FillRatio,
		Workers:     cfg.Workers,
		Metrics:     metrics,
		Progress:    os.Stdout,
	}

	results := batch.Run(ctx, batchCfg, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	summary := batch.Summarize(results)
	fmt.Printf("Rendered: %d/%d\n", summary.Succeeded, summary.Total)

	if summary.Failed > 0 {
		fmt.Printf("\nFailed (%d):\n", summary.Failed)
		shown := 0
		for _, r := range results {
			if r.Success {
				continue
			}
			fmt.Printf("  %s: %s\n", r.Name, r.Error)
			if shown++; shown == 20 {
				break
			}
		}
	}

	// Write manifest
	if *manifest != "" {
		manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
		if err := batch.WriteManifest(manifestPath, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", manifestPath)
		}
	} else if summary.Succeeded == 1 {
		fmt.Printf("Wrote %s\n", results[0].Output)
	}

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
