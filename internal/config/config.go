package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"mc-skin-renderer/internal/request"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir" yaml:"base_dir"`
	PartsDir   string `json:"parts_dir" yaml:"parts_dir"`
	OutputDir  string `json:"output_dir" yaml:"output_dir"`
	Background string `json:"background" yaml:"background"` // optional image placed under every render

	// Render defaults, overridable per job
	Mode    string   `json:"mode" yaml:"mode"`
	Model   string   `json:"model" yaml:"model"`
	Exclude []string `json:"exclude" yaml:"exclude"` // features removed from the default set
	Format  string   `json:"format" yaml:"format"`   // png or webp

	// Output shaping
	Supersample int     `json:"supersample" yaml:"supersample"` // part maps are this many times the output size
	Scale       int     `json:"scale" yaml:"scale"`             // nearest-neighbour upscale of the result
	Crop        bool    `json:"crop" yaml:"crop"`
	Size        int     `json:"size" yaml:"size"` // square output canvas, 0 keeps the render size
	FillRatio   float64 `json:"fill_ratio" yaml:"fill_ratio"`

	// Execution
	Workers        int    `json:"workers" yaml:"workers"`
	ComposeWorkers int    `json:"compose_workers" yaml:"compose_workers"`
	MetricsAddr    string `json:"metrics_addr" yaml:"metrics_addr"`
}

// Load reads a JSON or YAML config file, chosen by extension.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BaseDir     string
	PartsDir    string
	OutputDir   string
	Mode        string
	Model       string
	Exclude     string // comma separated
	Format      string
	Supersample int
	Scale       int
	Workers     int
	MetricsAddr string
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	if flags.PartsDir != "" {
		c.PartsDir = flags.PartsDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Mode != "" {
		c.Mode = flags.Mode
	}
	if flags.Model != "" {
		c.Model = flags.Model
	}
	if flags.Exclude != "" {
		c.Exclude = strings.Split(flags.Exclude, ",")
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.Scale > 0 {
		c.Scale = flags.Scale
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.MetricsAddr != "" {
		c.MetricsAddr = flags.MetricsAddr
	}

	// Auto-detect base dir if still empty
	if c.BaseDir == "" {
		c.BaseDir = detectBaseDir()
	}

	c.PartsDir = resolvePath(c.BaseDir, c.PartsDir, "parts")
	c.OutputDir = resolvePath(c.BaseDir, c.OutputDir, "renders")
	if c.Background != "" {
		c.Background = resolvePath(c.BaseDir, c.Background, "")
	}

	// Defaults for render settings
	if c.Mode == "" {
		c.Mode = request.FullBody.String()
	}
	if c.Model == "" {
		c.Model = request.Steve.String()
	}
	if c.Format == "" {
		c.Format = "png"
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.Scale <= 0 {
		c.Scale = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.FillRatio <= 0 || c.FillRatio > 1 {
		c.FillRatio = 1
	}
}

// resolvePath makes p absolute against base, using def when p is empty.
func resolvePath(base, p, def string) string {
	if p == "" {
		p = def
	}
	if filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// Request builds the default render request described by the config.
func (c *Config) Request() (request.Request, error) {
	mode, err := request.ParseMode(c.Mode)
	if err != nil {
		return request.Request{}, fmt.Errorf("config: %w", err)
	}
	model, err := request.ParseModel(c.Model)
	if err != nil {
		return request.Request{}, fmt.Errorf("config: %w", err)
	}
	excluded, err := request.ParseFeatures(strings.Join(c.Exclude, ","))
	if err != nil {
		return request.Request{}, fmt.Errorf("config: %w", err)
	}
	return request.New(mode, model, excluded), nil
}

func detectBaseDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if _, err := os.Stat(filepath.Join(base, "parts")); err == nil {
				return base
			}
		}
	}

	// Try current working directory
	cwd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(cwd, "parts")); err == nil {
		return cwd
	}

	return ""
}
