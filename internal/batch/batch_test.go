package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mc-skin-renderer/internal/codec"
	"mc-skin-renderer/internal/imageio"
	"mc-skin-renderer/internal/parts"
	"mc-skin-renderer/internal/render"
	"mc-skin-renderer/internal/request"
)

type mapResolver map[string]*codec.Buffer

func (m mapResolver) Resolve(_ context.Context, k parts.Key) (*codec.Buffer, error) {
	if buf, ok := m[k.View+"/"+k.Name]; ok {
		return buf, nil
	}
	return nil, fmt.Errorf("%w: %s", parts.ErrPartNotFound, k)
}

// headMaps covers a 4x4 canvas: the head everywhere, the hat only at (0, 0).
func headMaps() mapResolver {
	head := codec.NewBuffer(4, 4)
	for i := range head.Words {
		head.Words[i] = codec.Encode(8, 8, 255, 10)
	}
	hat := codec.NewBuffer(4, 4)
	hat.Set(0, 0, codec.Encode(40, 8, 255, 5))
	return mapResolver{"front/Head": head, "front/Head Layer": hat}
}

func writeSkin(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	img.SetNRGBA(8, 8, color.NRGBA{R: 220, A: 255})
	path := filepath.Join(dir, "steve.png")
	require.NoError(t, imageio.Save(path, img))
	return path
}

func testConfig(t *testing.T) Config {
	return Config{
		Renderer:  &render.Renderer{Parts: headMaps(), Workers: 1},
		Defaults:  request.New(request.Head, request.Steve),
		OutputDir: t.TempDir(),
		Workers:   2,
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	skinPath := writeSkin(t, dir)

	cfg := testConfig(t)
	reg := prometheus.NewRegistry()
	cfg.Metrics = NewMetrics(reg)
	var progress bytes.Buffer
	cfg.Progress = &progress

	jobs := []Job{
		{Skin: skinPath},
		{Name: "missing", Skin: filepath.Join(dir, "nope.png")},
		{Name: "bad-mode", Skin: skinPath, Mode: "sideways"},
		{Name: "webp", Skin: skinPath, Output: "nested/out.webp"},
	}
	results := Run(context.Background(), cfg, jobs)
	require.Len(t, results, 4)

	ok := results[0]
	require.True(t, ok.Success, ok.Error)
	assert.Equal(t, "steve", ok.Name)
	assert.Equal(t, "head", ok.Mode)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "steve_head.png"), ok.Output)

	img, err := imageio.Load(ok.Output)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
	// Transparent hat texel is discarded, so the head shows through.
	assert.Equal(t, color.NRGBA{R: 220, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 220, A: 255}, img.NRGBAAt(3, 3))

	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, "sideways")

	require.True(t, results[3].Success, results[3].Error)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "nested", "out.webp"))

	assert.Equal(t, 2.0, testutil.ToFloat64(cfg.Metrics.rendered.WithLabelValues("head")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cfg.Metrics.failed.WithLabelValues("texture")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cfg.Metrics.failed.WithLabelValues("request")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var observed uint64
	for _, mf := range mfs {
		if mf.GetName() == "skinrender_composite_seconds" {
			observed = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(2), observed)
}

func TestRunMissingPart(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Metrics = NewMetrics(prometheus.NewRegistry())

	results := Run(context.Background(), cfg, []Job{{Skin: writeSkin(t, dir), Mode: "fullbody"}})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "required part missing")
	assert.Equal(t, 1.0, testutil.ToFloat64(cfg.Metrics.failed.WithLabelValues("render")))
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	skinPath := writeSkin(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(t)
	results := Run(ctx, cfg, []Job{{Skin: skinPath}, {Skin: skinPath}, {Skin: skinPath}})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Equal(t, context.Canceled.Error(), r.Error)
	}
	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFinish(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			img.SetNRGBA(x, y, color.NRGBA{G: 200, A: 255})
		}
	}

	out := finish(img, Config{Supersample: 2})
	assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())

	out = finish(img, Config{Crop: true, Scale: 3})
	assert.Equal(t, image.Rect(0, 0, 12, 12), out.Bounds())
	assert.Equal(t, color.NRGBA{G: 200, A: 255}, out.NRGBAAt(0, 0))

	out = finish(img, Config{Crop: true, Size: 16})
	assert.Equal(t, image.Rect(0, 0, 16, 16), out.Bounds())
	assert.Equal(t, color.NRGBA{G: 200, A: 255}, out.NRGBAAt(8, 8))

	assert.Same(t, img, finish(img, Config{}))
}

func TestJobRequest(t *testing.T) {
	def := request.New(request.FullBody, request.Steve)

	req, err := Job{}.Request(def)
	require.NoError(t, err)
	assert.Equal(t, def, req)

	req, err = Job{
		Mode:    "bust",
		Model:   "slim",
		Exclude: []string{"cape"},
		Armor:   request.ArmorSlots{Helmet: true},
		Back:    true,
	}.Request(def)
	require.NoError(t, err)
	assert.Equal(t, request.BodyBust, req.Mode)
	assert.Equal(t, request.Alex, req.Model)
	assert.False(t, req.Features.Has(request.Cape))
	assert.True(t, req.Features.Has(request.HatLayer))
	assert.True(t, req.Armor.Helmet)
	assert.True(t, req.Back)

	req, err = Job{Features: "shading"}.Request(def)
	require.NoError(t, err)
	assert.Equal(t, request.Shading, req.Features)

	for _, j := range []Job{{Mode: "x"}, {Model: "x"}, {Features: "x"}, {Exclude: []string{"x"}}} {
		_, err := j.Request(def)
		assert.ErrorIs(t, err, request.ErrInvalid)
	}
}

func TestLoadJobs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- skin: skins/a.png
  cape: /abs/cape.png
  mode: head
- name: b
  skin: b.png
  armor:
    helmet: true
  ears:
    mode: above
    anchor: front
`), 0o644))

	jobs, err := LoadJobs(path)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, filepath.Join(dir, "skins", "a.png"), jobs[0].Skin)
	assert.Equal(t, "/abs/cape.png", jobs[0].Cape)
	assert.Equal(t, "a", jobs[0].displayName())
	assert.Equal(t, "b", jobs[1].displayName())
	assert.True(t, jobs[1].Armor.Helmet)
	require.NotNil(t, jobs[1].Ears)
	assert.Equal(t, request.EarsAbove, jobs[1].Ears.Mode)
	assert.Equal(t, request.AnchorFront, jobs[1].Ears.Anchor)

	jsonPath := filepath.Join(dir, "jobs.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"mode": "head"}]`), 0o644))
	_, err = LoadJobs(jsonPath)
	assert.ErrorContains(t, err, "no skin")
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	results := []Result{
		{Name: "a", Output: filepath.Join(dir, "a_head.png"), Success: true},
		{Name: "b", Error: "boom"},
	}
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, WriteManifest(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Summary
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, "a_head.png", got.Results[0].Output)
	assert.Equal(t, "boom", got.Results[1].Error)
	// the caller's slice is untouched
	assert.Equal(t, filepath.Join(dir, "a_head.png"), results[0].Output)
}
