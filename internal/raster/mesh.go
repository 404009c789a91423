package raster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"mc-skin-renderer/internal/codec"
	"mc-skin-renderer/internal/mathutil"
	"mc-skin-renderer/internal/shading"
)

var ErrInvalidMesh = errors.New("raster: invalid mesh")

// Triangle is three vertices in winding-agnostic order.
type Triangle [3]Vertex

// Mesh is one part's geometry ready to be baked into a codeword buffer.
// Without a Camera the vertices are already projected; with one they are
// world-space points, with X, Y, Depth holding x, y, z.
type Mesh struct {
	Name      string      `json:"name"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Depth     DepthRange  `json:"depth"`
	Sun       shading.Sun `json:"sun"`
	Camera    *Camera     `json:"camera,omitempty"`
	Triangles []Triangle  `json:"triangles"`
}

// AddQuad appends the quad p0-p1-p2-p3 as two triangles.
func (m *Mesh) AddQuad(p0, p1, p2, p3 Vertex) {
	m.Triangles = append(m.Triangles, Triangle{p0, p1, p2}, Triangle{p0, p2, p3})
}

func (m *Mesh) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidMesh, m.Width, m.Height)
	}
	if m.Depth.Far <= m.Depth.Near {
		return fmt.Errorf("%w: depth range [%g, %g]", ErrInvalidMesh, m.Depth.Near, m.Depth.Far)
	}
	if m.Camera != nil && m.Camera.FOV <= 0 && m.Camera.OrthoHeight <= 0 {
		return fmt.Errorf("%w: camera needs fov or ortho_height", ErrInvalidMesh)
	}
	return nil
}

// project runs the camera over a world-space triangle.
func (m *Mesh) project(cam *Camera, view mathutil.Mat4, t Triangle) (Triangle, bool) {
	for i := range t {
		x, y, d, ok := cam.Project(view, mathutil.Vec3{t[i].X, t[i].Y, t[i].Depth}, m.Width, m.Height)
		if !ok {
			return t, false
		}
		t[i].X, t[i].Y, t[i].Depth = x, y, d
	}
	return t, true
}

// Rasterize draws every triangle into a new frame buffer.
func (m *Mesh) Rasterize(ctx context.Context) (*FrameBuffer, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	fb := NewFrameBuffer(m.Width, m.Height)
	var view mathutil.Mat4
	if m.Camera != nil {
		view = m.Camera.View()
	}
	for i, t := range m.Triangles {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if m.Camera != nil {
			var ok bool
			if t, ok = m.project(m.Camera, view, t); !ok {
				continue
			}
		}
		RasterizeTriangle(fb, t[0], t[1], t[2], m.Sun, m.Depth)
	}
	return fb, nil
}

// Buffer bakes the mesh. It makes Mesh a layer.Source.
func (m *Mesh) Buffer(ctx context.Context) (*codec.Buffer, error) {
	fb, err := m.Rasterize(ctx)
	if err != nil {
		return nil, fmt.Errorf("raster: mesh %q: %w", m.Name, err)
	}
	return fb.Buffer(), nil
}

// DecodeMesh reads a JSON mesh.
func DecodeMesh(r io.Reader) (*Mesh, error) {
	var m Mesh
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("raster: parse mesh: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadMesh reads a JSON mesh file.
func LoadMesh(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: open mesh: %w", err)
	}
	defer f.Close()
	return DecodeMesh(f)
}
