package shading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mc-skin-renderer/internal/mathutil"
)

func TestShade(t *testing.T) {
	tests := []struct {
		name   string
		normal mathutil.Vec3
		sun    Sun
		want   float64
	}{
		{"facing light", mathutil.Vec3{0, 0, -1}, Sun{mathutil.Vec3{0, 0, 1}, 1, 0}, 1},
		{"facing away floors at ambient", mathutil.Vec3{0, 0, 1}, Sun{mathutil.Vec3{0, 0, 1}, 1, 0.3}, 0.3},
		{"grazing", mathutil.Vec3{1, 0, 0}, Sun{mathutil.Vec3{0, 0, 1}, 1, 0.2}, 0.2},
		{"intensity capped", mathutil.Vec3{0, 0, -1}, Sun{mathutil.Vec3{0, 0, 2}, 3, 0}, 1},
		{"half", mathutil.Vec3{0, 0, -1}, Sun{mathutil.Vec3{0, 0, 1}, 0.5, 0.1}, 0.5},
		{"flat", mathutil.Vec3{0, 1, 0}, Flat(), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.sun.Shade(tt.normal), 1e-9)
		})
	}
}

func TestShadeFunctionMatchesSun(t *testing.T) {
	n := mathutil.Vec3{0, 0.6, -0.8}
	dir := mathutil.Vec3{0, -1, 5}
	assert.InDelta(t, FullBody().Shade(n), Shade(n, dir, 1, 0.7), 1e-12)
}

func TestQuantizeError(t *testing.T) {
	for i := 0; i <= 10000; i++ {
		f := float64(i) / 10000
		got := Dequantize(Quantize(f))
		assert.LessOrEqual(t, abs(got-f), 0.5/255+1e-12, "f=%v", f)
	}
	assert.Equal(t, uint8(255), Quantize(1))
	assert.Equal(t, uint8(255), Quantize(7))
	assert.Equal(t, uint8(0), Quantize(-1))
	assert.Equal(t, 1.0, Dequantize(255))
	assert.Equal(t, 0.0, Dequantize(0))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
