package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCenterMapsToCenter(t *testing.T) {
	resolutions := []struct{ w, h int }{
		{1080, 1920},
		{540, 960},
		{720, 1280},
		{2160, 3840},
		{640, 480},
	}

	for _, res := range resolutions {
		tr := NewTransform(res.w, res.h, 1080, 1920)
		x, y := tr.Apply(540, 960)
		assert.InDelta(t, float64(res.w)/2, x, 1e-9, "%dx%d", res.w, res.h)
		assert.InDelta(t, float64(res.h)/2, y, 1e-9, "%dx%d", res.w, res.h)
	}
}

func TestTransformIsReversible(t *testing.T) {
	tr := NewTransform(720, 1280, 1080, 1920)

	points := [][2]float64{{0, 0}, {540, 960}, {1080, 1920}, {123.5, 777.25}}
	for _, p := range points {
		x, y := tr.Apply(p[0], p[1])
		bx, by := tr.Invert(x, y)
		assert.InDelta(t, p[0], bx, 1e-9)
		assert.InDelta(t, p[1], by, 1e-9)
	}
}

func TestIndependentAxisScaling(t *testing.T) {
	tr := NewTransform(2160, 960, 1080, 1920)
	assert.InDelta(t, 2.0, tr.SX, 1e-9)
	assert.InDelta(t, 0.5, tr.SY, 1e-9)

	x, y := tr.Apply(100, 100)
	assert.InDelta(t, 200.0, x, 1e-9)
	assert.InDelta(t, 50.0, y, 1e-9)
}
