package compositor

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keagan/reelcore/internal/config"
	"github.com/keagan/reelcore/internal/logging"
	"github.com/keagan/reelcore/internal/timeline"
)

func newTestCompositor(t *testing.T) *Compositor {
	t.Helper()
	return New(logging.Discard(), config.Default())
}

func isBlack(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0 && g == 0 && b == 0
}

// anyLitPixel scans a region for any pixel that is not pure black
func anyLitPixel(img image.Image, x0, y0, x1, y1 int) bool {
	for x := x0; x < x1; x++ {
		for y := y0; y < y1; y++ {
			if !isBlack(img.At(x, y)) {
				return true
			}
		}
	}
	return false
}

func textClip(content string, style timeline.TextStyle) *timeline.Clip {
	return &timeline.Clip{
		ID:    "t1",
		Kind:  timeline.KindText,
		Start: 0,
		End:   2 * time.Second,
		Text: &timeline.TextAttrs{
			Content: content,
			X:       540,
			Y:       960,
			Size:    48,
			Color:   "#FFFFFF",
			Style:   style,
		},
	}
}

func TestComposeNoVideoIsBlack(t *testing.T) {
	c := newTestCompositor(t)

	img := c.Compose(nil, 0, 0, nil)
	require.NotNil(t, img)

	w, h := c.Surface()
	assert.Equal(t, 1080, w, "blank frame keeps design dimensions")
	assert.Equal(t, 1920, h)
	assert.False(t, anyLitPixel(img, 0, 0, 64, 64))
}

func TestComposeResizesToVideoResolution(t *testing.T) {
	c := newTestCompositor(t)

	c.Compose(nil, 640, 480, nil)
	w, h := c.Surface()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)

	// Unchanged resolution keeps the surface.
	c.Compose(nil, 640, 480, nil)
	w, h = c.Surface()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestComposeDrawsVideoFrame(t *testing.T) {
	c := newTestCompositor(t)

	frame := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for i := range frame.Pix {
		frame.Pix[i] = 0xff // solid white
	}

	img := c.Compose(frame, 320, 240, nil)
	assert.True(t, anyLitPixel(img, 0, 0, 10, 10))
}

func TestTextOverlayRenders(t *testing.T) {
	styles := []timeline.TextStyle{
		timeline.StyleOutline,
		timeline.StyleSolidBox,
		timeline.StyleRoundedBox,
		timeline.StyleTranslucentBox,
	}

	for _, style := range styles {
		t.Run(string(style), func(t *testing.T) {
			c := newTestCompositor(t)
			img := c.Compose(nil, 0, 0, []*timeline.Clip{textClip("Hi", style)})

			// Something must be drawn around the design-space center.
			assert.True(t, anyLitPixel(img, 1080/2-60, 1920/2-40, 1080/2+60, 1920/2+40),
				"style %s drew nothing", style)
		})
	}
}

func TestEmptyTextSkipped(t *testing.T) {
	c := newTestCompositor(t)
	img := c.Compose(nil, 0, 0, []*timeline.Clip{textClip("", timeline.StyleSolidBox)})

	assert.False(t, anyLitPixel(img, 1080/2-80, 1920/2-60, 1080/2+80, 1920/2+60))
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, parseColor("#FFFFFF"))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, parseColor("#f00"))
	assert.Equal(t, color.RGBA{0, 255, 0, 128}, parseColor("#00FF0080"))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, parseColor("not-a-color"))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, parseColor(""))
}
