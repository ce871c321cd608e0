// Package compositor draws one composed frame per tick: the active video
// frame (or a black fill when none is active) with every visible text
// overlay mapped from design space onto the surface.
package compositor

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/keagan/reelcore/internal/config"
	"github.com/keagan/reelcore/internal/timeline"
)

// Compositor owns the render surface. It is commanded once per tick and
// never concurrently.
type Compositor struct {
	log      zerolog.Logger
	designW  int
	designH  int
	fontPath string
	padding  float64

	dc *gg.Context
	w  int
	h  int

	faces map[float64]font.Face
}

// New creates a compositor sized lazily on first compose
func New(logger zerolog.Logger, cfg *config.Config) *Compositor {
	return &Compositor{
		log:      logger.With().Str("component", "compositor").Logger(),
		designW:  cfg.Design.Width,
		designH:  cfg.Design.Height,
		fontPath: cfg.Text.FontPath,
		padding:  float64(cfg.Text.PaddingPx),
		faces:    make(map[float64]font.Face),
	}
}

// Surface returns the current surface dimensions
func (c *Compositor) Surface() (int, int) {
	return c.w, c.h
}

// Compose renders one frame. The surface is resized to (w, h) — the
// active video's native resolution — when it changed; with no active
// video the surface keeps the design-space dimensions so text still
// renders over a blank frame. Runs every tick regardless of transport
// state so scrubbing shows correct content immediately.
func (c *Compositor) Compose(frame image.Image, w, h int, texts []*timeline.Clip) image.Image {
	if w <= 0 || h <= 0 {
		w, h = c.designW, c.designH
	}
	if c.dc == nil || w != c.w || h != c.h {
		c.dc = gg.NewContext(w, h)
		c.w, c.h = w, h
		c.log.Debug().Int("width", w).Int("height", h).Msg("surface resized")
	}

	c.dc.SetRGB(0, 0, 0)
	c.dc.Clear()

	if frame != nil {
		c.drawFrame(frame)
	}

	tr := NewTransform(c.w, c.h, c.designW, c.designH)
	for _, clip := range texts {
		if clip.Text == nil || clip.Text.Content == "" {
			continue
		}
		c.drawText(clip.Text, tr)
	}

	return c.dc.Image()
}

// drawFrame paints the video frame, scaling when the decoded size does
// not match the surface.
func (c *Compositor) drawFrame(frame image.Image) {
	b := frame.Bounds()
	if b.Dx() == c.w && b.Dy() == c.h {
		c.dc.DrawImage(frame, 0, 0)
		return
	}
	sx := float64(c.w) / float64(b.Dx())
	sy := float64(c.h) / float64(b.Dy())
	c.dc.Push()
	c.dc.Scale(sx, sy)
	c.dc.DrawImage(frame, 0, 0)
	c.dc.Pop()
}

func (c *Compositor) drawText(t *timeline.TextAttrs, tr Transform) {
	x, y := tr.Apply(t.X, t.Y)
	size := t.Size * tr.SY
	if size <= 0 {
		size = 24 * tr.SY
	}

	c.dc.SetFontFace(c.face(size))
	fill := parseColor(t.Color)

	tw, th := c.dc.MeasureString(t.Content)

	switch t.Style {
	case timeline.StyleSolidBox:
		c.dc.SetColor(color.RGBA{0, 0, 0, 255})
		c.dc.DrawRectangle(x-tw/2-c.padding, y-th/2-c.padding, tw+2*c.padding, th+2*c.padding)
		c.dc.Fill()
	case timeline.StyleRoundedBox:
		c.dc.SetColor(color.RGBA{0, 0, 0, 255})
		c.dc.DrawRoundedRectangle(x-tw/2-c.padding, y-th/2-c.padding, tw+2*c.padding, th+2*c.padding, c.padding)
		c.dc.Fill()
	case timeline.StyleTranslucentBox:
		c.dc.SetColor(color.RGBA{0, 0, 0, 128})
		c.dc.DrawRectangle(x-tw/2-c.padding, y-th/2-c.padding, tw+2*c.padding, th+2*c.padding)
		c.dc.Fill()
	case timeline.StyleOutline:
		c.dc.SetColor(color.RGBA{0, 0, 0, 255})
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				c.dc.DrawStringAnchored(t.Content, x+float64(dx)*2, y+float64(dy)*2, 0.5, 0.5)
			}
		}
	}

	c.dc.SetColor(fill)
	c.dc.DrawStringAnchored(t.Content, x, y, 0.5, 0.5)
}

// face returns a cached font face for a pixel size, falling back to the
// built-in bitmap face when no TTF is configured or loading fails.
func (c *Compositor) face(size float64) font.Face {
	if f, ok := c.faces[size]; ok {
		return f
	}

	var f font.Face = basicfont.Face7x13
	if c.fontPath != "" {
		if loaded, err := gg.LoadFontFace(c.fontPath, size); err == nil {
			f = loaded
		} else {
			c.log.Warn().Err(err).Str("font", c.fontPath).Msg("font load failed, using builtin face")
		}
	}

	c.faces[size] = f
	return f
}

// parseColor understands #RGB, #RRGGBB and #RRGGBBAA; anything else
// renders white.
func parseColor(s string) color.Color {
	white := color.RGBA{255, 255, 255, 255}
	if len(s) == 0 || s[0] != '#' {
		return white
	}
	hex := s[1:]

	var r, g, b, a uint8 = 0, 0, 0, 255
	switch len(hex) {
	case 3:
		r = nibble(hex[0]) * 17
		g = nibble(hex[1]) * 17
		b = nibble(hex[2]) * 17
	case 6:
		r = nibble(hex[0])<<4 | nibble(hex[1])
		g = nibble(hex[2])<<4 | nibble(hex[3])
		b = nibble(hex[4])<<4 | nibble(hex[5])
	case 8:
		r = nibble(hex[0])<<4 | nibble(hex[1])
		g = nibble(hex[2])<<4 | nibble(hex[3])
		b = nibble(hex[4])<<4 | nibble(hex[5])
		a = nibble(hex[6])<<4 | nibble(hex[7])
	default:
		return white
	}
	return color.RGBA{r, g, b, a}
}

func nibble(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
