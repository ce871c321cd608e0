package compositor

// Transform maps design-space coordinates onto the render surface with
// independent horizontal and vertical scale factors. The mapping is
// affine and reversible, so a point authored at the design-space center
// lands at the exact surface center at any output resolution.
type Transform struct {
	SX float64
	SY float64
}

// NewTransform builds the design-to-surface mapping
func NewTransform(surfaceW, surfaceH, designW, designH int) Transform {
	return Transform{
		SX: float64(surfaceW) / float64(designW),
		SY: float64(surfaceH) / float64(designH),
	}
}

// Apply maps a design-space point into surface space
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x * t.SX, y * t.SY
}

// Invert maps a surface point back into design space
func (t Transform) Invert(x, y float64) (float64, float64) {
	return x / t.SX, y / t.SY
}
