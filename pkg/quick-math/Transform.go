package quickmath

import "math"

// Transform places something in world space. Rotation is in radians,
// counter-clockwise.
type Transform struct {
	Position Vec2
	Rotation float64
}

func NewTransform(x, y, rotation float64) Transform {
	return Transform{Position: Vec2{X: x, Y: y}, Rotation: rotation}
}

// Apply takes a local point into world space: rotate, then translate.
func (t Transform) Apply(v Vec2) Vec2 {
	return v.Rotate(t.Rotation).Add(t.Position)
}

func (t Transform) Translate(d Vec2) Transform {
	t.Position = t.Position.Add(d)
	return t
}

func (t Transform) Rotate(angle float64) Transform {
	t.Rotation += angle
	return t
}

// DegToRad converts human facing angles. Everything past config and scene
// loading works in radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
