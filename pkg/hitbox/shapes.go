package hitbox

import (
	"fmt"
	"math"

	quickmath "sat-collisions.theprimeagen.com/pkg/quick-math"
	"sat-collisions.theprimeagen.com/pkg/sat"
)

// counter-clockwise, centered on the origin
var unitSquare = []quickmath.Vec2{
	{X: -0.5, Y: -0.5},
	{X: 0.5, Y: -0.5},
	{X: 0.5, Y: 0.5},
	{X: -0.5, Y: 0.5},
}

func UnitSquare() []quickmath.Vec2 {
	out := make([]quickmath.Vec2, len(unitSquare))
	copy(out, unitSquare)
	return out
}

// RegularPolygon returns n counter-clockwise vertices on a circle of diameter
// 1 around the origin. The first vertex sits straight up.
func RegularPolygon(n int) []quickmath.Vec2 {
	if n < 3 {
		return nil
	}

	out := make([]quickmath.Vec2, n)
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		out[i] = quickmath.Vec2{X: 0, Y: 0.5}.Rotate(step * float64(i))
	}
	return out
}

func signedArea(verts []quickmath.Vec2) float64 {
	area := 0.0
	for i := range verts {
		area += verts[i].Cross(verts[(i+1)%len(verts)])
	}
	return area / 2
}

// normalizePolygon copies verts into counter-clockwise order after checking
// that they describe a convex polygon with no zero length edges.
func normalizePolygon(verts []quickmath.Vec2) ([]quickmath.Vec2, error) {
	if len(verts) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 vertices, got %d: %w", len(verts), ErrInvalidGeometry)
	}

	out := make([]quickmath.Vec2, len(verts))
	copy(out, verts)

	for i, v := range out {
		if !v.IsFinite() {
			return nil, fmt.Errorf("vertex %d is %s: %w", i, v, ErrInvalidGeometry)
		}
	}

	area := signedArea(out)
	if area == 0 {
		return nil, fmt.Errorf("polygon has no area: %w", ErrInvalidGeometry)
	}
	if area < 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	es := sat.Edges(out)
	turning := 0.0
	for i, e := range es {
		if e.LenSq() == 0 {
			return nil, fmt.Errorf("edge %d has zero length: %w", i, ErrInvalidGeometry)
		}
		next := es[(i+1)%len(es)]
		if e.Cross(next) < 0 {
			return nil, fmt.Errorf("polygon is not convex at vertex %d: %w", (i+1)%len(out), ErrInvalidGeometry)
		}
		turning += math.Atan2(e.Cross(next), e.Dot(next))
	}

	// a star turns left everywhere but goes around more than once
	if math.Abs(turning-2*math.Pi) > 1e-6 {
		return nil, fmt.Errorf("polygon winds %.2f times: %w", turning/(2*math.Pi), ErrInvalidGeometry)
	}

	return out, nil
}
