package sat

import (
	"fmt"
	"math"

	"sat-collisions.theprimeagen.com/pkg/assert"
	quickmath "sat-collisions.theprimeagen.com/pkg/quick-math"
)

type Vec2 = quickmath.Vec2

// Shape is anything that can hand out an ordered, convex, world space vertex
// list. hitbox.ConvexHitbox is the one that matters.
type Shape interface {
	Vertices() []Vec2
}

// EdgeShape is a Shape that knows its own edges. Edges taken from the shape
// do not lose precision the way differences of translated vertices can.
type EdgeShape interface {
	Shape
	Edges() []Vec2
}

func shapeEdges(s Shape, verts []Vec2) []Vec2 {
	if es, ok := s.(EdgeShape); ok {
		return es.Edges()
	}
	return Edges(verts)
}

// Edges returns v[i+1]-v[i] for every vertex, the last edge wraps back to
// the first vertex.
func Edges(verts []Vec2) []Vec2 {
	out := make([]Vec2, len(verts))
	for i := range verts {
		out[i] = verts[(i+1)%len(verts)].Sub(verts[i])
	}
	return out
}

// Axes are the edge normals of both polygons. Leaving out either set gives
// wrong answers as soon as the two shapes are not aligned.
func Axes(a, b []Vec2) []Vec2 {
	return edgeAxes(Edges(a), Edges(b))
}

func edgeAxes(a, b []Vec2) []Vec2 {
	out := make([]Vec2, 0, len(a)+len(b))
	for _, e := range a {
		out = append(out, e.Perp())
	}
	for _, e := range b {
		out = append(out, e.Perp())
	}
	return out
}

func ProjectOnto(verts []Vec2, axis Vec2) (float64, float64, error) {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range verts {
		p, err := quickmath.Project(v, axis)
		if err != nil {
			return 0, 0, err
		}
		min = math.Min(min, p)
		max = math.Max(max, p)
	}
	return min, max, nil
}

// separates reports a gap between the projections of a and b on axis.
// Touching projections are not a gap.
func separates(a, b []Vec2, axis Vec2) (bool, error) {
	minA, maxA, err := ProjectOnto(a, axis)
	if err != nil {
		return false, err
	}
	minB, maxB, err := ProjectOnto(b, axis)
	if err != nil {
		return false, err
	}
	return maxA < minB || maxB < minA, nil
}

// SeparatingAxis returns the first axis that separates a and b. ok is false
// when the shapes collide.
func SeparatingAxis(a, b Shape) (Vec2, bool, error) {
	va := a.Vertices()
	vb := b.Vertices()

	for _, axis := range edgeAxes(shapeEdges(a, va), shapeEdges(b, vb)) {
		gap, err := separates(va, vb, axis)
		if err != nil {
			return Vec2{}, false, fmt.Errorf("axis %s: %w", axis, err)
		}
		if gap {
			return axis, true, nil
		}
	}
	return Vec2{}, false, nil
}

// Collides runs the separating axis test. Shapes that only touch collide.
func Collides(a, b Shape) (bool, error) {
	_, separated, err := SeparatingAxis(a, b)
	if err != nil {
		return false, err
	}
	return !separated, nil
}

// Overlaps is Collides for shapes that were validated when they were built.
// A degenerate axis here means a zero sized hitbox got past construction.
func Overlaps(a, b Shape) bool {
	colliding, err := Collides(a, b)
	assert.NoError(err, "sat test on a degenerate shape", "a", dump(a), "b", dump(b))
	return colliding
}

func dump(s Shape) string {
	if d, ok := s.(assert.AssertData); ok {
		return d.Dump()
	}
	return fmt.Sprintf("%v", s.Vertices())
}
