package quickmath

import "math"

type AABB struct {
	Min, Max Vec2
}

// AABBFromPoints returns the smallest box containing every point. No points
// gives the zero box.
func AABBFromPoints(points ...Vec2) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
	}
	return box
}

func (a AABB) Intersect(b AABB) bool {
	return a.Min.X < b.Max.X && a.Max.X > b.Min.X &&
		a.Min.Y < b.Max.Y && a.Max.Y > b.Min.Y
}

func (a AABB) Contains(p Vec2) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y
}

func (a AABB) Union(b AABB) AABB {
	return AABBFromPoints(a.Min, a.Max, b.Min, b.Max)
}

func (a AABB) Expand(margin float64) AABB {
	m := Vec2{X: margin, Y: margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

func (a AABB) Size() Vec2 {
	return a.Max.Sub(a.Min)
}

func (a AABB) Center() Vec2 {
	return a.Min.Add(a.Max).Scale(0.5)
}
