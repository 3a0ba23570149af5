package quickmath_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	quickmath "sat-collisions.theprimeagen.com/pkg/quick-math"
)

type Vec2 = quickmath.Vec2
type AABB = quickmath.AABB

func TestAABBIntersect(t *testing.T) {
	t.Run("Basic intersection", func(t *testing.T) {
		a := AABB{Min: Vec2{X: 0, Y: 0}, Max: Vec2{X: 5, Y: 5}}
		b := AABB{Min: Vec2{X: 3, Y: 3}, Max: Vec2{X: 7, Y: 7}}
		require.True(t, a.Intersect(b), "Expected AABBs to intersect")
		require.True(t, b.Intersect(a), "Expected AABBs to intersect")
	})

	t.Run("One inside the other", func(t *testing.T) {
		a := AABB{Min: Vec2{X: 0, Y: 0}, Max: Vec2{X: 10, Y: 10}}
		b := AABB{Min: Vec2{X: 3, Y: 3}, Max: Vec2{X: 7, Y: 7}}
		require.True(t, a.Intersect(b), "Expected AABBs to intersect")
		require.True(t, b.Intersect(a), "Expected AABBs to intersect")
	})

	t.Run("No intersection - completely separate UD", func(t *testing.T) {
		a := AABB{Min: Vec2{X: 0, Y: 0}, Max: Vec2{X: 5, Y: 5}}
		b := AABB{Min: Vec2{X: 0, Y: 6}, Max: Vec2{X: 5, Y: 10}}
		require.False(t, a.Intersect(b), "Expected AABBs to not intersect")
		require.False(t, b.Intersect(a), "Expected AABBs to not intersect")
	})

	t.Run("Touching corners - no intersection", func(t *testing.T) {
		a := AABB{Min: Vec2{X: 0, Y: 0}, Max: Vec2{X: 5, Y: 5}}
		b := AABB{Min: Vec2{X: 5, Y: 5}, Max: Vec2{X: 10, Y: 10}}
		require.False(t, a.Intersect(b), "Expected AABBs to not intersect")
		require.False(t, b.Intersect(a), "Expected AABBs to not intersect")
	})
}

func TestAABBFromPoints(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		require.Equal(t, AABB{}, quickmath.AABBFromPoints())
	})

	t.Run("single point", func(t *testing.T) {
		box := quickmath.AABBFromPoints(Vec2{X: 3, Y: -2})
		require.Equal(t, Vec2{X: 3, Y: -2}, box.Min)
		require.Equal(t, Vec2{X: 3, Y: -2}, box.Max)
	})

	t.Run("rotated square", func(t *testing.T) {
		h := math.Sqrt2 / 2
		box := quickmath.AABBFromPoints(
			Vec2{X: 0, Y: -h},
			Vec2{X: h, Y: 0},
			Vec2{X: 0, Y: h},
			Vec2{X: -h, Y: 0},
		)
		require.Equal(t, AABB{Min: Vec2{X: -h, Y: -h}, Max: Vec2{X: h, Y: h}}, box)
		require.Equal(t, Vec2{X: 0, Y: 0}, box.Center())
	})
}

func TestAABBHelpers(t *testing.T) {
	box := AABB{Min: Vec2{X: 0, Y: 0}, Max: Vec2{X: 10, Y: 4}}

	require.True(t, box.Contains(Vec2{X: 10, Y: 4}), "edges are inside")
	require.False(t, box.Contains(Vec2{X: 10.1, Y: 4}))
	require.Equal(t, Vec2{X: 10, Y: 4}, box.Size())
	require.Equal(t, AABB{Min: Vec2{X: -1, Y: -1}, Max: Vec2{X: 11, Y: 5}}, box.Expand(1))

	other := AABB{Min: Vec2{X: 20, Y: -5}, Max: Vec2{X: 25, Y: 0}}
	require.Equal(t, AABB{Min: Vec2{X: 0, Y: -5}, Max: Vec2{X: 25, Y: 4}}, box.Union(other))
}
