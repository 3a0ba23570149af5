package sat_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/solarlune/resolv"
	"github.com/stretchr/testify/require"
	"sat-collisions.theprimeagen.com/pkg/hitbox"
	quickmath "sat-collisions.theprimeagen.com/pkg/quick-math"
	"sat-collisions.theprimeagen.com/pkg/sat"
)

type Vec2 = quickmath.Vec2

func rect(t testing.TB, x, y, deg, w, h float64) *hitbox.ConvexHitbox {
	t.Helper()
	e, err := hitbox.NewRectEntity("rect", quickmath.NewTransform(x, y, quickmath.DegToRad(deg)), w, h)
	require.NoError(t, err)
	return e.Hitbox()
}

func randomHitbox(t testing.TB, r *rand.Rand) *hitbox.ConvexHitbox {
	t.Helper()
	x := r.Float64()*400 - 200
	y := r.Float64()*400 - 200
	w := 10 + r.Float64()*150
	h := 10 + r.Float64()*150
	deg := r.Float64() * 360

	if r.Intn(3) == 0 {
		e, err := hitbox.NewPolygonEntity("poly", quickmath.NewTransform(x, y, quickmath.DegToRad(deg)), w, h, hitbox.RegularPolygon(3+r.Intn(6)))
		require.NoError(t, err)
		return e.Hitbox()
	}
	return rect(t, x, y, deg, w, h)
}

// margin is the smallest overlap depth when the shapes collide, or the
// widest gap when they do not. Pairs that sit on the boundary can flip under
// floating point noise and are left out of the invariance tests.
func margin(t *testing.T, a, b sat.Shape) float64 {
	va, vb := a.Vertices(), b.Vertices()
	depth := math.Inf(1)
	gap := 0.0
	for _, axis := range sat.Axes(va, vb) {
		minA, maxA, err := sat.ProjectOnto(va, axis)
		require.NoError(t, err)
		minB, maxB, err := sat.ProjectOnto(vb, axis)
		require.NoError(t, err)

		overlap := math.Min(maxA, maxB) - math.Max(minA, minB)
		if overlap < 0 {
			gap = math.Max(gap, -overlap)
		}
		depth = math.Min(depth, overlap)
	}
	if gap > 0 {
		return gap
	}
	return depth
}

func TestEdges(t *testing.T) {
	verts := []Vec2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 3}}
	require.Equal(t, []Vec2{{X: 2, Y: 0}, {X: -2, Y: 3}, {X: 0, Y: -3}}, sat.Edges(verts))
}

func TestAxesUseBothShapes(t *testing.T) {
	a := rect(t, 0, 0, 0, 10, 10).Vertices()
	b := hitbox.RegularPolygon(5)
	axes := sat.Axes(a, b)
	require.Len(t, axes, 9)

	for i, e := range sat.Edges(b) {
		require.Equal(t, e.Perp(), axes[4+i])
		require.Equal(t, 0.0, e.Dot(axes[4+i]))
	}
}

func TestSeparationByDistance(t *testing.T) {
	// (0, 0, 100, 100) and (200, 0, 100, 100) as top left boxes
	a := rect(t, 50, 50, 0, 100, 100)
	b := rect(t, 250, 50, 0, 100, 100)
	require.False(t, sat.Overlaps(a, b))
	require.False(t, sat.Overlaps(b, a))

	axis, ok, err := sat.SeparatingAxis(a, b)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0.0, axis.Y, "only the x axis separates, got %s", axis)
}

func TestRotatedOverlap(t *testing.T) {
	a := rect(t, 0, 0, 0, 100, 100)
	b := rect(t, 0, 0, 45, 100, 100)
	require.True(t, sat.Overlaps(a, b))
	require.True(t, sat.Overlaps(b, a))
}

func TestEdgeTouchingCollides(t *testing.T) {
	// x in [0, 100] and x in [100, 200]
	a := rect(t, 50, 50, 0, 100, 100)
	b := rect(t, 150, 50, 0, 100, 100)

	_, maxA, err := sat.ProjectOnto(a.Vertices(), Vec2{X: 1, Y: 0})
	require.NoError(t, err)
	minB, _, err := sat.ProjectOnto(b.Vertices(), Vec2{X: 1, Y: 0})
	require.NoError(t, err)
	require.Equal(t, maxA, minB, "projections touch at a single point")

	require.True(t, sat.Overlaps(a, b), "touching counts as a collision")
	require.True(t, sat.Overlaps(b, a), "touching counts as a collision")

	t.Run("corner to corner", func(t *testing.T) {
		c := rect(t, 150, 150, 0, 100, 100)
		require.True(t, sat.Overlaps(a, c))
	})

	t.Run("a hair apart does not", func(t *testing.T) {
		c := rect(t, 150.001, 50, 0, 100, 100)
		require.False(t, sat.Overlaps(a, c))
	})
}

func TestAxesFromBothShapesAreRequired(t *testing.T) {
	a := rect(t, 0, 0, 0, 100, 100)

	onlyAxesOf := func(owner, other *hitbox.ConvexHitbox) bool {
		for _, e := range owner.Edges() {
			minA, maxA, err := sat.ProjectOnto(owner.Vertices(), e.Perp())
			require.NoError(t, err)
			minB, maxB, err := sat.ProjectOnto(other.Vertices(), e.Perp())
			require.NoError(t, err)
			if maxA < minB || maxB < minA {
				return false
			}
		}
		return true
	}

	t.Run("diagonal neighbour is separated by the rotated axes", func(t *testing.T) {
		b := rect(t, 100, 100, 30, 100, 100)

		require.True(t, onlyAxesOf(a, b), "the axis aligned box alone cannot see the gap")
		require.False(t, sat.Overlaps(a, b))
		require.False(t, sat.Overlaps(b, a))

		axis, ok, err := sat.SeparatingAxis(a, b)
		require.NoError(t, err)
		require.True(t, ok)
		require.NotEqual(t, 0.0, axis.X)
		require.NotEqual(t, 0.0, axis.Y)
	})

	t.Run("closer in they really overlap", func(t *testing.T) {
		b := rect(t, 80, 80, 30, 100, 100)
		require.True(t, sat.Overlaps(a, b))
		require.True(t, sat.Overlaps(b, a))
	})
}

func TestSelfOverlap(t *testing.T) {
	r := rand.New(rand.NewSource(69))
	for i := 0; i < 200; i++ {
		h := randomHitbox(t, r)
		require.True(t, sat.Overlaps(h, h), h.Dump())
	}
}

func TestSymmetry(t *testing.T) {
	r := rand.New(rand.NewSource(420))
	for i := 0; i < 500; i++ {
		a := randomHitbox(t, r)
		b := randomHitbox(t, r)
		require.Equal(t, sat.Overlaps(a, b), sat.Overlaps(b, a), "%s\n%s", a.Dump(), b.Dump())
	}
}

func TestTranslationInvariance(t *testing.T) {
	r := rand.New(rand.NewSource(1337))
	checked := 0
	for i := 0; i < 500; i++ {
		a := randomHitbox(t, r)
		b := randomHitbox(t, r)
		if math.Abs(margin(t, a, b)) < 1e-6 {
			continue
		}

		expected := sat.Overlaps(a, b)
		d := Vec2{X: r.Float64()*1000 - 500, Y: r.Float64()*1000 - 500}
		a.Entity().Transform = a.Entity().Transform.Translate(d)
		b.Entity().Transform = b.Entity().Transform.Translate(d)

		require.Equal(t, expected, sat.Overlaps(a, b), "moved by %s", d)
		checked++
	}
	require.Greater(t, checked, 400)
}

func TestRotationInvariance(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	checked := 0
	for i := 0; i < 500; i++ {
		a := randomHitbox(t, r)
		b := randomHitbox(t, r)
		if math.Abs(margin(t, a, b)) < 1e-6 {
			continue
		}

		expected := sat.Overlaps(a, b)
		angle := r.Float64() * 2 * math.Pi
		for _, h := range []*hitbox.ConvexHitbox{a, b} {
			tr := h.Entity().Transform
			tr.Position = tr.Position.Rotate(angle)
			h.Entity().Transform = tr.Rotate(angle)
		}

		require.Equal(t, expected, sat.Overlaps(a, b), "frame rotated by %g", angle)
		checked++
	}
	require.Greater(t, checked, 400)
}

type points []Vec2

func (p points) Vertices() []Vec2 { return p }

func TestDegenerateAxis(t *testing.T) {
	flat := points{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 1}}
	ok := points{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

	_, err := sat.Collides(flat, ok)
	require.ErrorIs(t, err, quickmath.ErrDegenerateAxis)

	_, _, err = sat.ProjectOnto(ok, Vec2{})
	require.ErrorIs(t, err, quickmath.ErrDegenerateAxis)
}

func TestCollidesMatchesResolv(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	compared := 0
	for i := 0; i < 1000; i++ {
		ax, ay := float64(r.Intn(50)), float64(r.Intn(50))
		aw, ah := float64(1+r.Intn(30)), float64(1+r.Intn(30))
		bx, by := float64(r.Intn(50)), float64(r.Intn(50))
		bw, bh := float64(1+r.Intn(30)), float64(1+r.Intn(30))

		overlapX := math.Min(ax+aw, bx+bw) - math.Max(ax, bx)
		overlapY := math.Min(ay+ah, by+bh) - math.Max(ay, by)
		if overlapX == 0 || overlapY == 0 {
			continue
		}
		expected := overlapX > 0 && overlapY > 0

		a := rect(t, ax+aw/2, ay+ah/2, 0, aw, ah)
		b := rect(t, bx+bw/2, by+bh/2, 0, bw, bh)
		ra := resolv.NewRectangle(ax, ay, aw, ah)
		rb := resolv.NewRectangle(bx, by, bw, bh)

		require.Equal(t, expected, sat.Overlaps(a, b))
		require.Equal(t, expected, ra.Intersection(0, 0, rb) != nil)
		compared++
	}
	require.Greater(t, compared, 500)
}

func BenchmarkOverlapsRects(b *testing.B) {
	x := rect(b, 0, 0, 0, 100, 100)
	y := rect(b, 80, 80, 30, 100, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sat.Overlaps(x, y)
	}
}

func TestTinyHitboxesStayTotal(t *testing.T) {
	t.Run("tiny rects near the origin", func(t *testing.T) {
		a := rect(t, 0, 0, 0, 1e-170, 1e-170)
		b := rect(t, 1, 0, 30, 1e-170, 1e-170)

		colliding, err := sat.Collides(a, a)
		require.NoError(t, err)
		require.True(t, colliding)

		colliding, err = sat.Collides(a, b)
		require.NoError(t, err)
		require.False(t, colliding)
		require.False(t, sat.Overlaps(b, a))
	})

	t.Run("tiny rect far from the origin", func(t *testing.T) {
		a := rect(t, 1e6, 1e6, 45, 1e-170, 1e-170)
		b := rect(t, 1e6, 1e6, 0, 100, 100)

		colliding, err := sat.Collides(a, b)
		require.NoError(t, err)
		require.True(t, colliding)
		require.True(t, sat.Overlaps(a, a))
	})
}
