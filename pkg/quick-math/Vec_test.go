package quickmath_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"sat-collisions.theprimeagen.com/pkg/quick-math"
)

var Vec = quickmath.NewVec2

func requireVecNear(t *testing.T, expected, actual quickmath.Vec2) {
    t.Helper()
    require.InDelta(t, expected.X, actual.X, 1e-9, "x of %s vs %s", expected, actual)
    require.InDelta(t, expected.Y, actual.Y, 1e-9, "y of %s vs %s", expected, actual)
}

func TestVec2Init(t *testing.T) {
    vec := Vec(1.0, 2.0)
    require.Equal(t, vec, Vec(1.0, 2.0))
}

func TestVec2Operations(t *testing.T) {
    vec := Vec(1.0, 2.0)
    vecLen := math.Sqrt(1 + 4)
    require.Equal(t, vec.Add(Vec(68.0, 67.0)), Vec(69, 69))
    require.Equal(t, vec.Scale(4), Vec(4, 8))
    require.Equal(t, vec.Sub(Vec(4, 3.5)), Vec(-3.0, -1.5))
    require.Equal(t, vec.Len(), vecLen)
    require.Equal(t, Vec(0, 0).Len(), 0.0)
    require.Equal(t, Vec(0, 0).Norm(), Vec(0, 0))
    require.Equal(t, vec.LenSq(), 5.0)
    require.Equal(t, Vec(3, 4).Len(), 5.0)
}

func TestVec2Dot(t *testing.T) {
    require.Equal(t, 11.0, quickmath.Dot(Vec(1, 2), Vec(3, 4)))
    require.Equal(t, 0.0, Vec(1, 0).Dot(Vec(0, 1)))
    require.Equal(t, -1.0, Vec(1, 0).Dot(Vec(-1, 0)))
}

func TestVec2Perp(t *testing.T) {
    require.Equal(t, Vec(-2, 1), Vec(1, 2).Perp())
    require.Equal(t, 0.0, Vec(1, 2).Dot(Vec(1, 2).Perp()))
    require.Equal(t, Vec(5, 7).Len(), Vec(5, 7).Perp().Len(), "perp is not normalized")
    require.Greater(t, Vec(1, 0).Cross(Vec(1, 0).Perp()), 0.0, "perp is counter-clockwise")
}

func TestVec2Rotate(t *testing.T) {
    t.Run("quarter turn is counter-clockwise", func(t *testing.T) {
        requireVecNear(t, Vec(0, 1), Vec(1, 0).Rotate(math.Pi/2))
        requireVecNear(t, Vec(-1, 0), Vec(0, 1).Rotate(math.Pi/2))
    })

    t.Run("negative angles go clockwise", func(t *testing.T) {
        requireVecNear(t, Vec(0, -1), Vec(1, 0).Rotate(-math.Pi/2))
    })

    t.Run("zero angle is exact", func(t *testing.T) {
        require.Equal(t, Vec(50, -50), Vec(50, -50).Rotate(0))
    })

    t.Run("rotation keeps length", func(t *testing.T) {
        v := Vec(3, 4)
        for _, angle := range []float64{0.1, 1, 2.5, -4, 10} {
            require.InDelta(t, v.Len(), v.Rotate(angle).Len(), 1e-9)
        }
    })

    t.Run("perp matches a quarter rotation", func(t *testing.T) {
        v := Vec(2.5, -7)
        requireVecNear(t, v.Perp(), v.Rotate(math.Pi/2))
    })
}

func TestProject(t *testing.T) {
    t.Run("onto unit axis", func(t *testing.T) {
        p, err := quickmath.Project(Vec(3, 4), Vec(1, 0))
        require.NoError(t, err)
        require.Equal(t, 3.0, p)
    })

    t.Run("axis length does not matter", func(t *testing.T) {
        p, err := quickmath.Project(Vec(3, 4), Vec(0, 100))
        require.NoError(t, err)
        require.Equal(t, 4.0, p)
    })

    t.Run("diagonal axis", func(t *testing.T) {
        p, err := quickmath.Project(Vec(1, 1), Vec(1, 1))
        require.NoError(t, err)
        require.InDelta(t, math.Sqrt2, p, 1e-12)
    })

    t.Run("zero axis is degenerate", func(t *testing.T) {
        p, err := quickmath.Project(Vec(3, 4), Vec(0, 0))
        require.ErrorIs(t, err, quickmath.ErrDegenerateAxis)
        require.False(t, math.IsNaN(p))
        require.False(t, math.IsInf(p, 0))
    })
}

func TestVec2IsFinite(t *testing.T) {
    require.True(t, Vec(1, 2).IsFinite())
    require.False(t, Vec(math.NaN(), 2).IsFinite())
    require.False(t, Vec(1, math.Inf(-1)).IsFinite())
}
