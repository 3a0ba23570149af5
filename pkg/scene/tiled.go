package scene

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lafriks/go-tiled"
	quickmath "sat-collisions.theprimeagen.com/pkg/quick-math"
)

// LoadTiled builds a scene out of every rectangle object in a TMX map.
// Objects without a size (points, polygons) are skipped. An object can carry
// a "motion" string property, see ParseMotion.
func LoadTiled(path string) (*Loaded, error) {
	levelMap, err := tiled.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", path, err)
	}

	logger := slog.Default().With("area", "TiledLoader")
	f := File{
		Arena: &Arena{
			Max: Point{
				X: float64(levelMap.Width * levelMap.TileWidth),
				Y: float64(levelMap.Height * levelMap.TileHeight),
			},
		},
	}

	for _, og := range levelMap.ObjectGroups {
		for _, o := range og.Objects {
			if o.Width <= 0 || o.Height <= 0 {
				logger.Debug("skipping object without a size", "group", og.Name, "id", o.ID)
				continue
			}

			name := o.Name
			if name == "" {
				name = fmt.Sprintf("%s-%d", og.Name, o.ID)
			}

			spec := TiledRect(o.X, o.Y, o.Width, o.Height, o.Rotation)
			spec.Name = name

			if raw := o.Properties.GetString("motion"); raw != "" {
				m, err := ParseMotion(raw)
				if err != nil {
					return nil, fmt.Errorf("%s object %q: %w", path, name, err)
				}
				spec.Motion = &m
			}

			f.Entities = append(f.Entities, spec)
		}
	}

	loaded, err := f.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return loaded, nil
}

// TiledRect converts a Tiled rectangle, which is anchored and rotated at its
// top left corner, into a centered entity spec. Tiled rotates clockwise on a
// y-down screen which is the same direction as a positive angle here.
func TiledRect(x, y, width, height, rotationDeg float64) EntitySpec {
	half := quickmath.Vec2{X: width / 2, Y: height / 2}
	center := half.Rotate(quickmath.DegToRad(rotationDeg)).Add(quickmath.Vec2{X: x, Y: y})
	return EntitySpec{
		Shape:    "rect",
		X:        center.X,
		Y:        center.Y,
		Width:    width,
		Height:   height,
		Rotation: rotationDeg,
	}
}

// ParseMotion reads the compact motion form used in Tiled properties:
//
//	sweep:vx,vy[,spin]
//	tween:x,y,rotation,seconds[,ease]
//
// Angles are degrees, they are converted when the file is built.
func ParseMotion(raw string) (Motion, error) {
	kind, rest, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return Motion{}, fmt.Errorf("motion %q: missing kind", raw)
	}

	parts := strings.Split(rest, ",")
	nums := []float64{}
	var ease string
	for i, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.ParseFloat(p, 64)
		if err != nil {
			if MotionKind(kind) == MotionTween && i == 4 {
				ease = p
				continue
			}
			return Motion{}, fmt.Errorf("motion %q: %w", raw, err)
		}
		nums = append(nums, n)
	}

	switch MotionKind(kind) {
	case MotionSweep:
		if len(nums) != 2 && len(nums) != 3 {
			return Motion{}, fmt.Errorf("motion %q: sweep wants vx,vy[,spin]", raw)
		}
		m := Motion{Kind: MotionSweep, Velocity: Point{X: nums[0], Y: nums[1]}}
		if len(nums) == 3 {
			m.Spin = nums[2]
		}
		return m, nil

	case MotionTween:
		if len(nums) != 4 {
			return Motion{}, fmt.Errorf("motion %q: tween wants x,y,rotation,seconds[,ease]", raw)
		}
		return Motion{
			Kind:     MotionTween,
			To:       Pose{X: nums[0], Y: nums[1], Rotation: nums[2]},
			Duration: nums[3],
			Ease:     ease,
		}, nil
	}

	return Motion{}, fmt.Errorf("motion %q: unknown kind %q", raw, kind)
}
