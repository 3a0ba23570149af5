package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"sat-collisions.theprimeagen.com/pkg/hitbox"
	quickmath "sat-collisions.theprimeagen.com/pkg/quick-math"
)

// Scene files use degrees everywhere a human writes an angle. They are
// turned into radians here and nowhere else.

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p Point) Vec() quickmath.Vec2 {
	return quickmath.Vec2{X: p.X, Y: p.Y}
}

type Pose struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

type MotionKind string

const (
	MotionTween MotionKind = "tween"
	MotionSweep MotionKind = "sweep"
)

// Motion describes how an entity gets moved between frames. The scene only
// carries it, the motion package drives it.
type Motion struct {
	Entity   string     `yaml:"-"`
	Kind     MotionKind `yaml:"kind"`
	To       Pose       `yaml:"to"`
	Duration float64    `yaml:"duration"`
	Ease     string     `yaml:"ease"`
	Velocity Point      `yaml:"velocity"`
	Spin     float64    `yaml:"spin"`
}

type EntitySpec struct {
	Name     string  `yaml:"name"`
	Shape    string  `yaml:"shape"`
	Sides    int     `yaml:"sides"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Rotation float64 `yaml:"rotation"`
	Motion   *Motion `yaml:"motion"`
}

type Arena struct {
	Min Point `yaml:"min"`
	Max Point `yaml:"max"`
}

type File struct {
	Arena    *Arena       `yaml:"arena"`
	Entities []EntitySpec `yaml:"entities"`
}

// Loaded is a scene plus what is needed to drive it.
type Loaded struct {
	Scene   *Scene
	Motions []Motion
	Arena   quickmath.AABB
}

func (m Motion) Validate() error {
	switch m.Kind {
	case MotionTween:
		if m.Duration <= 0 {
			return fmt.Errorf("tween for %q: duration must be positive", m.Entity)
		}
	case MotionSweep:
		if m.Velocity.Vec().LenSq() == 0 && m.Spin == 0 {
			return fmt.Errorf("sweep for %q: needs a velocity or a spin", m.Entity)
		}
	default:
		return fmt.Errorf("motion for %q: unknown kind %q", m.Entity, m.Kind)
	}
	return nil
}

func (spec EntitySpec) build() (*hitbox.Entity, error) {
	transform := quickmath.NewTransform(spec.X, spec.Y, quickmath.DegToRad(spec.Rotation))
	switch strings.ToLower(spec.Shape) {
	case "", "rect":
		return hitbox.NewRectEntity(spec.Name, transform, spec.Width, spec.Height)
	case "polygon":
		verts := hitbox.RegularPolygon(spec.Sides)
		return hitbox.NewPolygonEntity(spec.Name, transform, spec.Width, spec.Height, verts)
	default:
		return nil, fmt.Errorf("entity %q: unknown shape %q", spec.Name, spec.Shape)
	}
}

// Build turns a parsed file into a scene. Motion angles and spins are
// converted to radians.
func (f File) Build() (*Loaded, error) {
	s := New()
	loaded := &Loaded{Scene: s}
	fail := func(err error) (*Loaded, error) {
		s.Close()
		return nil, err
	}

	for i, spec := range f.Entities {
		if spec.Name == "" {
			spec.Name = fmt.Sprintf("entity-%d", i)
		}

		e, err := spec.build()
		if err != nil {
			return fail(err)
		}
		if err := s.Add(e); err != nil {
			return fail(err)
		}

		if spec.Motion != nil {
			m := *spec.Motion
			m.Entity = spec.Name
			m.To.Rotation = quickmath.DegToRad(m.To.Rotation)
			m.Spin = quickmath.DegToRad(m.Spin)
			if err := m.Validate(); err != nil {
				return fail(err)
			}
			loaded.Motions = append(loaded.Motions, m)
		}
	}

	if f.Arena != nil {
		loaded.Arena = quickmath.AABBFromPoints(f.Arena.Min.Vec(), f.Arena.Max.Vec())
	} else {
		loaded.Arena = s.Bounds()
	}

	return loaded, nil
}

func ParseYAML(data []byte) (*Loaded, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	// an empty file is what a reader sees halfway through a save
	if len(f.Entities) == 0 {
		return nil, ErrEmptyScene
	}
	return f.Build()
}

// Load picks the loader from the extension: .tmx goes through Tiled, anything
// else is yaml.
func Load(path string) (*Loaded, error) {
	if strings.EqualFold(filepath.Ext(path), ".tmx") {
		return LoadTiled(path)
	}
	return LoadYAML(path)
}

func LoadYAML(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene %s: %w", path, err)
	}
	loaded, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return loaded, nil
}
