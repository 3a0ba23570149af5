package motion

import (
	"fmt"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"sat-collisions.theprimeagen.com/pkg/hitbox"
	quickmath "sat-collisions.theprimeagen.com/pkg/quick-math"
	"sat-collisions.theprimeagen.com/pkg/scene"
)

// Mover writes an entity's transform between frames. It is the only thing
// besides scene loading that touches a transform.
type Mover interface {
	Update(dt float64)
	Entity() *hitbox.Entity
}

var eases = map[string]ease.TweenFunc{
	"":           ease.Linear,
	"linear":     ease.Linear,
	"inquad":     ease.InQuad,
	"outquad":    ease.OutQuad,
	"inoutquad":  ease.InOutQuad,
	"inoutcubic": ease.InOutCubic,
	"inoutsine":  ease.InOutSine,
	"outbounce":  ease.OutBounce,
}

func Ease(name string) (ease.TweenFunc, error) {
	fn, ok := eases[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown ease %q", name)
	}
	return fn, nil
}

// Track tweens an entity from where it starts to a target pose and back,
// forever.
type Track struct {
	entity   *hitbox.Entity
	from, to quickmath.Transform
	duration float32
	easing   ease.TweenFunc

	x, y, rot *gween.Tween
	forward   bool
}

func NewTrack(e *hitbox.Entity, to quickmath.Transform, seconds float64, easing ease.TweenFunc) *Track {
	t := &Track{
		entity:   e,
		from:     e.Transform,
		to:       to,
		duration: float32(seconds),
		easing:   easing,
	}
	t.start(true)
	return t
}

func (t *Track) start(forward bool) {
	from, to := t.from, t.to
	if !forward {
		from, to = to, from
	}
	t.forward = forward
	t.x = gween.New(float32(from.Position.X), float32(to.Position.X), t.duration, t.easing)
	t.y = gween.New(float32(from.Position.Y), float32(to.Position.Y), t.duration, t.easing)
	t.rot = gween.New(float32(from.Rotation), float32(to.Rotation), t.duration, t.easing)
}

func (t *Track) Entity() *hitbox.Entity {
	return t.entity
}

func (t *Track) Update(dt float64) {
	x, done := t.x.Update(float32(dt))
	y, _ := t.y.Update(float32(dt))
	rot, _ := t.rot.Update(float32(dt))

	t.entity.Transform = quickmath.NewTransform(float64(x), float64(y), float64(rot))
	if done {
		t.start(!t.forward)
	}
}

// Sweep moves an entity at a constant velocity and bounces its hitbox off
// the arena walls. It stands in for a mouse dragging a shape around.
type Sweep struct {
	entity   *hitbox.Entity
	arena    quickmath.AABB
	velocity quickmath.Vec2
	spin     float64
}

func NewSweep(e *hitbox.Entity, arena quickmath.AABB, velocity quickmath.Vec2, spin float64) *Sweep {
	return &Sweep{
		entity:   e,
		arena:    arena,
		velocity: velocity,
		spin:     spin,
	}
}

func (s *Sweep) Entity() *hitbox.Entity {
	return s.entity
}

func (s *Sweep) Velocity() quickmath.Vec2 {
	return s.velocity
}

func (s *Sweep) Update(dt float64) {
	tr := s.entity.Transform.Translate(s.velocity.Scale(dt)).Rotate(s.spin * dt)
	s.entity.Transform = tr

	bounds := s.entity.Hitbox().Bounds()
	if (bounds.Min.X < s.arena.Min.X && s.velocity.X < 0) ||
		(bounds.Max.X > s.arena.Max.X && s.velocity.X > 0) {
		s.velocity.X = -s.velocity.X
	}
	if (bounds.Min.Y < s.arena.Min.Y && s.velocity.Y < 0) ||
		(bounds.Max.Y > s.arena.Max.Y && s.velocity.Y > 0) {
		s.velocity.Y = -s.velocity.Y
	}
}

// FromScene builds a mover for every motion the scene file asked for.
func FromScene(loaded *scene.Loaded) ([]Mover, error) {
	out := make([]Mover, 0, len(loaded.Motions))
	for _, m := range loaded.Motions {
		e := loaded.Scene.Get(m.Entity)
		if e == nil {
			return nil, fmt.Errorf("motion for unknown entity %q", m.Entity)
		}

		switch m.Kind {
		case scene.MotionTween:
			easing, err := Ease(m.Ease)
			if err != nil {
				return nil, fmt.Errorf("motion for %q: %w", m.Entity, err)
			}
			to := quickmath.NewTransform(m.To.X, m.To.Y, m.To.Rotation)
			out = append(out, NewTrack(e, to, m.Duration, easing))
		case scene.MotionSweep:
			out = append(out, NewSweep(e, loaded.Arena, m.Velocity.Vec(), m.Spin))
		default:
			return nil, fmt.Errorf("motion for %q: unknown kind %q", m.Entity, m.Kind)
		}
	}
	return out, nil
}
