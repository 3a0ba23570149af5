package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"sat-collisions.theprimeagen.com/pkg/assert"
	"sat-collisions.theprimeagen.com/pkg/hitbox"
	quickmath "sat-collisions.theprimeagen.com/pkg/quick-math"
	"sat-collisions.theprimeagen.com/pkg/sat"
)

var (
	ErrDuplicateEntity = errors.New("duplicate entity")
	ErrEmptyScene      = errors.New("scene has no entities")
)

type Contact struct {
	A, B      string
	Colliding bool
}

type Pair struct {
	A, B *hitbox.Entity
}

// Scene is the entity table. It is driven from a single goroutine: entities
// are moved between calls to Step, never during one.
type Scene struct {
	id     int64
	order  []string
	byName map[string]*hitbox.Entity
	logger *slog.Logger
}

var sceneIds atomic.Int64

func New() *Scene {
	id := sceneIds.Add(1)
	return &Scene{
		id:     id,
		byName: map[string]*hitbox.Entity{},
		logger: slog.Default().With("area", "Scene", "scene", id),
	}
}

// AssertKey is where the entity's hitbox is registered for assert dumps. Two
// scenes alive at once, as during a reload, never share keys.
func (s *Scene) AssertKey(name string) string {
	return fmt.Sprintf("scene-%d:hitbox:%s", s.id, name)
}

func (s *Scene) Add(e *hitbox.Entity) error {
	if _, ok := s.byName[e.Name]; ok {
		return fmt.Errorf("entity %q: %w", e.Name, ErrDuplicateEntity)
	}
	s.order = append(s.order, e.Name)
	s.byName[e.Name] = e
	assert.AddAssertData(s.AssertKey(e.Name), e.Hitbox())
	s.logger.Debug("added", "entity", e.String())
	return nil
}

func (s *Scene) Remove(name string) bool {
	if _, ok := s.byName[name]; !ok {
		return false
	}
	delete(s.byName, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	assert.RemoveAssertData(s.AssertKey(name))
	return true
}

// Close unregisters the scene's hitboxes from assert dumps.
func (s *Scene) Close() {
	for _, name := range s.order {
		assert.RemoveAssertData(s.AssertKey(name))
	}
}

func (s *Scene) Get(name string) *hitbox.Entity {
	return s.byName[name]
}

func (s *Scene) Len() int {
	return len(s.order)
}

func (s *Scene) Entities() []*hitbox.Entity {
	out := make([]*hitbox.Entity, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// Pairs is every unordered pair in insertion order, there is no broad phase.
func (s *Scene) Pairs() []Pair {
	entities := s.Entities()
	out := make([]Pair, 0, len(entities)*(len(entities)-1)/2)
	for i := range entities {
		for j := i + 1; j < len(entities); j++ {
			out = append(out, Pair{A: entities[i], B: entities[j]})
		}
	}
	return out
}

// Bounds is the box around every hitbox as it is right now.
func (s *Scene) Bounds() quickmath.AABB {
	entities := s.Entities()
	if len(entities) == 0 {
		return quickmath.AABB{}
	}
	box := entities[0].Hitbox().Bounds()
	for _, e := range entities[1:] {
		box = box.Union(e.Hitbox().Bounds())
	}
	return box
}

func test(p Pair) (Contact, error) {
	colliding, err := sat.Collides(p.A.Hitbox(), p.B.Hitbox())
	if err != nil {
		return Contact{}, fmt.Errorf("%s|%s: %w", p.A.Name, p.B.Name, err)
	}
	return Contact{A: p.A.Name, B: p.B.Name, Colliding: colliding}, nil
}

// Step tests every pair once. With more than one worker the pairs are split
// into chunks and tested in parallel; the result order matches Pairs either
// way.
func (s *Scene) Step(ctx context.Context, workers int) ([]Contact, error) {
	pairs := s.Pairs()
	out := make([]Contact, len(pairs))

	if workers <= 1 || len(pairs) < 2 {
		for i, p := range pairs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			c, err := test(p)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(pairs) + workers - 1) / workers
	for start := 0; start < len(pairs); start += chunk {
		start := start
		end := min(start+chunk, len(pairs))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				c, err := test(pairs[i])
				if err != nil {
					return err
				}
				out[i] = c
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
