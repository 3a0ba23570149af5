package hitbox

import (
	"errors"
	"fmt"
	"math"

	quickmath "sat-collisions.theprimeagen.com/pkg/quick-math"
	"sat-collisions.theprimeagen.com/pkg/sat"
)

var ErrInvalidGeometry = errors.New("invalid geometry")

// Entity is something placed in the world with exactly one hitbox. The
// Transform is owned by whoever moves the entity between queries; nothing in
// this package writes to it after construction.
//
// Entities are handed around by pointer, the hitbox refers back to the entity
// it was built for.
type Entity struct {
	Name      string
	Transform quickmath.Transform

	width  float64
	height float64
	hitbox *ConvexHitbox
}

func NewRectEntity(name string, transform quickmath.Transform, width, height float64) (*Entity, error) {
	return newEntity(name, transform, width, height, unitSquare)
}

// NewPolygonEntity builds an entity whose hitbox is a convex polygon. local
// holds the vertices in unit space, they are scaled by width and height the
// same way the unit square is for rectangles. Clockwise input is reversed.
func NewPolygonEntity(name string, transform quickmath.Transform, width, height float64, local []quickmath.Vec2) (*Entity, error) {
	verts, err := normalizePolygon(local)
	if err != nil {
		return nil, fmt.Errorf("entity %q: %w", name, err)
	}
	return newEntity(name, transform, width, height, verts)
}

func newEntity(name string, transform quickmath.Transform, width, height float64, local []quickmath.Vec2) (*Entity, error) {
	if !validExtent(width) || !validExtent(height) {
		return nil, fmt.Errorf("entity %q: width=%g height=%g: %w", name, width, height, ErrInvalidGeometry)
	}
	if !transform.Position.IsFinite() || math.IsNaN(transform.Rotation) || math.IsInf(transform.Rotation, 0) {
		return nil, fmt.Errorf("entity %q: transform %s rot=%g: %w", name, transform.Position, transform.Rotation, ErrInvalidGeometry)
	}

	scale := quickmath.Vec2{X: width, Y: height}
	scaled := make([]quickmath.Vec2, len(local))
	for i, v := range local {
		scaled[i] = v.Mul(scale)
	}
	edges := sat.Edges(scaled)
	for i, edge := range edges {
		if edge.Len() == 0 {
			return nil, fmt.Errorf("entity %q: edge %d vanishes at width=%g height=%g: %w", name, i, width, height, ErrInvalidGeometry)
		}
	}

	e := &Entity{
		Name:      name,
		Transform: transform,
		width:     width,
		height:    height,
	}
	e.hitbox = &ConvexHitbox{
		entity: e,
		local:  local,
		scale:  scale,
		edges:  edges,
	}
	return e, nil
}

func validExtent(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func (e *Entity) Width() float64 {
	return e.width
}

func (e *Entity) Height() float64 {
	return e.height
}

func (e *Entity) Hitbox() *ConvexHitbox {
	return e.hitbox
}

func (e *Entity) String() string {
	return fmt.Sprintf("Entity(%s): pos=%s rot=%.2fdeg size=%gx%g",
		e.Name, e.Transform.Position, quickmath.RadToDeg(e.Transform.Rotation), e.width, e.height)
}
