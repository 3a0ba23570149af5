package hitbox

import (
	"fmt"
	"strings"

	quickmath "sat-collisions.theprimeagen.com/pkg/quick-math"
)

// ConvexHitbox is the world space shape of an Entity. It only exists as part
// of an entity, see Entity.Hitbox.
type ConvexHitbox struct {
	entity *Entity
	local  []quickmath.Vec2
	scale  quickmath.Vec2
	// local edges already scaled, only rotation is left to apply
	edges []quickmath.Vec2
}

func (h *ConvexHitbox) Entity() *Entity {
	return h.entity
}

func (h *ConvexHitbox) Len() int {
	return len(h.local)
}

// Vertices scales, rotates and then translates every local vertex using the
// entity's current transform. Nothing is cached, the transform may have
// moved since the last call.
func (h *ConvexHitbox) Vertices() []quickmath.Vec2 {
	t := h.entity.Transform
	out := make([]quickmath.Vec2, len(h.local))
	for i, v := range h.local {
		out[i] = t.Apply(v.Mul(h.scale))
	}
	return out
}

// Edges are rotated from the scaled local shape instead of being taken from
// Vertices, so a small hitbox far from the origin keeps its edges.
func (h *ConvexHitbox) Edges() []quickmath.Vec2 {
	rot := h.entity.Transform.Rotation
	out := make([]quickmath.Vec2, len(h.edges))
	for i, e := range h.edges {
		out[i] = e.Rotate(rot)
	}
	return out
}

func (h *ConvexHitbox) Bounds() quickmath.AABB {
	return quickmath.AABBFromPoints(h.Vertices()...)
}

func (h *ConvexHitbox) Dump() string {
	verts := h.Vertices()
	out := make([]string, 0, len(verts))
	for _, v := range verts {
		out = append(out, v.String())
	}
	return fmt.Sprintf("%s [%s]", h.entity, strings.Join(out, " "))
}
