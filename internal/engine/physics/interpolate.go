package physics

import (
	"github.com/Faultbox/dicebowl/pkg/math"
)

// degenerateQuatLen is the magnitude under which a rotation is unusable.
const degenerateQuatLen = 1e-6

// Snapshot is a body pose captured after a fixed step.
type Snapshot struct {
	Position math.Vec3
	Rotation math.Quat
}

// Visual receives interpolated poses.
type Visual interface {
	SetPosition(p math.Vec3)
	SetRotation(q math.Quat)
}

// Interpolator keeps two generations of body poses and blends between them.
type Interpolator struct {
	prev map[Handle]Snapshot
	curr map[Handle]Snapshot
}

// NewInterpolator creates an empty interpolator.
func NewInterpolator() *Interpolator {
	return &Interpolator{
		prev: make(map[Handle]Snapshot),
		curr: make(map[Handle]Snapshot),
	}
}

// SnapshotPrevious captures the poses the next blend starts from.
func (ip *Interpolator) SnapshotPrevious(bodies []*Body) {
	capture(ip.prev, bodies)
}

// SnapshotCurrent captures the poses the next blend ends at.
func (ip *Interpolator) SnapshotCurrent(bodies []*Body) {
	capture(ip.curr, bodies)
}

// Previous returns the older snapshot for h.
func (ip *Interpolator) Previous(h Handle) (Snapshot, bool) {
	s, ok := ip.prev[h]
	return s, ok
}

// Current returns the newer snapshot for h.
func (ip *Interpolator) Current(h Handle) (Snapshot, bool) {
	s, ok := ip.curr[h]
	return s, ok
}

// Forget drops both generations for h.
func (ip *Interpolator) Forget(h Handle) {
	delete(ip.prev, h)
	delete(ip.curr, h)
}

// Clear drops every snapshot.
func (ip *Interpolator) Clear() {
	clear(ip.prev)
	clear(ip.curr)
}

// Blend writes interpolated poses into visuals and returns how many were
// updated. Entries without a visual or without both snapshots are skipped.
// Rotation is left untouched when either quaternion is degenerate.
func (ip *Interpolator) Blend(visuals map[Handle]Visual, fraction float32) int {
	if fraction < 0 || fraction != fraction {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	updated := 0
	for h, v := range visuals {
		if v == nil {
			continue
		}
		prev, ok := ip.prev[h]
		if !ok {
			continue
		}
		curr, ok := ip.curr[h]
		if !ok {
			continue
		}

		v.SetPosition(prev.Position.Lerp(curr.Position, fraction))
		if prev.Rotation.Len() >= degenerateQuatLen && curr.Rotation.Len() >= degenerateQuatLen {
			v.SetRotation(prev.Rotation.Slerp(curr.Rotation, fraction))
		}
		updated++
	}
	return updated
}

func capture(dst map[Handle]Snapshot, bodies []*Body) {
	for _, b := range bodies {
		if !b.validTransform() {
			continue
		}
		dst[b.handle] = Snapshot{
			Position: math.FromVec64(b.rb.Transform.Position),
			Rotation: math.FromQuat64(b.rb.Transform.Rotation),
		}
	}
}

// Pose returns the body's current pose in render precision.
func (b *Body) Pose() Snapshot {
	return Snapshot{Position: math.FromVec64(b.Position()), Rotation: math.FromQuat64(b.Rotation())}
}
