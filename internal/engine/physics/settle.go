package physics

import "math"

// DefaultSettleThreshold is the per-component speed under which a die is at rest.
const DefaultSettleThreshold = 0.01

// IsSettled reports whether every linear and angular velocity component of b
// is strictly below the default threshold. A nil body counts as settled.
func IsSettled(b *Body) bool {
	return SettledBelow(b, DefaultSettleThreshold)
}

// SettledBelow is IsSettled with an explicit threshold.
func SettledBelow(b *Body, threshold float64) bool {
	if b == nil || b.rb == nil {
		return true
	}
	for _, v := range [...]float64{
		b.rb.Velocity.X(), b.rb.Velocity.Y(), b.rb.Velocity.Z(),
		b.rb.AngularVelocity.X(), b.rb.AngularVelocity.Y(), b.rb.AngularVelocity.Z(),
	} {
		if !(math.Abs(v) < threshold) {
			return false
		}
	}
	return true
}

// AllSettled reports whether every body in bodies is settled.
func AllSettled(bodies []*Body, threshold float64) bool {
	for _, b := range bodies {
		if !SettledBelow(b, threshold) {
			return false
		}
	}
	return true
}
