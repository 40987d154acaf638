// Package physics wraps the rigid-body simulation of dice in a bowl and
// drives it at a fixed timestep decoupled from rendering.
package physics

// Bowl describes the hexagonal bowl the dice are thrown into.
type Bowl struct {
	Radius            float64 // floor hexagon circumradius
	TopRadius         float64 // rim hexagon circumradius
	WallHeight        float64
	GroundRestitution float64
	GroundFriction    float64
	WallRestitution   float64
	WallFriction      float64
}

// Settings holds simulation parameters. Bodies fall asleep once both
// speeds stay under 0.05 for a tenth of a simulated second; the solver fixes
// those thresholds.
type Settings struct {
	Gravity        float64 // along Y, negative is down
	LinearDamping  float64
	AngularDamping float64
	Restitution    float64
	Friction       float64
	Density        float64
	Substeps       int // solver substeps per fixed step
	Bowl           Bowl
}

// DefaultSettings returns the tuned dice-in-a-bowl parameters.
func DefaultSettings() Settings {
	return Settings{
		Gravity:        -25,
		LinearDamping:  0.5,
		AngularDamping: 0.5,
		Restitution:    0.3,
		Friction:       0.8,
		Density:        2.0,
		Substeps:       4,
		Bowl: Bowl{
			Radius:            10,
			TopRadius:         11,
			WallHeight:        4,
			GroundRestitution: 0.1,
			GroundFriction:    1.0,
			WallRestitution:   0.5,
			WallFriction:      0.2,
		},
	}
}
