package physics

import "math"

// Default fixed-step parameters.
const (
	DefaultFixedStep   = 1.0 / 120.0
	DefaultMaxSubsteps = 3
)

// Simulation is what the driver steps.
type Simulation interface {
	Step(dt float64)
	DrainCollisionEvents(fn func(CollisionEvent))
}

// StepHook runs around each fixed step.
type StepHook func(sim Simulation)

// Driver accumulates real time and advances a simulation in fixed steps.
type Driver struct {
	baseStep    float64
	step        float64 // real time consumed per fixed step
	speed       float64
	maxSubsteps int
	accumulator float64
	dropped     float64
	lastSteps   int
	totalSteps  uint64

	// BeforeStep runs before every fixed step.
	BeforeStep StepHook
	// AfterStep runs after every fixed step and is expected to drain
	// collision events. Without it the driver discards them.
	AfterStep StepHook
}

// NewDriver creates a driver with the given simulation step and per-call
// step cap. Non-positive values fall back to the defaults.
func NewDriver(fixedStep float64, maxSubsteps int) *Driver {
	if fixedStep <= 0 {
		fixedStep = DefaultFixedStep
	}
	if maxSubsteps < 1 {
		maxSubsteps = DefaultMaxSubsteps
	}
	return &Driver{
		baseStep:    fixedStep,
		step:        fixedStep,
		speed:       1,
		maxSubsteps: maxSubsteps,
	}
}

// SetSpeed changes the simulation speed multiplier. Each fixed step still
// advances the world by the base step but consumes base/speed of real time.
// Non-positive or non-finite values are ignored.
func (d *Driver) SetSpeed(speed float64) {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return
	}
	d.speed = speed
	d.step = d.baseStep / speed
}

// Speed returns the current speed multiplier.
func (d *Driver) Speed() float64 { return d.speed }

// Step returns the real time consumed per fixed step.
func (d *Driver) Step() float64 { return d.step }

// Accumulator returns the unconsumed real time.
func (d *Driver) Accumulator() float64 { return d.accumulator }

// Dropped returns the real time discarded because the backlog exceeded
// one call's worth of steps.
func (d *Driver) Dropped() float64 { return d.dropped }

// LastSteps returns the number of fixed steps run by the latest Advance.
func (d *Driver) LastSteps() int { return d.lastSteps }

// TotalSteps returns the number of fixed steps run since creation or Reset.
func (d *Driver) TotalSteps() uint64 { return d.totalSteps }

// Reset clears accumulated time and counters.
func (d *Driver) Reset() {
	d.accumulator = 0
	d.dropped = 0
	d.lastSteps = 0
	d.totalSteps = 0
}

// Advance adds realDelta seconds and runs as many fixed steps as fit, up to
// the per-call cap. At most one more call's worth of time stays in the
// accumulator; anything older is dropped so the simulation falls behind the
// wall clock instead of building an unbounded backlog. It returns the blend
// fraction in [0, 1), or 0 when sim is nil.
func (d *Driver) Advance(sim Simulation, realDelta float64) float64 {
	d.lastSteps = 0
	if sim == nil {
		return 0
	}
	if w, ok := sim.(*World); ok && w == nil {
		return 0
	}
	if realDelta > 0 && !math.IsInf(realDelta, 1) {
		d.accumulator += realDelta
	}

	for d.accumulator >= d.step && d.lastSteps < d.maxSubsteps {
		if d.BeforeStep != nil {
			d.BeforeStep(sim)
		}
		sim.Step(d.baseStep)
		if d.AfterStep != nil {
			d.AfterStep(sim)
		} else {
			sim.DrainCollisionEvents(nil)
		}
		d.accumulator -= d.step
		d.lastSteps++
		d.totalSteps++
	}
	if limit := float64(d.maxSubsteps) * d.step; d.accumulator > limit {
		d.dropped += d.accumulator - limit
		d.accumulator = limit
	}

	fraction := d.accumulator / d.step
	if fraction >= 1 {
		fraction = math.Nextafter(1, 0)
	}
	if fraction < 0 {
		fraction = 0
	}
	return fraction
}
