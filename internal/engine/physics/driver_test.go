package physics

import (
	gomath "math"
	"math/rand/v2"
	"testing"
)

type fakeSim struct {
	dts     []float64
	pending []CollisionEvent
	drained int
}

func (f *fakeSim) Step(dt float64) {
	f.dts = append(f.dts, dt)
	f.pending = append(f.pending, CollisionEvent{A: 1, B: 2, Started: true})
}

func (f *fakeSim) DrainCollisionEvents(fn func(CollisionEvent)) {
	for _, ev := range f.pending {
		f.drained++
		if fn != nil {
			fn(ev)
		}
	}
	f.pending = nil
}

func almostEqual(a, b, eps float64) bool {
	return gomath.Abs(a-b) < eps
}

func TestAdvanceRunsWholeSteps(t *testing.T) {
	d := NewDriver(0.01, 10)
	sim := &fakeSim{}

	frac := d.Advance(sim, 0.025)
	if len(sim.dts) != 2 {
		t.Fatalf("steps = %d, want 2", len(sim.dts))
	}
	if d.LastSteps() != 2 {
		t.Errorf("LastSteps = %d, want 2", d.LastSteps())
	}
	if !almostEqual(frac, 0.5, 1e-9) {
		t.Errorf("fraction = %v, want 0.5", frac)
	}
	if !almostEqual(d.Accumulator(), 0.005, 1e-12) {
		t.Errorf("accumulator = %v, want 0.005", d.Accumulator())
	}
	for _, dt := range sim.dts {
		if dt != 0.01 {
			t.Errorf("step dt = %v, want 0.01", dt)
		}
	}
}

func TestAdvanceCapsSubsteps(t *testing.T) {
	d := NewDriver(0.01, 3)
	sim := &fakeSim{}

	frac := d.Advance(sim, 0.1)
	if len(sim.dts) != 3 {
		t.Fatalf("steps = %d, want 3", len(sim.dts))
	}
	if frac < 0 || frac >= 1 {
		t.Errorf("fraction %v outside [0,1)", frac)
	}
	// one call's worth of backlog is kept, the rest dropped
	if !almostEqual(d.Accumulator(), 0.03, 1e-9) {
		t.Errorf("accumulator = %v, want 0.03", d.Accumulator())
	}
	if !almostEqual(d.Dropped(), 0.04, 1e-9) {
		t.Errorf("dropped = %v, want 0.04", d.Dropped())
	}

	d.Advance(sim, 0)
	if len(sim.dts) != 6 {
		t.Errorf("backlog steps = %d, want 6 total", len(sim.dts))
	}
	d.Advance(sim, 0)
	if len(sim.dts) != 6 {
		t.Errorf("steps after backlog = %d, want 6 total", len(sim.dts))
	}
}

func TestHighSpeedBacklogStaysBounded(t *testing.T) {
	const base = 1.0 / 120
	d := NewDriver(base, 3)
	sim := &fakeSim{}

	d.SetSpeed(3)
	for i := 0; i < 3600; i++ {
		d.Advance(sim, 1.0/60)
		if limit := 3 * d.Step(); d.Accumulator() > limit+1e-12 {
			t.Fatalf("frame %d: accumulator %v exceeds %v", i, d.Accumulator(), limit)
		}
	}
	if d.Dropped() <= 0 {
		t.Error("expected dropped time at 3x speed")
	}

	// after slowing down the driver follows the new speed at once
	d.SetSpeed(1)
	sim.dts = nil
	for i := 0; i < 3; i++ {
		d.Advance(sim, 1.0/60)
	}
	if n := len(sim.dts); n > 8 {
		t.Errorf("steps over 3 frames at 1x = %d, want at most 8", n)
	}
}

func TestAdvanceNilWorld(t *testing.T) {
	d := NewDriver(0.01, 3)
	if frac := d.Advance(nil, 1); frac != 0 {
		t.Errorf("fraction = %v, want 0", frac)
	}
	var w *World
	if frac := d.Advance(w, 1); frac != 0 {
		t.Errorf("typed nil fraction = %v, want 0", frac)
	}
	if d.Accumulator() != 0 {
		t.Errorf("accumulator = %v, want 0", d.Accumulator())
	}
}

func TestAdvanceIgnoresBadDeltas(t *testing.T) {
	d := NewDriver(0.01, 3)
	sim := &fakeSim{}
	d.Advance(sim, -1)
	d.Advance(sim, gomath.NaN())
	d.Advance(sim, gomath.Inf(1))
	if len(sim.dts) != 0 || d.Accumulator() != 0 {
		t.Errorf("bad deltas advanced the simulation: steps=%d acc=%v", len(sim.dts), d.Accumulator())
	}
}

func TestAdvanceDrainsWithoutHook(t *testing.T) {
	d := NewDriver(0.01, 10)
	sim := &fakeSim{}
	d.Advance(sim, 0.035)
	if len(sim.pending) != 0 {
		t.Errorf("pending events = %d, want 0", len(sim.pending))
	}
	if sim.drained != 3 {
		t.Errorf("drained = %d, want 3", sim.drained)
	}
}

func TestAdvanceHooks(t *testing.T) {
	d := NewDriver(0.01, 10)
	sim := &fakeSim{}
	var order []string
	var seen int
	d.BeforeStep = func(Simulation) { order = append(order, "before") }
	d.AfterStep = func(s Simulation) {
		order = append(order, "after")
		s.DrainCollisionEvents(func(CollisionEvent) { seen++ })
	}

	d.Advance(sim, 0.025)
	want := []string{"before", "after", "before", "after"}
	if len(order) != len(want) {
		t.Fatalf("hooks = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("hooks = %v, want %v", order, want)
		}
	}
	if seen != 2 {
		t.Errorf("events seen = %d, want 2", seen)
	}
}

func TestSetSpeed(t *testing.T) {
	d := NewDriver(0.01, 10)
	sim := &fakeSim{}

	d.SetSpeed(2)
	if !almostEqual(d.Step(), 0.005, 1e-12) {
		t.Fatalf("step = %v, want 0.005", d.Step())
	}
	d.Advance(sim, 0.021)
	if len(sim.dts) != 4 {
		t.Errorf("steps at 2x = %d, want 4", len(sim.dts))
	}
	// simulated time per step is unchanged
	for _, dt := range sim.dts {
		if dt != 0.01 {
			t.Errorf("dt = %v, want 0.01", dt)
		}
	}

	d.SetSpeed(0)
	d.SetSpeed(-3)
	if d.Speed() != 2 {
		t.Errorf("speed = %v, invalid values should be ignored", d.Speed())
	}
}

func TestStepCountMatchesElapsedTime(t *testing.T) {
	const step = 1.0 / 120
	d := NewDriver(step, 1000)
	sim := &fakeSim{}
	rng := rand.New(rand.NewPCG(7, 11))

	total := 0.0
	for i := 0; i < 500; i++ {
		dt := rng.Float64() * 0.05
		total += dt
		frac := d.Advance(sim, dt)
		if frac < 0 || frac >= 1 {
			t.Fatalf("fraction %v outside [0,1)", frac)
		}
	}

	steps := len(sim.dts)
	residual := total - float64(steps)*step
	if !almostEqual(residual, d.Accumulator(), 1e-9) {
		t.Errorf("residual %v, accumulator %v", residual, d.Accumulator())
	}
	if residual < -1e-9 || residual >= step+1e-9 {
		t.Errorf("residual %v outside [0, step)", residual)
	}
	want := int(gomath.Floor(total / step))
	if steps < want-1 || steps > want {
		t.Errorf("steps = %d, want about %d", steps, want)
	}
}

func TestResetClearsAccumulator(t *testing.T) {
	d := NewDriver(0.01, 3)
	d.Advance(&fakeSim{}, 0.015)
	d.Reset()
	if d.Accumulator() != 0 || d.TotalSteps() != 0 || d.Dropped() != 0 {
		t.Error("Reset should clear accumulator and counters")
	}
}
