package camera

import (
	gomath "math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/Faultbox/dicebowl/pkg/math"
)

func near(a, b math.Vec3, eps float32) bool {
	d := a.Sub(b)
	return abs32(d.X) <= eps && abs32(d.Y) <= eps && abs32(d.Z) <= eps
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func newTestRig() *Rig {
	return NewRig(DefaultSettings(), rand.New(rand.NewPCG(1, 2)))
}

var t0 = time.Unix(1_700_000_000, 0)

func TestNewRigDefaults(t *testing.T) {
	r := newTestRig()
	for i := 0; i < Slots; i++ {
		st := r.State(i)
		if st.Mode != ModeOverview {
			t.Errorf("slot %d mode = %v, want overview", i, st.Mode)
		}
		if st.Position != defaultPositions[i] {
			t.Errorf("slot %d position = %v, want %v", i, st.Position, defaultPositions[i])
		}
		spin := r.slots[i].spin
		if spin < 0.001 || spin > 0.002 {
			t.Errorf("slot %d spin %v outside [0.001, 0.002]", i, spin)
		}
	}
}

func TestTopdownStampsSettleTime(t *testing.T) {
	r := newTestRig()
	if !r.SetMode(0, ModeTopdown, t0, false) {
		t.Fatal("entering topdown should change the mode")
	}
	st := r.State(0)
	if st.Mode != ModeTopdown || !st.SettledAt.Equal(t0) {
		t.Errorf("state = %+v", st)
	}

	// Repeated settle notifications do not restamp.
	r.SetMode(0, ModeTopdown, t0.Add(time.Second), false)
	if !r.State(0).SettledAt.Equal(t0) {
		t.Error("settle time restamped while already topdown")
	}
}

func TestTopdownHoldsUntilDisplayEnds(t *testing.T) {
	r := newTestRig()
	r.SetMode(1, ModeTopdown, t0, false)

	if r.SetMode(1, ModeFollowing, t0.Add(2*time.Second), false) {
		t.Error("unforced request should not interrupt topdown")
	}
	r.SetMode(1, ModeTopdown, t0.Add(5*time.Second), false)
	if r.Mode(1) != ModeTopdown {
		t.Error("display time is exclusive: still topdown at exactly 5s")
	}

	r.SetMode(1, ModeTopdown, t0.Add(5*time.Second+time.Millisecond), false)
	st := r.State(1)
	if st.Mode != ModeRotating || !st.Completed {
		t.Errorf("after display: mode=%v completed=%v, want rotating/true", st.Mode, st.Completed)
	}
}

func TestTopdownOneShot(t *testing.T) {
	r := newTestRig()
	r.SetMode(0, ModeTopdown, t0, false)
	r.Update(t0.Add(6*time.Second), frameTime, []math.Vec3{{}})
	if r.Mode(0) != ModeRotating {
		t.Fatalf("Update should end the display, mode = %v", r.Mode(0))
	}

	for i := 0; i < 5; i++ {
		if r.SetMode(0, ModeTopdown, t0.Add(time.Duration(7+i)*time.Second), false) {
			t.Fatal("completed slot re-entered topdown")
		}
	}
	if r.Mode(0) != ModeRotating {
		t.Errorf("mode = %v, want rotating", r.Mode(0))
	}

	if !r.SetMode(0, ModeFollowing, t0.Add(20*time.Second), false) {
		t.Error("completed slot should still accept following")
	}
	if !r.SetMode(0, ModeTopdown, t0.Add(21*time.Second), true) {
		t.Error("forced topdown should be accepted")
	}

	// Other slots are unaffected.
	if !r.SetMode(2, ModeTopdown, t0, false) {
		t.Error("slot 2 should still be allowed topdown")
	}
}

func TestForceOverridesTopdown(t *testing.T) {
	r := newTestRig()
	r.SetMode(0, ModeTopdown, t0, false)
	if !r.SetMode(0, ModeOverview, t0.Add(time.Second), true) {
		t.Error("forced overview should interrupt topdown")
	}
	if r.State(0).Completed {
		t.Error("an interrupted display is not a completed one")
	}
}

func TestFollowingKeepsBearing(t *testing.T) {
	r := newTestRig()
	r.SetMode(0, ModeFollowing, t0, false)
	r.Update(t0, frameTime, []math.Vec3{{}})

	// Slot 0 starts at (0,8,12): bearing +Z, goal (0,5,8), one 0.1 step.
	want := math.Vec3{X: 0, Y: 7.7, Z: 11.6}
	if got := r.State(0).Position; !near(got, want, 1e-4) {
		t.Errorf("position = %v, want %v", got, want)
	}
	if r.State(0).LookAt != (math.Vec3{}) {
		t.Errorf("should look at the die")
	}
}

func TestFollowingWithoutDieOrbits(t *testing.T) {
	r := newTestRig()
	r.SetMode(0, ModeFollowing, t0, false)
	before := r.slots[0].phase
	r.Update(t0, frameTime, nil)
	if r.slots[0].phase <= before {
		t.Error("following without a die should fall back to orbiting")
	}
}

func TestTopdownHoverCachesTarget(t *testing.T) {
	r := newTestRig()
	die := math.Vec3{X: 2, Y: 0.5, Z: -1}
	r.SetMode(0, ModeTopdown, t0, false)
	for i := 0; i < 240; i++ {
		r.Update(t0.Add(time.Duration(i)*frameTime), frameTime, []math.Vec3{die})
	}
	st := r.State(0)
	if !st.HasTarget || st.Target != die {
		t.Fatalf("target cache = %v/%v", st.Target, st.HasTarget)
	}
	above := die.Add(math.Vec3{Y: 5})
	if !near(st.Position, above, 1e-3) {
		t.Errorf("position = %v, want above die %v", st.Position, above)
	}
	if st.Up != northUp {
		t.Error("topdown should use a north up vector")
	}

	// After the display the orbit centers on the cached die.
	r.Update(t0.Add(6*time.Second), frameTime, nil)
	if r.Mode(0) != ModeRotating {
		t.Fatalf("mode = %v, want rotating", r.Mode(0))
	}
	if r.State(0).LookAt != die {
		t.Errorf("orbit look at = %v, want cached die", r.State(0).LookAt)
	}
}

func TestTopdownWithoutDieHolds(t *testing.T) {
	r := newTestRig()
	r.SetMode(0, ModeTopdown, t0, false)
	before := r.State(0).Position
	r.Update(t0.Add(time.Second), frameTime, nil)
	if r.State(0).Position != before {
		t.Error("topdown without a die should not move")
	}
}

func TestOrbitPhaseAdvancesWithTime(t *testing.T) {
	r := newTestRig()
	r.Update(t0, time.Second, nil)
	st := r.State(0)
	wantMin := 3 + 0.001*60
	wantMax := 3 + 0.002*60
	if st.Phase < wantMin-1e-5 || st.Phase > wantMax+1e-5 {
		t.Errorf("phase after 1s = %v, want in [%v, %v]", st.Phase, wantMin, wantMax)
	}
}

func TestOrbitApproachesSmoothly(t *testing.T) {
	r := newTestRig()
	start := r.State(0).Position
	r.Update(t0, frameTime, nil)
	moved := r.State(0).Position.Distance(start)
	if moved <= 0 || moved > 1 {
		t.Errorf("orbit moved %v in one frame; want a small non-zero step", moved)
	}
}

func TestReset(t *testing.T) {
	r := newTestRig()
	r.SetMode(0, ModeTopdown, t0, false)
	r.Update(t0.Add(time.Second), frameTime, []math.Vec3{{X: 1}})
	r.Update(t0.Add(7*time.Second), frameTime, nil)
	r.SetMode(1, ModeFollowing, t0, false)

	r.Reset()
	for i := 0; i < Slots; i++ {
		st := r.State(i)
		if st.Mode != ModeOverview || st.Completed || st.HasTarget || st.Phase != 0 {
			t.Errorf("slot %d not reset: %+v", i, st)
		}
		if st.Position != defaultPositions[i] {
			t.Errorf("slot %d should snap to %v, got %v", i, defaultPositions[i], st.Position)
		}
	}
	if !r.SetMode(0, ModeTopdown, t0.Add(10*time.Second), false) {
		t.Error("Reset should re-arm topdown")
	}
}

func TestRearmKeepsPositions(t *testing.T) {
	r := newTestRig()
	r.SetMode(0, ModeTopdown, t0, false)
	r.Update(t0.Add(time.Second), frameTime, []math.Vec3{{X: 2}})
	r.Update(t0.Add(7*time.Second), frameTime, nil)
	if !r.State(0).Completed {
		t.Fatal("slot 0 should have completed topdown")
	}
	before := r.State(0).Position

	r.Rearm()
	st := r.State(0)
	if st.Mode != ModeFollowing || st.Completed {
		t.Errorf("slot 0 not rearmed: %+v", st)
	}
	if st.Position != before {
		t.Errorf("Rearm moved the camera from %v to %v", before, st.Position)
	}
	if !r.SetMode(0, ModeTopdown, t0.Add(8*time.Second), false) {
		t.Error("Rearm should allow topdown again")
	}
}

func TestSlotIndexClamped(t *testing.T) {
	r := newTestRig()
	r.SetMode(-4, ModeFollowing, t0, false)
	r.SetMode(9, ModeRotating, t0, false)
	if r.Mode(0) != ModeFollowing || r.Mode(2) != ModeRotating {
		t.Errorf("modes = %v %v", r.Mode(0), r.Mode(2))
	}
}

func TestApproach(t *testing.T) {
	tests := []struct {
		factor float32
		frames float64
		want   float64
	}{
		{0.1, 1, 0.1},
		{0.1, 2, 0.19},
		{0.02, 0, 0},
		{1, 3, 1},
	}
	for _, tt := range tests {
		got := approach(tt.factor, tt.frames)
		if gomath.Abs(float64(got)-tt.want) > 1e-6 {
			t.Errorf("approach(%v, %v) = %v, want %v", tt.factor, tt.frames, got, tt.want)
		}
	}
}

func TestModeNames(t *testing.T) {
	for m := ModeOverview; m <= ModeTopdown; m++ {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("cinematic"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestViewAndProjection(t *testing.T) {
	r := newTestRig()
	v := r.View(0)
	if v == (math.Mat4{}) {
		t.Error("view matrix is zero")
	}
	p := r.Projection(0)
	if p[0] == 0 || p[5] == 0 {
		t.Errorf("projection not populated: %v", p)
	}
}
