package game

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/dicebowl/internal/config"
	"github.com/Faultbox/dicebowl/internal/engine/camera"
	"github.com/Faultbox/dicebowl/internal/engine/geometry"
	"github.com/Faultbox/dicebowl/internal/engine/physics"
	"github.com/Faultbox/dicebowl/internal/engine/renderer"
	"github.com/Faultbox/dicebowl/internal/engine/shadow"
	"github.com/Faultbox/dicebowl/internal/game/check"
	"github.com/Faultbox/dicebowl/internal/game/dice"
	"github.com/Faultbox/dicebowl/internal/game/session"
	"github.com/Faultbox/dicebowl/internal/game/sheet"
	dietype "github.com/Faultbox/dicebowl/pkg/dice"
)

func TestControlsDefaults(t *testing.T) {
	c := NewControls(sheet.NewCharacter("Alrik"))
	if c.Type() != dietype.D20 {
		t.Errorf("type = %v, want d20", c.Type())
	}
	if c.Count != 1 {
		t.Errorf("count = %d, want 1", c.Count)
	}
	if c.Attribute() != sheet.Attributes[0] {
		t.Errorf("attribute = %q, want %q", c.Attribute(), sheet.Attributes[0])
	}
	if c.Talent() == "" {
		t.Error("no talent selected on a full sheet")
	}
}

func TestControlsWrapAndClamp(t *testing.T) {
	c := NewControls(nil)

	n := len(dietype.Types())
	start := c.Type()
	c.CycleType(n)
	if c.Type() != start {
		t.Errorf("cycling a full turn moved to %v", c.Type())
	}
	c.CycleType(-1)
	c.CycleType(1)
	if c.Type() != start {
		t.Errorf("back and forth moved to %v", c.Type())
	}

	c.AddDice(-5)
	if c.Count != 1 {
		t.Errorf("count = %d, want 1", c.Count)
	}
	c.AddDice(100)
	if c.Count != MaxDice {
		t.Errorf("count = %d, want %d", c.Count, MaxDice)
	}

	c.AddModifier(-100)
	if c.Modifier != -MaxModifier {
		t.Errorf("modifier = %d, want %d", c.Modifier, -MaxModifier)
	}
	c.AddModifier(2 * MaxModifier)
	if c.Modifier != MaxModifier {
		t.Errorf("modifier = %d, want %d", c.Modifier, MaxModifier)
	}

	for range sheet.Attributes {
		c.NextAttribute()
	}
	if c.Attribute() != sheet.Attributes[0] {
		t.Errorf("attribute after a full turn = %q", c.Attribute())
	}

	if c.Talent() != "" {
		t.Errorf("talent without sheet = %q", c.Talent())
	}
	c.NextTalent()
}

func TestControlsTitle(t *testing.T) {
	c := NewControls(nil)
	c.AddModifier(-2)

	got := c.Title(1, true, "MU [4] success QS 2")
	for _, want := range []string{"1×d20", "MU", "-2", "muted", "QS 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("title %q lacks %q", got, want)
		}
	}
	if strings.Contains(c.Title(1, false, ""), "muted") {
		t.Error("title mentions mute while unmuted")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		r    check.Result
		want []string
		not  []string
	}{
		{
			name: "attribute success",
			r: check.Result{Type: check.KindAttribute, Attribute: &check.AttributeResult{
				Attribute: "MU", Roll: 5, Success: true, QualityLevel: 2,
			}},
			want: []string{"MU", "[5]", "success QS 2"},
			not:  []string{"failed", "("},
		},
		{
			name: "attribute fumble",
			r: check.Result{Type: check.KindAttribute, Attribute: &check.AttributeResult{
				Attribute: "KL", Roll: 20, CriticalFailure: true,
			}},
			want: []string{"KL", "failed", "(fumble)"},
		},
		{
			name: "talent spectacular",
			r: check.Result{Type: check.KindTalent, Talent: &check.TalentResult{
				Talent:       "Klettern",
				Rolls:        [3]check.RollDetail{{Roll: 1}, {Roll: 1}, {Roll: 1}},
				Success:      true,
				QualityLevel: 1,
				Critical:     check.CriticalSpectacularSuccess,
			}},
			want: []string{"Klettern", "[1 1 1]", "success QS 1", "(spectacular success)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.r)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("%q lacks %q", got, w)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(got, n) {
					t.Errorf("%q contains %q", got, n)
				}
			}
		})
	}
}

func TestDescribeThrow(t *testing.T) {
	if got, want := DescribeThrow(dietype.D6, []int{3, 4, 6}), "d6 [3 4 6] = 13"; got != want {
		t.Errorf("DescribeThrow = %q, want %q", got, want)
	}
}

type recordingPainter struct {
	scenes []renderer.Scene
	loaded map[string]bool
	closed int
}

func (p *recordingPainter) Render(s renderer.Scene) { p.scenes = append(p.scenes, s) }

func (p *recordingPainter) Preload(key string, _, _ *geometry.Mesh) {
	if p.loaded == nil {
		p.loaded = make(map[string]bool)
	}
	p.loaded[key] = true
}

func (p *recordingPainter) Close() error {
	p.closed++
	return nil
}

func spawn(t *testing.T, scene dice.Scene, types ...dietype.Type) []*dice.Die {
	t.Helper()
	w := physics.NewWorld(physics.DefaultSettings(), nil)
	m := dice.NewManager(dice.Options{PoolSize: dice.DefaultPoolSize}, scene, nil)
	var out []*dice.Die
	for i, typ := range types {
		d, err := m.Spawn(w, dice.SpawnSpec{
			Type:     typ,
			Position: mgl64.Vec3{float64(i) * 2, 3, 0},
			Rotation: mgl64.QuatIdent(),
		})
		if err != nil {
			t.Fatalf("Spawn %v: %v", typ, err)
		}
		out = append(out, d)
	}
	return out
}

func TestBuildScene(t *testing.T) {
	rig := camera.NewRig(camera.DefaultSettings(), nil)
	dd := spawn(t, nil, dietype.D6, dietype.D20)

	s := BuildScene(session.Frame{Cameras: rig, Dice: dd, Views: 2})
	if len(s.Views) != 2 {
		t.Fatalf("views = %d, want 2", len(s.Views))
	}
	if s.Views[1].View != rig.View(1) {
		t.Error("second view does not use slot 1")
	}
	if s.Views[0].Eye != rig.State(0).Position {
		t.Error("eye is not the slot position")
	}
	if s.Views[0].Projection == nil {
		t.Error("missing projection")
	}

	if len(s.Objects) != 2 {
		t.Fatalf("objects = %d, want 2", len(s.Objects))
	}
	for i, o := range s.Objects {
		if o.Key != dd[i].Visual.Factory.Type.String() {
			t.Errorf("object %d key = %q", i, o.Key)
		}
		if o.Body == nil || o.Labels == nil {
			t.Errorf("object %d has no meshes", i)
		}
		if o.Model != dd[i].Visual.Model() {
			t.Errorf("object %d model differs from its visual", i)
		}
	}
}

func TestBuildSceneWithoutCameras(t *testing.T) {
	s := BuildScene(session.Frame{Views: 3})
	if len(s.Views) != 0 || len(s.Objects) != 0 {
		t.Errorf("scene = %+v, want empty", s)
	}
}

func TestViewAdapter(t *testing.T) {
	p := &recordingPainter{}
	v := &view{painter: p}

	spawn(t, v, dietype.D4, dietype.D4, dietype.D12)
	if len(p.loaded) != 2 || !p.loaded["d4"] || !p.loaded["d12"] {
		t.Errorf("preloaded = %v, want d4 and d12", p.loaded)
	}

	v.Render(session.Frame{Cameras: camera.NewRig(camera.DefaultSettings(), nil), Views: 1})
	if len(p.scenes) != 1 || len(p.scenes[0].Views) != 1 {
		t.Fatalf("scenes = %+v", p.scenes)
	}

	if err := v.Close(); err != nil || p.closed != 1 {
		t.Errorf("Close = %v, closed %d times", err, p.closed)
	}

	var empty view
	empty.Render(session.Frame{})
	if err := empty.Close(); err != nil {
		t.Errorf("Close without painter = %v", err)
	}
}

func TestApplyTalentColors(t *testing.T) {
	on, off := true, false
	tests := []struct {
		name     string
		file     bool
		override *bool
		want     bool
	}{
		{"unset keeps file on", true, nil, true},
		{"unset keeps file off", false, nil, false},
		{"config turns off", true, &off, false},
		{"config turns on", false, &on, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			looks := sheet.DefaultAppearances()
			looks.UseTalentColors = tt.file
			applyTalentColors(looks, tt.override)
			if looks.UseTalentColors != tt.want {
				t.Errorf("UseTalentColors = %v, want %v", looks.UseTalentColors, tt.want)
			}
		})
	}
	applyTalentColors(nil, &on)
}

func TestShadowSettings(t *testing.T) {
	g := config.Default().Graphics
	s := shadowSettings(g)
	if s.Resolution != 1024 {
		t.Errorf("Resolution = %d, want 1024", s.Resolution)
	}
	if s.Bias != shadow.DefaultSettings().Bias || s.NormalBias <= 0 {
		t.Errorf("bias = %v, normal bias = %v", s.Bias, s.NormalBias)
	}

	g.ShadowMapSize = 2048
	if got := shadowSettings(g).Resolution; got != 2048 {
		t.Errorf("Resolution = %d, want 2048", got)
	}
	g.ShadowMapSize = 0
	if got := shadowSettings(g).Resolution; got != shadow.DefaultResolution {
		t.Errorf("Resolution = %d, want default", got)
	}
}
