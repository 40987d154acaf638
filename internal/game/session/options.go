package session

import (
	"time"

	"github.com/Faultbox/dicebowl/internal/config"
	"github.com/Faultbox/dicebowl/internal/engine/camera"
	"github.com/Faultbox/dicebowl/internal/engine/physics"
	"github.com/Faultbox/dicebowl/internal/game/dice"
	"github.com/Faultbox/dicebowl/internal/game/impact"
)

// Default session limits.
const (
	DefaultMaxFrameDelta = 250 * time.Millisecond
	DefaultRecoverBelow  = -5.0
	DefaultCommandQueue  = 16
)

// Options configures a Session.
type Options struct {
	Physics         physics.Settings
	FixedStep       float64
	MaxSubsteps     int
	Speed           float64
	SettleThreshold float64
	// MaxFrameDelta caps the real time one frame may feed the driver.
	MaxFrameDelta time.Duration
	// RecoverBelow is the height under which a die is thrown back in.
	RecoverBelow float64
	CommandQueue int

	Camera camera.Settings
	Impact impact.Options
	Dice   dice.Options
	Throw  ThrowOptions
}

// DefaultOptions returns the tuning used when no config is loaded.
func DefaultOptions() Options {
	return Options{
		Physics:         physics.DefaultSettings(),
		FixedStep:       physics.DefaultFixedStep,
		MaxSubsteps:     physics.DefaultMaxSubsteps,
		Speed:           1,
		SettleThreshold: physics.DefaultSettleThreshold,
		MaxFrameDelta:   DefaultMaxFrameDelta,
		RecoverBelow:    DefaultRecoverBelow,
		CommandQueue:    DefaultCommandQueue,
		Camera:          camera.DefaultSettings(),
		Impact:          impact.DefaultOptions(),
		Dice:            dice.Options{PoolSize: dice.DefaultPoolSize},
		Throw:           DefaultThrowOptions(),
	}
}

// OptionsFromConfig maps the loaded configuration onto session options.
func OptionsFromConfig(cfg *config.Config) Options {
	o := DefaultOptions()
	if cfg == nil {
		return o
	}

	p := cfg.Physics
	o.FixedStep = p.FixedStep
	o.MaxSubsteps = p.MaxSubsteps
	o.Speed = p.Speed
	o.SettleThreshold = p.SettleThreshold
	o.Physics.Gravity = p.Gravity
	o.Physics.LinearDamping = p.LinearDamping
	o.Physics.AngularDamping = p.AngularDamping
	o.Physics.Restitution = p.Restitution
	o.Physics.Friction = p.Friction
	o.Physics.Density = p.Density
	o.Physics.Substeps = p.SolverSubsteps
	o.Physics.Bowl = physics.Bowl{
		Radius:            p.BowlRadius,
		TopRadius:         p.BowlTopRadius,
		WallHeight:        p.WallHeight,
		GroundRestitution: p.GroundRestitution,
		GroundFriction:    p.GroundFriction,
		WallRestitution:   p.WallRestitution,
		WallFriction:      p.WallFriction,
	}

	c := cfg.Camera
	o.Camera.SettleDuration = c.SettleDuration
	o.Camera.Radius = float32(c.OrbitRadius)
	o.Camera.Height = float32(c.OrbitHeight)
	o.Camera.RotationSpeed = c.RotationSpeed
	o.Camera.OrbitLerp = float32(c.OrbitLerp)
	o.Camera.FollowLerp = float32(c.FollowLerp)
	if c.FOV > 0 {
		o.Camera.FOV = c.FOV
	}

	a := cfg.Audio
	o.Impact.Cooldown = a.Cooldown
	o.Impact.MinSpeed = a.MinSpeed
	o.Impact.Exponent = a.IntensityExponent
	o.Impact.Die = impact.Profile(a.Die)
	o.Impact.Bowl = impact.Profile(a.Bowl)

	d := cfg.Dice
	o.Dice = dice.Options{PoolSize: d.PoolSize, Wireframes: cfg.Graphics.Wireframes}
	o.Throw = ThrowOptions{
		MinHeight:       d.MinHeight,
		MaxHeight:       d.MaxHeight,
		Spacing:         d.Spacing,
		LaunchSpeed:     d.ThrowVelocity,
		Jitter:          d.VelocityJitter,
		AngularVelocity: d.AngularVelocity,
		RecoverX:        -0.8 * d.ThrowRadius,
		RecoverHeight:   d.ThrowHeight,
	}
	return o
}
