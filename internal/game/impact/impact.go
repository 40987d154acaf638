// Package impact turns simulation collision events into collision sounds.
package impact

import (
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/dicebowl/internal/engine/audio"
	"github.com/Faultbox/dicebowl/internal/engine/physics"
)

// Player accepts playback requests without blocking.
type Player interface {
	Play(req audio.Request) error
}

// World is the part of the simulation the bridge reads.
type World interface {
	DrainCollisionEvents(fn func(physics.CollisionEvent))
	Body(h physics.Handle) (*physics.Body, bool)
}

// Profile shapes volume and pitch for one kind of collision.
type Profile struct {
	BaseVolume     float64
	VelocityScale  float64
	MinVolume      float64
	MaxVolume      float64
	PitchVariation float64
}

// Options configures a Bridge.
type Options struct {
	Cooldown time.Duration
	// MinSpeed silences contacts slower than this relative speed.
	MinSpeed float64
	// Exponent applied to the scaled speed; values above 1 make soft hits quieter.
	Exponent float64
	Die      Profile
	Bowl     Profile
}

// DefaultOptions returns the tuning used by the desktop client.
func DefaultOptions() Options {
	return Options{
		Cooldown: 100 * time.Millisecond,
		MinSpeed: 0.5,
		Exponent: 1.5,
		Die: Profile{
			BaseVolume:     0.7,
			VelocityScale:  40,
			MinVolume:      0.05,
			MaxVolume:      1,
			PitchVariation: 0.2,
		},
		Bowl: Profile{
			BaseVolume:     0.8,
			VelocityScale:  35,
			MinVolume:      0.05,
			MaxVolume:      1,
			PitchVariation: 0.1,
		},
	}
}

// Stats counts what happened to drained events.
type Stats struct {
	Events     uint64
	Unresolved uint64
	Quiet      uint64
	Throttled  uint64
	Requested  uint64
	Rejected   uint64
}

// Bridge maps collision begin events to audio requests.
type Bridge struct {
	opts   Options
	player Player
	log    *zap.Logger

	now  func() time.Time
	rand func() float64

	last    time.Time
	hasLast bool
	stats   Stats
}

// New creates a bridge. A nil player drops every request.
func New(opts Options, player Player, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Exponent <= 0 {
		opts.Exponent = 1
	}
	return &Bridge{
		opts:   opts,
		player: player,
		log:    log,
		now:    time.Now,
		rand:   rand.Float64,
	}
}

// SetClock replaces the time source used for the cooldown window.
func (b *Bridge) SetClock(now func() time.Time) { b.now = now }

// SetRand replaces the source of pitch jitter. fn must return values in [0,1).
func (b *Bridge) SetRand(fn func() float64) { b.rand = fn }

// Stats returns counters since creation.
func (b *Bridge) Stats() Stats { return b.stats }

// Hook adapts the bridge to a driver step hook. Simulations that cannot
// resolve bodies have their events discarded.
func (b *Bridge) Hook() physics.StepHook {
	return func(sim physics.Simulation) {
		if w, ok := sim.(World); ok {
			b.OnPhysicsStep(w)
			return
		}
		sim.DrainCollisionEvents(nil)
	}
}

// OnPhysicsStep drains the events of one fixed step. End events are ignored.
func (b *Bridge) OnPhysicsStep(w World) {
	if w == nil {
		return
	}
	w.DrainCollisionEvents(func(ev physics.CollisionEvent) {
		if !ev.Started {
			return
		}
		b.stats.Events++
		b.handle(w, ev)
	})
}

func (b *Bridge) handle(w World, ev physics.CollisionEvent) {
	ba, okA := w.Body(ev.A)
	bb, okB := w.Body(ev.B)
	if !okA || !okB {
		b.stats.Unresolved++
		return
	}

	speed := ba.LinearVelocity().Sub(bb.LinearVelocity()).Len()
	if !(speed >= b.opts.MinSpeed) {
		b.stats.Quiet++
		return
	}

	now := b.now()
	if b.hasLast && now.Sub(b.last) < b.opts.Cooldown {
		b.stats.Throttled++
		return
	}
	b.last, b.hasLast = now, true

	bowl := ba.Static() || bb.Static()
	req := b.request(speed, bowl)
	b.stats.Requested++

	if b.player == nil {
		b.stats.Rejected++
		return
	}
	if err := b.player.Play(req); err != nil {
		b.stats.Rejected++
		b.log.Debug("collision sound dropped", zap.Error(err), zap.Bool("bowl", bowl))
	}
}

func (b *Bridge) request(speed float64, bowl bool) audio.Request {
	p, sound := b.opts.Die, audio.SoundDie
	if bowl {
		p, sound = b.opts.Bowl, audio.SoundBowl
	}
	return audio.Request{
		Sound:  sound,
		Volume: Intensity(p, speed, b.opts.Exponent),
		Rate:   1 + (2*b.rand()-1)*p.PitchVariation,
	}
}

// Intensity maps an impact speed to a playback volume.
func Intensity(p Profile, speed, exponent float64) float64 {
	if p.VelocityScale <= 0 || speed <= 0 {
		return p.MinVolume * p.BaseVolume
	}
	v := math.Pow(speed/p.VelocityScale, exponent)
	v = math.Max(v, p.MinVolume)
	v = math.Min(v, p.MaxVolume)
	return v * p.BaseVolume
}
