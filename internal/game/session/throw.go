package session

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// ThrowOptions shapes where dice start and how hard they are thrown.
type ThrowOptions struct {
	MinHeight float64
	MaxHeight float64
	// Spacing separates neighbouring dice along X.
	Spacing float64
	// LaunchSpeed is the upward launch velocity.
	LaunchSpeed float64
	// Jitter bounds the random horizontal velocity on each axis.
	Jitter float64
	// AngularVelocity bounds the random spin on each axis.
	AngularVelocity float64
	// RecoverX and RecoverHeight place dice thrown back in after falling out.
	RecoverX      float64
	RecoverHeight float64
}

// DefaultThrowOptions returns the stock throw.
func DefaultThrowOptions() ThrowOptions {
	return ThrowOptions{
		MinHeight:       6,
		MaxHeight:       8,
		Spacing:         2.5,
		LaunchSpeed:     15,
		Jitter:          10,
		AngularVelocity: 15,
		RecoverX:        -8,
		RecoverHeight:   8,
	}
}

// Launch is the initial state of one thrown die.
type Launch struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// row returns the X offset of die i in a row of n centered on 0.
func row(i, n int, spacing float64) float64 {
	return (float64(i) - float64(n-1)/2) * spacing
}

func symmetric(rng *rand.Rand, bound float64) float64 {
	return rng.Float64()*2*bound - bound
}

func randomVec(rng *rand.Rand, bound float64) mgl64.Vec3 {
	return mgl64.Vec3{symmetric(rng, bound), symmetric(rng, bound), symmetric(rng, bound)}
}

// randomRotation returns a uniformly distributed orientation.
func randomRotation(rng *rand.Rand) mgl64.Quat {
	for {
		q := mgl64.Quat{W: symmetric(rng, 1), V: randomVec(rng, 1)}
		if l := q.Len(); l > 1e-3 && l <= 1 {
			return q.Normalize()
		}
	}
}

// ThrowPlan lays out count dice in a row above the bowl with random height,
// spin and horizontal velocity.
func ThrowPlan(opts ThrowOptions, count int, rng *rand.Rand) []Launch {
	if count < 1 {
		return nil
	}
	plan := make([]Launch, count)
	span := max(opts.MaxHeight-opts.MinHeight, 0)
	for i := range plan {
		plan[i] = Launch{
			Position: mgl64.Vec3{
				row(i, count, opts.Spacing),
				opts.MinHeight + rng.Float64()*span,
				rng.Float64() - 0.5,
			},
			Rotation: randomRotation(rng),
			LinearVelocity: mgl64.Vec3{
				symmetric(rng, opts.Jitter),
				opts.LaunchSpeed,
				symmetric(rng, opts.Jitter),
			},
			AngularVelocity: randomVec(rng, opts.AngularVelocity),
		}
	}
	return plan
}

// Recovery returns the launch that throws die i of n back into the bowl from
// the side after it fell out.
func Recovery(opts ThrowOptions, i, n int, rng *rand.Rand) Launch {
	return Launch{
		Position: mgl64.Vec3{
			opts.RecoverX,
			opts.RecoverHeight + rng.Float64()*2,
			row(i, n, opts.Spacing),
		},
		Rotation:        randomRotation(rng),
		LinearVelocity:  mgl64.Vec3{rng.Float64()*12 - 2, 8, rng.Float64()*6 - 3},
		AngularVelocity: randomVec(rng, opts.AngularVelocity/2),
	}
}
