package check

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	dietype "github.com/Faultbox/dicebowl/pkg/dice"
)

// Roller produces n values of one die type.
type Roller interface {
	Roll(ctx context.Context, t dietype.Type, n int) ([]int, error)
}

// RollerFunc adapts a function to Roller.
type RollerFunc func(ctx context.Context, t dietype.Type, n int) ([]int, error)

// Roll implements Roller.
func (f RollerFunc) Roll(ctx context.Context, t dietype.Type, n int) ([]int, error) {
	return f(ctx, t, n)
}

// RandomRoller rolls with a pseudo-random generator instead of the physics
// simulation.
type RandomRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomRoller creates a roller seeded with seed.
func NewRandomRoller(seed uint64) *RandomRoller {
	return &RandomRoller{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Roll implements Roller.
func (r *RandomRoller) Roll(ctx context.Context, t dietype.Type, n int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !t.Valid() {
		return nil, fmt.Errorf("roll: %w: %d", dietype.ErrUnsupportedType, t)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrRollCount, n)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, n)
	for i := range out {
		if t == dietype.D100 {
			out[i] = r.rng.IntN(10) * 10
		} else {
			out[i] = r.rng.IntN(t.Sides()) + 1
		}
	}
	return out, nil
}

// Fixed replays a script of values, for tests and replays.
type Fixed struct {
	mu     sync.Mutex
	values []int
}

// NewFixed creates a roller that returns values in order.
func NewFixed(values ...int) *Fixed {
	return &Fixed{values: values}
}

// Roll implements Roller.
func (f *Fixed) Roll(_ context.Context, _ dietype.Type, n int) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n > len(f.values) {
		return nil, fmt.Errorf("%w: %d scripted, %d wanted", ErrRollCount, len(f.values), n)
	}
	out := f.values[:n:n]
	f.values = f.values[n:]
	return out, nil
}
