package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/Faultbox/dicebowl/internal/engine/geometry"
	"github.com/Faultbox/dicebowl/internal/game/check"
	dietype "github.com/Faultbox/dicebowl/pkg/dice"
)

var _ check.Roller = (*PhysicalRoller)(nil)

// PhysicalRoller rolls by throwing dice into a running session and reading
// them once they settle. Roll may be called from any goroutine while the
// session's render loop keeps calling Frame; concurrent rolls take turns.
type PhysicalRoller struct {
	cmds chan<- Command
	turn chan struct{}

	mu    sync.Mutex
	looks []geometry.Appearance
}

// NewPhysicalRoller creates a roller that throws into s.
func NewPhysicalRoller(s *Session) *PhysicalRoller {
	return &PhysicalRoller{cmds: s.Commands(), turn: make(chan struct{}, 1)}
}

// SetAppearances colors the dice of the following throws in order.
func (r *PhysicalRoller) SetAppearances(looks ...geometry.Appearance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.looks = append(r.looks[:0], looks...)
}

// Roll throws n dice of type t and waits for them to settle.
func (r *PhysicalRoller) Roll(ctx context.Context, t dietype.Type, n int) ([]int, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("roll: %w: %d", dietype.ErrUnsupportedType, t)
	}
	if n < 1 {
		return nil, fmt.Errorf("roll: count must be positive, got %d", n)
	}

	select {
	case r.turn <- struct{}{}:
		defer func() { <-r.turn }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	r.mu.Lock()
	looks := append([]geometry.Appearance(nil), r.looks...)
	r.mu.Unlock()

	done := make(chan Outcome, 1)
	cmd := func(s *Session) {
		ids, err := s.Throw(t, n, looks...)
		if err != nil {
			done <- Outcome{Type: t, Err: err}
			return
		}
		s.Await(t, ids, done)
	}

	select {
	case r.cmds <- cmd:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case out := <-done:
		if out.Err != nil {
			return nil, fmt.Errorf("roll %s: %w", t, out.Err)
		}
		return out.Values, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
