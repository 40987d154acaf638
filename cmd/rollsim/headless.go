package main

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/Faultbox/dicebowl/internal/config"
	"github.com/Faultbox/dicebowl/internal/game/check"
	"github.com/Faultbox/dicebowl/internal/game/session"
	"github.com/Faultbox/dicebowl/internal/logger"
)

// idleWait is the real time slept between frames while nothing moves.
const idleWait = 5 * time.Millisecond

// bowl is a session without window or audio, driven by a simulated clock
// that advances one fixed step per frame.
type bowl struct {
	session *session.Session
	roller  check.Roller
	step    time.Duration
	cancel  context.CancelFunc
	done    chan struct{}
}

// newBowl starts the frame loop. random swaps the physical dice for a
// seeded number source; the loop still runs so throws stay available.
func newBowl(cfg *config.Config, random bool) *bowl {
	opts := session.OptionsFromConfig(cfg)
	s := session.New(opts, nil, nil, nil, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), logger.Named("session"))

	step := time.Duration(opts.FixedStep * float64(time.Second))
	if step <= 0 {
		step = time.Second / 120
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &bowl{
		session: s,
		step:    step,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	if random {
		b.roller = check.NewRandomRoller(rand.Uint64())
	} else {
		b.roller = session.NewPhysicalRoller(s)
	}
	go b.run(ctx)
	return b
}

func (b *bowl) run(ctx context.Context) {
	defer close(b.done)
	clock := time.Now()
	for ctx.Err() == nil {
		clock = clock.Add(b.step)
		b.session.Frame(clock)
		if b.session.Dice().Len() > 0 && !b.session.AllSettled() {
			continue
		}
		select {
		case <-ctx.Done():
		case <-time.After(idleWait):
		}
	}
}

// Close stops the frame loop and then the session.
func (b *bowl) Close() error {
	b.cancel()
	<-b.done
	return b.session.Close()
}
