package audio

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Sink is where voices end up.
type Sink interface {
	Init(sr beep.SampleRate) error
	Play(s beep.Streamer)
}

// SpeakerSink plays through the system audio device.
type SpeakerSink struct {
	// BufferDuration sets device latency; zero means 1/30 s.
	BufferDuration time.Duration
}

// Init opens the device.
func (s SpeakerSink) Init(sr beep.SampleRate) error {
	d := s.BufferDuration
	if d <= 0 {
		d = time.Second / 30
	}
	return speaker.Init(sr, sr.N(d))
}

// Play mixes s into the device output.
func (SpeakerSink) Play(s beep.Streamer) {
	speaker.Play(s)
}
