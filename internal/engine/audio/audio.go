// Package audio plays collision sounds through a bounded request queue.
//
// Requests are fire-and-forget: Play never blocks the caller. A single worker
// goroutine turns queued requests into beep voices, and at most MaxVoices
// voices sound at once. Requests made before Init, while muted, or once the
// queue is full are rejected and counted.
package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"go.uber.org/zap"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

const resampleQuality = 3

var (
	ErrNotInitialized = errors.New("audio not initialized")
	ErrMuted          = errors.New("audio muted")
	ErrQueueFull      = errors.New("audio queue full")
)

// Request asks for one playback of a loaded sound.
type Request struct {
	Sound Sound
	// Volume is the linear gain in [0,1] before master and sfx volume.
	Volume float64
	// Rate is the playback speed; 1 plays at the recorded pitch.
	Rate float64
}

// Options configures a Manager.
type Options struct {
	QueueSize    int
	MaxVoices    int
	MasterVolume float64
	SFXVolume    float64
	Muted        bool
}

// DefaultOptions returns the queue and voice limits used by the client.
func DefaultOptions() Options {
	return Options{
		QueueSize:    10,
		MaxVoices:    3,
		MasterVolume: 1.0,
		SFXVolume:    1.0,
	}
}

// Manager owns the output sink, the loaded sounds and the playback worker.
type Manager struct {
	mu  sync.RWMutex
	log *zap.Logger

	sink        Sink
	initialized bool
	sampleRate  beep.SampleRate

	// Volume settings (0.0 to 1.0)
	masterVolume float64
	sfxVolume    float64
	muted        bool

	sounds map[Sound]*beep.Buffer

	queueSize int
	maxVoices int32
	queue     chan Request
	stop      chan struct{}
	done      chan struct{}

	voices  atomic.Int32
	played  atomic.Uint64
	dropped atomic.Uint64
}

// New creates an audio manager. A nil sink plays through the system speaker.
func New(opts Options, sink Sink, log *zap.Logger) *Manager {
	if sink == nil {
		sink = SpeakerSink{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.MaxVoices < 1 {
		opts.MaxVoices = 1
	}
	return &Manager{
		log:          log,
		sink:         sink,
		masterVolume: clamp(opts.MasterVolume, 0, 1),
		sfxVolume:    clamp(opts.SFXVolume, 0, 1),
		muted:        opts.Muted,
		sounds:       make(map[Sound]*beep.Buffer),
		queueSize:    opts.QueueSize,
		maxVoices:    int32(opts.MaxVoices),
	}
}

// Init opens the sink and starts the playback worker.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if err := m.sink.Init(DefaultSampleRate); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	m.sampleRate = DefaultSampleRate
	m.queue = make(chan Request, m.queueSize)
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.loop(m.queue, m.stop, m.done)

	m.initialized = true
	m.log.Debug("audio initialized", zap.Int("sample_rate", int(m.sampleRate)))
	return nil
}

// Close stops the worker. Voices already playing finish on their own.
// It is safe to call more than once and before Init.
func (m *Manager) Close() {
	m.mu.Lock()
	if !m.initialized {
		m.mu.Unlock()
		return
	}
	m.initialized = false
	stop, done := m.stop, m.done
	m.mu.Unlock()

	close(stop)
	<-done
}

// IsInitialized returns whether the audio system is initialized.
func (m *Manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// SetMuted toggles rejection of new requests.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

// Muted reports whether new requests are rejected.
func (m *Manager) Muted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.muted
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
}

// SetSFXVolume sets the SFX volume (0.0 to 1.0).
func (m *Manager) SetSFXVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sfxVolume = clamp(vol, 0, 1)
}

// MasterVolume returns the master volume.
func (m *Manager) MasterVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masterVolume
}

// SFXVolume returns the SFX volume.
func (m *Manager) SFXVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sfxVolume
}

// Voices returns the number of sounds currently playing.
func (m *Manager) Voices() int { return int(m.voices.Load()) }

// Played returns how many requests became voices.
func (m *Manager) Played() uint64 { return m.played.Load() }

// Dropped returns how many requests were discarded by the queue or voice limit.
func (m *Manager) Dropped() uint64 { return m.dropped.Load() }

// Play queues a request without blocking.
func (m *Manager) Play(req Request) error {
	m.mu.RLock()
	initialized, muted, queue := m.initialized, m.muted, m.queue
	m.mu.RUnlock()

	if !initialized {
		return ErrNotInitialized
	}
	if muted {
		return ErrMuted
	}

	select {
	case queue <- req:
		return nil
	default:
		m.dropped.Add(1)
		return ErrQueueFull
	}
}

func (m *Manager) loop(queue <-chan Request, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case req := <-queue:
			m.start(req)
		}
	}
}

// start turns a request into a voice on the sink.
func (m *Manager) start(req Request) {
	if m.voices.Load() >= m.maxVoices {
		m.dropped.Add(1)
		m.log.Debug("voice limit reached", zap.Stringer("sound", req.Sound))
		return
	}

	m.mu.RLock()
	buf := m.sounds[req.Sound]
	gain := clamp(req.Volume, 0, 1) * m.masterVolume * m.sfxVolume
	sampleRate := m.sampleRate
	m.mu.RUnlock()

	if buf == nil {
		m.log.Debug("sound not loaded", zap.Stringer("sound", req.Sound))
		return
	}
	if gain <= 0 {
		return
	}

	rate := req.Rate
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = 1
	}
	ratio := float64(buf.Format().SampleRate) / float64(sampleRate) * rate

	var s beep.Streamer = buf.Streamer(0, buf.Len())
	if ratio != 1 {
		s = beep.ResampleRatio(resampleQuality, ratio, s)
	}
	vol := &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   gainToVolume(gain),
	}

	m.voices.Add(1)
	m.played.Add(1)
	m.sink.Play(beep.Seq(vol, beep.Callback(func() {
		m.voices.Add(-1)
	})))
}

// gainToVolume converts a linear gain to the base-2 exponent effects.Volume uses.
func gainToVolume(gain float64) float64 {
	if gain <= 0 {
		return math.Inf(-1)
	}
	return math.Log2(gain)
}

func clamp(v, min, max float64) float64 {
	if v < min || math.IsNaN(v) {
		return min
	}
	if v > max {
		return max
	}
	return v
}
