package audio

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"
)

// Sound identifies a loaded sample.
type Sound uint8

const (
	SoundDie Sound = iota
	SoundBowl
)

func (s Sound) String() string {
	switch s {
	case SoundDie:
		return "die"
	case SoundBowl:
		return "bowl"
	default:
		return fmt.Sprintf("sound(%d)", uint8(s))
	}
}

// LoadSound decodes WAV data into memory under s, replacing any previous sample.
func (m *Manager) LoadSound(s Sound, r io.Reader) error {
	streamer, format, err := wav.Decode(io.NopCloser(r))
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return fmt.Errorf("read wav: %w", err)
	}

	m.mu.Lock()
	m.sounds[s] = buf
	m.mu.Unlock()
	return nil
}

// LoadFile loads a WAV file under s.
func (m *Manager) LoadFile(s Sound, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s, err)
	}
	defer f.Close()

	if err := m.LoadSound(s, f); err != nil {
		return fmt.Errorf("load %s from %s: %w", s, path, err)
	}
	m.log.Debug("sound loaded", zap.Stringer("sound", s), zap.String("path", path))
	return nil
}

// Loaded reports whether a sample is present for s.
func (m *Manager) Loaded(s Sound) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sounds[s] != nil
}

// LoadAsync loads files in the background. Failures are logged and sent on
// the returned channel, which is closed when loading ends. A sound that
// fails to load stays silent.
func (m *Manager) LoadAsync(ctx context.Context, files map[Sound]string) <-chan error {
	errs := make(chan error, len(files))
	go func() {
		defer close(errs)
		for s, path := range files {
			if ctx.Err() != nil {
				errs <- ctx.Err()
				return
			}
			if path == "" {
				continue
			}
			if err := m.LoadFile(s, path); err != nil {
				m.log.Warn("sound unavailable", zap.Stringer("sound", s), zap.Error(err))
				errs <- err
			}
		}
	}()
	return errs
}
