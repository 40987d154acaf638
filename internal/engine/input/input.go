// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventSurfaceLost
	EventSurfaceRestored
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	Repeat bool
}

// Input handles all input processing.
type Input struct {
	events   []Event
	bindings Bindings
}

// New creates an input handler with the given key bindings.
func New(bindings Bindings) *Input {
	if bindings == nil {
		bindings = DefaultBindings()
	}
	return &Input{
		events:   make([]Event, 0, 16),
		bindings: bindings,
	}
}

// Update polls SDL events and converts them to app events.
// Returns true if the app should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.translate(event) {
			return true
		}
	}
	return false
}

func (i *Input) translate(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.events = append(i.events, Event{Type: EventQuit})
		return true

	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			i.events = append(i.events, Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			})
		case sdl.WINDOWEVENT_MINIMIZED, sdl.WINDOWEVENT_HIDDEN:
			i.events = append(i.events, Event{Type: EventSurfaceLost})
		case sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_SHOWN, sdl.WINDOWEVENT_EXPOSED:
			i.events = append(i.events, Event{Type: EventSurfaceRestored})
		}

	case *sdl.KeyboardEvent:
		ev := Event{Key: e.Keysym.Scancode, Repeat: e.Repeat != 0}
		switch e.Type {
		case sdl.KEYDOWN:
			ev.Type = EventKeyDown
		case sdl.KEYUP:
			ev.Type = EventKeyUp
		default:
			return false
		}
		i.events = append(i.events, ev)
	}
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Actions returns the bound actions of key presses from the last Update,
// in order. Auto repeats are ignored.
func (i *Input) Actions() []Action {
	return i.bindings.Actions(i.events)
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
