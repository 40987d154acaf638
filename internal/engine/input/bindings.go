package input

import "github.com/veandco/go-sdl2/sdl"

// Action is something the user asks the client to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionThrow
	ActionNextType
	ActionPrevType
	ActionMoreDice
	ActionFewerDice
	ActionAttributeCheck
	ActionTalentCheck
	ActionNextAttribute
	ActionNextTalent
	ActionModifierUp
	ActionModifierDown
	ActionFaster
	ActionSlower
	ActionReset
	ActionWireframes
	ActionMute
	ActionScreenshot
)

var actionNames = [...]string{
	ActionNone:           "none",
	ActionQuit:           "quit",
	ActionThrow:          "throw",
	ActionNextType:       "next type",
	ActionPrevType:       "previous type",
	ActionMoreDice:       "more dice",
	ActionFewerDice:      "fewer dice",
	ActionAttributeCheck: "attribute check",
	ActionTalentCheck:    "talent check",
	ActionNextAttribute:  "next attribute",
	ActionNextTalent:     "next talent",
	ActionModifierUp:     "modifier up",
	ActionModifierDown:   "modifier down",
	ActionFaster:         "faster",
	ActionSlower:         "slower",
	ActionReset:          "reset",
	ActionWireframes:     "wireframes",
	ActionMute:           "mute",
	ActionScreenshot:     "screenshot",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// Bindings maps keys to actions.
type Bindings map[sdl.Scancode]Action

// DefaultBindings returns the stock keyboard layout.
func DefaultBindings() Bindings {
	return Bindings{
		sdl.SCANCODE_ESCAPE:      ActionQuit,
		sdl.SCANCODE_SPACE:       ActionThrow,
		sdl.SCANCODE_RIGHT:       ActionNextType,
		sdl.SCANCODE_LEFT:        ActionPrevType,
		sdl.SCANCODE_UP:          ActionMoreDice,
		sdl.SCANCODE_DOWN:        ActionFewerDice,
		sdl.SCANCODE_A:           ActionAttributeCheck,
		sdl.SCANCODE_T:           ActionTalentCheck,
		sdl.SCANCODE_TAB:         ActionNextAttribute,
		sdl.SCANCODE_N:           ActionNextTalent,
		sdl.SCANCODE_PAGEUP:      ActionModifierUp,
		sdl.SCANCODE_PAGEDOWN:    ActionModifierDown,
		sdl.SCANCODE_EQUALS:      ActionFaster,
		sdl.SCANCODE_KP_PLUS:     ActionFaster,
		sdl.SCANCODE_MINUS:       ActionSlower,
		sdl.SCANCODE_KP_MINUS:    ActionSlower,
		sdl.SCANCODE_R:           ActionReset,
		sdl.SCANCODE_W:           ActionWireframes,
		sdl.SCANCODE_M:           ActionMute,
		sdl.SCANCODE_F12:         ActionScreenshot,
		sdl.SCANCODE_PRINTSCREEN: ActionScreenshot,
	}
}

// Actions maps the key presses in events to actions.
func (b Bindings) Actions(events []Event) []Action {
	var out []Action
	for _, e := range events {
		if e.Type != EventKeyDown || e.Repeat {
			continue
		}
		if a, ok := b[e.Key]; ok && a != ActionNone {
			out = append(out, a)
		}
	}
	return out
}
