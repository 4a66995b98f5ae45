package input

import (
	"weatherunit-go/types"
	"weatherunit-go/x/mathx"
)

// -----------------------------------------------------------------------------
// Button input
//
// Debounces the four buttons and turns stable level changes into
// press-edge events. Sampled once per tick from the main loop; holding a
// button produces exactly one event per press.
// -----------------------------------------------------------------------------

// Handler tracks debounce state for every button line.
type Handler struct {
	debounceTicks int
	stable        [types.ButtonCount]bool // last debounced level, true = pressed
	candidate     [types.ButtonCount]bool // level being counted towards stable
	count         [types.ButtonCount]int  // consecutive ticks candidate has held
}

func New(cfg types.ButtonConfig) *Handler {
	return &Handler{debounceTicks: mathx.Clamp(cfg.DebounceTicks, 1, 100)}
}

// Sample feeds one tick's raw levels (true = pressed) and returns the
// press events produced this tick. A level must hold for the configured
// number of consecutive ticks before it becomes the debounced state;
// only the released-to-pressed edge emits an event. Simultaneous presses
// all emit, in line order.
func (h *Handler) Sample(levels [types.ButtonCount]bool) []types.ButtonEvent {
	var events []types.ButtonEvent
	for i := 0; i < int(types.ButtonCount); i++ {
		if levels[i] != h.candidate[i] {
			h.candidate[i] = levels[i]
			h.count[i] = 1
		} else if h.count[i] < h.debounceTicks {
			h.count[i]++
		}
		if h.count[i] < h.debounceTicks || h.candidate[i] == h.stable[i] {
			continue
		}
		h.stable[i] = h.candidate[i]
		if h.stable[i] {
			events = append(events, types.ButtonEvent(i))
		}
	}
	return events
}

// Pressed reports the current debounced level of one button.
func (h *Handler) Pressed(b types.ButtonEvent) bool {
	return h.stable[int(b)]
}
