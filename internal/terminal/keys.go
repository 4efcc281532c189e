package terminal

import (
	"github.com/gdamore/tcell/v2"

	"gridpilot/internal/common"
	"gridpilot/internal/simulation"
)

// KeyAction says what a key press means to the control loop.
type KeyAction int

const (
	KeyIgnore KeyAction = iota
	KeyCommand
	KeyQuit
)

// MapKey translates a key event: arrows or WASD move, q toggles the autopilot,
// r resets, Esc or Ctrl-C quits.
func MapKey(ev *tcell.EventKey) (simulation.Command, KeyAction) {
	switch ev.Key() {
	case tcell.KeyUp:
		return simulation.Move(common.Up), KeyCommand
	case tcell.KeyDown:
		return simulation.Move(common.Down), KeyCommand
	case tcell.KeyLeft:
		return simulation.Move(common.Left), KeyCommand
	case tcell.KeyRight:
		return simulation.Move(common.Right), KeyCommand
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return simulation.Command{}, KeyQuit
	case tcell.KeyRune:
		return mapRune(ev.Rune())
	}
	return simulation.Command{}, KeyIgnore
}

func mapRune(r rune) (simulation.Command, KeyAction) {
	switch r {
	case 'q', 'Q':
		return simulation.ToggleAutopilot(), KeyCommand
	case 'r', 'R':
		return simulation.ResetEpisode(), KeyCommand
	}
	if d, err := common.ParseDirection(string(r)); err == nil {
		return simulation.Move(d), KeyCommand
	}
	return simulation.Command{}, KeyIgnore
}
