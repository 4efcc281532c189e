package terminal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"gridpilot/internal/audio"
	"gridpilot/internal/common"
	"gridpilot/internal/simulation"
)

// Glyph is how one kind of cell is drawn.
type Glyph struct {
	Rune  rune
	Style tcell.Style
}

// Glyphs used for the board.
var Glyphs = map[simulation.CellKind]Glyph{
	simulation.CellAgent:    {'▲', tcell.StyleDefault.Foreground(tcell.ColorBlue)},
	simulation.CellGoal:     {'★', tcell.StyleDefault.Foreground(tcell.ColorGreen)},
	simulation.CellObstacle: {'█', tcell.StyleDefault.Foreground(tcell.ColorRed)},
	simulation.CellRoute:    {'•', tcell.StyleDefault.Foreground(tcell.ColorYellow)},
	simulation.CellVisited:  {'○', tcell.StyleDefault.Foreground(tcell.ColorPurple)},
	simulation.CellEmpty:    {'·', tcell.StyleDefault.Foreground(tcell.ColorTeal)},
}

var (
	styleHeader = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleInfo   = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleGood   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleBad    = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// boardTop is the screen row of the first grid row.
const boardTop = 2

// Frontend draws the simulation on a terminal and reads keys.
type Frontend struct {
	screen tcell.Screen
	events chan tcell.Event
	chime  audio.Chimer

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// New initializes the screen and starts reading its events.
func New(screen tcell.Screen, chime audio.Chimer) (*Frontend, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	if chime == nil {
		chime = audio.Silent{}
	}
	screen.HideCursor()

	f := &Frontend{
		screen:  screen,
		events:  make(chan tcell.Event, 100),
		chime:   chime,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go f.pump()
	return f, nil
}

// pump forwards screen events until the screen is finalized or the frontend closed.
func (f *Frontend) pump() {
	defer close(f.stopped)
	for {
		ev := f.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case f.events <- ev:
		case <-f.done:
			return
		}
	}
}

// Close restores the terminal and stops the event goroutine. Later calls do nothing.
func (f *Frontend) Close() {
	f.closeOnce.Do(func() {
		close(f.done)
		f.chime.Close()
		f.screen.Fini()
	})
}

// Render draws header, board and status lines.
func (f *Frontend) Render(snap simulation.Snapshot, last simulation.Outcome) error {
	f.chime.Notify(last.Event)

	s := f.screen
	s.Clear()

	drawText(s, 0, 0, styleHeader, fmt.Sprintf("=== GRID WORLD with BFS [%s] ===", snap.Mode))
	drawText(s, 0, 1, styleHeader, "Controls: Arrows/WASD | Q: Autopilot | R: Restart | ESC: Exit")

	for r := 0; r < snap.Height; r++ {
		for c := 0; c < snap.Width; c++ {
			g := Glyphs[snap.Cell(common.NewPosition(r, c))]
			s.SetContent(c*2, boardTop+r, g.Rune, nil, g.Style)
		}
	}

	y := boardTop + snap.Height + 1
	drawText(s, 0, y, styleInfo, fmt.Sprintf("Agent: %s | Target: %s | Obstacles: %d | Episode: %d",
		snap.Agent, snap.Goal, len(snap.Obstacles), snap.Episode.Number))
	y++
	if snap.Mode == simulation.Autopilot && len(snap.RemainingPath) > 0 {
		drawText(s, 0, y, styleHeader, fmt.Sprintf("Steps left: %d", len(snap.RemainingPath)))
		y++
	}
	if last.Event == simulation.EventMoved || last.Event == simulation.EventBlocked || last.Event == simulation.EventGoalReached {
		drawText(s, 0, y, styleHeader, fmt.Sprintf("Reward: %.1f", last.Step.Reward))
		y++
	}
	if msg := last.Event.Message(); msg != "" {
		style := styleHeader
		switch last.Event {
		case simulation.EventGoalReached, simulation.EventAutopilotOn:
			style = styleGood
		case simulation.EventNoPath, simulation.EventPathExhausted, simulation.EventBlocked:
			style = styleBad
		}
		drawText(s, 0, y, style, msg)
	}

	s.Show()
	return nil
}

// Poll waits for a key that maps to a command. Resize events redraw and keep waiting.
func (f *Frontend) Poll(ctx context.Context, timeout time.Duration) (simulation.Command, bool, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return simulation.Command{}, false, ctx.Err()
		case <-expired:
			return simulation.Command{}, false, nil
		case ev := <-f.events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				cmd, action := MapKey(ev)
				switch action {
				case KeyQuit:
					return simulation.Command{}, false, simulation.ErrQuit
				case KeyCommand:
					return cmd, true, nil
				}
			case *tcell.EventResize:
				f.screen.Sync()
			}
		}
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
