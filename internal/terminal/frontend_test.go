package terminal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridpilot/internal/common"
	"gridpilot/internal/gridworld"
	"gridpilot/internal/simulation"
)

type recordingChimer struct {
	events []simulation.Event
	closed bool
}

func (r *recordingChimer) Notify(e simulation.Event) { r.events = append(r.events, e) }
func (r *recordingChimer) Close()                    { r.closed = true }

func newFrontend(t *testing.T) (*Frontend, tcell.SimulationScreen, *recordingChimer) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	chime := &recordingChimer{}
	fe, err := New(screen, chime)
	require.NoError(t, err)
	screen.SetSize(80, 25)
	t.Cleanup(fe.Close)
	return fe, screen, chime
}

func newSim(t *testing.T, layout string) *simulation.Simulation {
	t.Helper()
	g, err := gridworld.FromLayout(layout)
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	return simulation.NewWithGrid(g, 0, logger)
}

func rowText(screen tcell.SimulationScreen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestMapKey(t *testing.T) {
	tests := []struct {
		name   string
		ev     *tcell.EventKey
		cmd    simulation.Command
		action KeyAction
	}{
		{"arrow up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), simulation.Move(common.Up), KeyCommand},
		{"arrow right", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), simulation.Move(common.Right), KeyCommand},
		{"w", tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), simulation.Move(common.Up), KeyCommand},
		{"a", tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), simulation.Move(common.Left), KeyCommand},
		{"s", tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone), simulation.Move(common.Down), KeyCommand},
		{"d", tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone), simulation.Move(common.Right), KeyCommand},
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), simulation.ToggleAutopilot(), KeyCommand},
		{"r", tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), simulation.ResetEpisode(), KeyCommand},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), simulation.Command{}, KeyQuit},
		{"ctrl-c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), simulation.Command{}, KeyQuit},
		{"x", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), simulation.Command{}, KeyIgnore},
		{"tab", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), simulation.Command{}, KeyIgnore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, action := MapKey(tt.ev)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.cmd, cmd)
		})
	}
}

func TestRenderBoard(t *testing.T) {
	fe, screen, chime := newFrontend(t)
	sim := newSim(t, `
A.#
..G`)

	require.NoError(t, fe.Render(sim.Snapshot(), simulation.Outcome{}))

	assert.Contains(t, rowText(screen, 0, 80), "[MANUAL]")
	assert.Equal(t, "▲ · █", rowText(screen, boardTop, 80))
	assert.Equal(t, "· · ★", rowText(screen, boardTop+1, 80))
	assert.Contains(t, rowText(screen, boardTop+3, 80), "Agent: (0,0) | Target: (1,2) | Obstacles: 1")

	_, _, style, _ := screen.GetContent(0, boardTop)
	assert.Equal(t, Glyphs[simulation.CellAgent].Style, style)
	assert.Equal(t, []simulation.Event{simulation.EventNone}, chime.events)
}

func TestRenderAutopilotRoute(t *testing.T) {
	fe, screen, _ := newFrontend(t)
	sim := newSim(t, `
A..
..G`)
	out := sim.Handle(simulation.ToggleAutopilot())
	require.Equal(t, simulation.EventAutopilotOn, out.Event)

	require.NoError(t, fe.Render(sim.Snapshot(), out))
	assert.Contains(t, rowText(screen, 0, 80), "[AUTOPILOT]")
	// Route is Down, Right, Right.
	assert.Equal(t, "▲ ○ ○", rowText(screen, boardTop, 80))
	assert.Equal(t, "• • ★", rowText(screen, boardTop+1, 80))
	assert.Equal(t, "Steps left: 3", rowText(screen, boardTop+4, 80))
	assert.Equal(t, "Autopilot activated!", rowText(screen, boardTop+5, 80))
}

func TestRenderReward(t *testing.T) {
	fe, screen, _ := newFrontend(t)
	sim := newSim(t, `
A#
.G`)
	out := sim.Handle(simulation.Move(common.Right))
	require.Equal(t, simulation.EventBlocked, out.Event)

	require.NoError(t, fe.Render(sim.Snapshot(), out))
	assert.Equal(t, "Reward: -1.0", rowText(screen, boardTop+4, 80))
}

func TestPollCommands(t *testing.T) {
	fe, screen, _ := newFrontend(t)
	ctx := context.Background()

	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'd', tcell.ModNone)
	cmd, ok, err := fe.Poll(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, simulation.Move(common.Right), cmd)

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	_, ok, err = fe.Poll(ctx, time.Second)
	assert.False(t, ok)
	assert.ErrorIs(t, err, simulation.ErrQuit)
}

func TestPollTimeoutAndCancel(t *testing.T) {
	fe, _, _ := newFrontend(t)

	_, ok, err := fe.Poll(context.Background(), 10*time.Millisecond)
	assert.NoError(t, err)
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err = fe.Poll(ctx, 0)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseStopsEventPumpWithFullBuffer(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	fe, err := New(screen, nil)
	require.NoError(t, err)

	// Nobody polls, so the pump fills the buffer and then blocks on the next event.
	for i := 0; i < 10000 && len(fe.events) < cap(fe.events); i++ {
		screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
		time.Sleep(100 * time.Microsecond)
	}
	require.Equal(t, cap(fe.events), len(fe.events))
	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)

	fe.Close()
	select {
	case <-fe.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("event goroutine still running after Close")
	}
	fe.Close()
}
