package visualization

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font/basicfont"

	"gridpilot/internal/audio"
	"gridpilot/internal/common"
	"gridpilot/internal/simulation"
)

const (
	lineHeight   = 16
	maxTweenTime = 150 * time.Millisecond
)

var (
	backgroundColor = color.RGBA{30, 30, 36, 255}
	emptyColor      = color.RGBA{46, 52, 64, 255}
	gridLineColor   = color.RGBA{30, 30, 36, 255}
	obstacleColor   = color.RGBA{191, 64, 64, 255}
	goalColor       = color.RGBA{80, 200, 120, 255}
	agentColor      = color.RGBA{80, 140, 255, 255}
	routeColor      = color.RGBA{235, 203, 80, 255}
	visitedColor    = color.RGBA{180, 120, 220, 160}
	hudColor        = color.RGBA{220, 220, 220, 255}
	alertColor      = color.RGBA{255, 110, 110, 255}
	successColor    = color.RGBA{120, 230, 150, 255}
)

// keyBindings are checked in order; the first key pressed this frame wins.
var keyBindings = []struct {
	key ebiten.Key
	cmd simulation.Command
}{
	{ebiten.KeyArrowUp, simulation.Move(common.Up)},
	{ebiten.KeyW, simulation.Move(common.Up)},
	{ebiten.KeyArrowDown, simulation.Move(common.Down)},
	{ebiten.KeyS, simulation.Move(common.Down)},
	{ebiten.KeyArrowLeft, simulation.Move(common.Left)},
	{ebiten.KeyA, simulation.Move(common.Left)},
	{ebiten.KeyArrowRight, simulation.Move(common.Right)},
	{ebiten.KeyD, simulation.Move(common.Right)},
	{ebiten.KeyQ, simulation.ToggleAutopilot()},
	{ebiten.KeyR, simulation.ResetEpisode()},
}

// pressedCommand returns the command bound to the first key reported by justPressed.
func pressedCommand(justPressed func(ebiten.Key) bool) (simulation.Command, bool) {
	for _, b := range keyBindings {
		if justPressed(b.key) {
			return b.cmd, true
		}
	}
	return simulation.Command{}, false
}

// Options configures a Renderer.
type Options struct {
	Pacing   simulation.Pacing
	CellSize int
	Chime    audio.Chimer
	Logger   logrus.FieldLogger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Renderer implements ebiten.Game. Keyboard commands are handled on the frame they
// arrive; autopilot actions are replayed one per pacing tick.
type Renderer struct {
	sim       *simulation.Simulation
	projector *Projector
	pacing    simulation.Pacing
	chime     audio.Chimer
	log       logrus.FieldLogger
	now       func() time.Time

	snap       simulation.Snapshot
	last       simulation.Outcome
	lastUpdate time.Time
	nextTick   time.Time
	pauseUntil time.Time

	// Drawn agent position, in fractional cells.
	agentRow, agentCol float32
	tweenRow, tweenCol *gween.Tween

	cursor        common.Position
	cursorOnBoard bool
	screenWidth   int
	screenHeight  int
}

// NewRenderer creates a window frontend for sim.
func NewRenderer(sim *simulation.Simulation, opts Options) *Renderer {
	if opts.Chime == nil {
		opts.Chime = audio.Silent{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	snap := sim.Snapshot()
	r := &Renderer{
		sim:       sim,
		projector: NewProjector(snap.Width, snap.Height, opts.CellSize),
		pacing:    opts.Pacing,
		chime:     opts.Chime,
		log:       opts.Logger,
		now:       opts.Clock,
		snap:      snap,
	}
	r.placeAgent(snap.Agent)
	r.lastUpdate = r.now()
	return r
}

// WindowSize is the initial window size for the board.
func (r *Renderer) WindowSize(cellSize int) (int, int) {
	return WindowSize(r.snap.Width, r.snap.Height, cellSize)
}

// Update reads input and advances the simulation.
func (r *Renderer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		r.log.Info("window frontend closed by user")
		return ebiten.Termination
	}
	r.cursor, r.cursorOnBoard = r.projector.ToCell(ebiten.CursorPosition())

	cmd, ok := pressedCommand(inpututil.IsKeyJustPressed)
	r.advance(r.now(), cmd, ok)
	return nil
}

// advance runs one frame of logic at time now, with an optional command.
func (r *Renderer) advance(now time.Time, cmd simulation.Command, hasCmd bool) {
	dt := float32(now.Sub(r.lastUpdate).Seconds())
	r.lastUpdate = now
	r.updateTween(dt)

	if now.Before(r.pauseUntil) {
		return
	}

	switch {
	case hasCmd:
		r.apply(now, r.sim.Handle(cmd))
	case r.sim.Mode() == simulation.Autopilot && !now.Before(r.nextTick):
		r.apply(now, r.sim.Tick())
	}
}

func (r *Renderer) apply(now time.Time, out simulation.Outcome) {
	// Keys pressed during replay neither delay the next tick nor hide the last message.
	if out.Event == simulation.EventIgnored {
		return
	}
	r.last = out
	r.chime.Notify(out.Event)
	r.snap = r.sim.Snapshot()

	switch out.Event {
	case simulation.EventMoved:
		r.moveAgent(r.snap.Agent)
	case simulation.EventGoalReached:
		r.pauseUntil = now.Add(r.pacing.GoalPause)
		r.placeAgent(r.snap.Agent)
	case simulation.EventPathExhausted:
		r.pauseUntil = now.Add(r.pacing.ExhaustedPause)
		r.placeAgent(r.snap.Agent)
	default:
		r.placeAgent(r.snap.Agent)
	}

	if r.sim.Mode() == simulation.Autopilot {
		r.nextTick = now.Add(r.pacing.Tick)
	}
}

// placeAgent jumps the drawn agent to p.
func (r *Renderer) placeAgent(p common.Position) {
	r.agentRow, r.agentCol = float32(p.Row), float32(p.Col)
	r.tweenRow, r.tweenCol = nil, nil
}

// moveAgent slides the drawn agent to p.
func (r *Renderer) moveAgent(p common.Position) {
	d := maxTweenTime
	if r.pacing.Tick > 0 && r.pacing.Tick < d {
		d = r.pacing.Tick
	}
	secs := float32(d.Seconds())
	r.tweenRow = gween.New(r.agentRow, float32(p.Row), secs, ease.OutQuad)
	r.tweenCol = gween.New(r.agentCol, float32(p.Col), secs, ease.OutQuad)
}

func (r *Renderer) updateTween(dt float32) {
	if r.tweenRow == nil {
		return
	}
	row, rowDone := r.tweenRow.Update(dt)
	col, colDone := r.tweenCol.Update(dt)
	r.agentRow, r.agentCol = row, col
	if rowDone && colDone {
		r.tweenRow, r.tweenCol = nil, nil
	}
}

// Draw renders the board and HUD.
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	cell := r.projector.CellSize()
	snap := r.snap
	for row := 0; row < snap.Height; row++ {
		for col := 0; col < snap.Width; col++ {
			p := common.NewPosition(row, col)
			x, y := r.projector.ToScreen(float64(row), float64(col))
			cx, cy := r.projector.Center(p)

			switch snap.Cell(p) {
			case simulation.CellObstacle:
				vector.DrawFilledRect(screen, x, y, cell, cell, obstacleColor, false)
			case simulation.CellGoal:
				vector.DrawFilledRect(screen, x, y, cell, cell, emptyColor, false)
				vector.DrawFilledRect(screen, x+cell/4, y+cell/4, cell/2, cell/2, goalColor, true)
			case simulation.CellRoute:
				vector.DrawFilledRect(screen, x, y, cell, cell, emptyColor, false)
				vector.DrawFilledCircle(screen, cx, cy, cell/5, routeColor, true)
			case simulation.CellVisited:
				vector.DrawFilledRect(screen, x, y, cell, cell, emptyColor, false)
				vector.StrokeCircle(screen, cx, cy, cell/4, 1, visitedColor, true)
			default:
				vector.DrawFilledRect(screen, x, y, cell, cell, emptyColor, false)
			}
			vector.StrokeRect(screen, x, y, cell, cell, 1, gridLineColor, false)
		}
	}

	ax, ay := r.projector.ToScreen(float64(r.agentRow), float64(r.agentCol))
	vector.DrawFilledCircle(screen, ax+cell/2, ay+cell/2, cell*0.4, agentColor, true)

	r.drawHUD(screen)
}

func (r *Renderer) drawHUD(screen *ebiten.Image) {
	face := basicfont.Face7x13
	x := int(padding)
	y := r.projector.HUDTop() + lineHeight
	snap := r.snap

	for _, line := range r.statusLines() {
		text.Draw(screen, line, face, x, y, hudColor)
		y += lineHeight
	}
	if msg := r.last.Event.Message(); msg != "" {
		clr := hudColor
		switch r.last.Event {
		case simulation.EventGoalReached, simulation.EventAutopilotOn:
			clr = successColor
		case simulation.EventNoPath, simulation.EventPathExhausted, simulation.EventBlocked:
			clr = alertColor
		}
		text.Draw(screen, msg, face, x, y, clr)
	}

	debug := fmt.Sprintf("FPS: %.1f, TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	if r.cursorOnBoard {
		debug += fmt.Sprintf("\nCursor: %s", r.cursor)
		if snap.Cell(r.cursor) == simulation.CellObstacle {
			debug += " obstacle"
		}
	}
	ebitenutil.DebugPrintAt(screen, debug, r.screenWidth-160, 0)
}

// statusLines are the HUD lines above the event message.
func (r *Renderer) statusLines() []string {
	snap := r.snap
	lines := []string{
		fmt.Sprintf("[%s] Arrows/WASD move | Q autopilot | R restart | ESC exit", snap.Mode),
		fmt.Sprintf("Agent: %s | Target: %s | Obstacles: %d", snap.Agent, snap.Goal, len(snap.Obstacles)),
		fmt.Sprintf("Episode %d (%s) | Steps: %d | Reward: %.1f",
			snap.Episode.Number, snap.Episode.ID, snap.Episode.Steps, snap.Episode.Reward),
	}
	if snap.Mode == simulation.Autopilot && len(snap.RemainingPath) > 0 {
		lines = append(lines, fmt.Sprintf("Steps left: %d", len(snap.RemainingPath)))
	}
	return lines
}

// Layout is called when the window size changes.
func (r *Renderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != r.screenWidth || outsideHeight != r.screenHeight {
		r.screenWidth = outsideWidth
		r.screenHeight = outsideHeight
		r.projector.Fit(outsideWidth, outsideHeight)
	}
	return r.screenWidth, r.screenHeight
}
