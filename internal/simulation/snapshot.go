package simulation

import (
	"gridpilot/internal/common"
)

// CellKind classifies a grid cell for drawing. Earlier kinds take precedence.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellAgent
	CellGoal
	CellObstacle
	CellRoute
	CellVisited
)

// Snapshot is a read-only copy of everything a frontend needs to draw the board.
type Snapshot struct {
	Width  int
	Height int
	Agent  common.Position
	Goal   common.Position

	Obstacles []common.Position
	// Visited is only filled while autopilot is engaged.
	Visited []common.Position
	// RemainingPath are the autopilot actions not yet replayed.
	RemainingPath []common.Direction

	Mode    Mode
	Episode Episode

	obstacleSet map[common.Position]struct{}
	visitedSet  map[common.Position]struct{}
	routeSet    map[common.Position]struct{}
}

// Snapshot captures the current state.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Width:         s.grid.Width(),
		Height:        s.grid.Height(),
		Agent:         s.grid.Agent(),
		Goal:          s.grid.Goal(),
		Obstacles:     s.grid.Obstacles(),
		RemainingPath: s.pilot.Path(),
		Mode:          s.mode,
		Episode:       s.episode,
		obstacleSet:   make(map[common.Position]struct{}),
		visitedSet:    make(map[common.Position]struct{}),
		routeSet:      make(map[common.Position]struct{}),
	}
	for _, p := range snap.Obstacles {
		snap.obstacleSet[p] = struct{}{}
	}
	if s.mode == Autopilot {
		snap.Visited = s.pilot.Visited().Positions(snap.Width)
		for _, p := range snap.Visited {
			snap.visitedSet[p] = struct{}{}
		}
		for _, p := range snap.Route() {
			snap.routeSet[p] = struct{}{}
		}
	}
	return snap
}

// Route returns the cells the remaining path passes through, excluding the agent cell.
func (snap Snapshot) Route() []common.Position {
	cells := make([]common.Position, 0, len(snap.RemainingPath))
	curr := snap.Agent
	for _, d := range snap.RemainingPath {
		curr = curr.Add(d)
		cells = append(cells, curr)
	}
	return cells
}

// Cell classifies p.
func (snap Snapshot) Cell(p common.Position) CellKind {
	if p == snap.Agent {
		return CellAgent
	}
	if p == snap.Goal {
		return CellGoal
	}
	if _, ok := snap.obstacleSet[p]; ok {
		return CellObstacle
	}
	if _, ok := snap.routeSet[p]; ok {
		return CellRoute
	}
	if _, ok := snap.visitedSet[p]; ok {
		return CellVisited
	}
	return CellEmpty
}
