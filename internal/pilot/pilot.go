package pilot

import (
	"errors"
	"fmt"

	"gridpilot/internal/common"
	"gridpilot/internal/pathfinding"
)

// ErrEmptyPath reports an action request after the stored path ran out.
var ErrEmptyPath = errors.New("autopilot path exhausted")

// Pilot stores one precomputed route and hands it out one action at a time.
// The route is computed once on Start and never re-planned while engaged.
type Pilot struct {
	engaged bool
	path    []common.Direction
	visited pathfinding.VisitedSet
}

// New creates a disengaged pilot.
func New() *Pilot {
	return &Pilot{}
}

// Start searches for a route on the board and engages the pilot if one exists.
// On failure the pilot stays disengaged and the search's visited set is still kept.
func (p *Pilot) Start(b pathfinding.Board) error {
	res, err := pathfinding.FindShortestPath(b)
	if err != nil {
		p.engaged = false
		p.path = nil
		p.visited = res.Visited
		return fmt.Errorf("autopilot not engaged: %w", err)
	}
	p.engaged = true
	p.path = res.Path
	p.visited = res.Visited
	return nil
}

// Next pops the first remaining action. It fails with ErrEmptyPath once the route is consumed.
func (p *Pilot) Next() (common.Direction, error) {
	if len(p.path) == 0 {
		return common.DirectionInvalid, ErrEmptyPath
	}
	d := p.path[0]
	p.path = p.path[1:]
	return d, nil
}

// Stop disengages the pilot and forgets the route. Calling it again is a no-op.
func (p *Pilot) Stop() {
	p.engaged = false
	p.path = nil
	p.visited = nil
}

// Engaged reports whether Start succeeded and Stop has not been called since.
func (p *Pilot) Engaged() bool {
	return p.engaged
}

// Remaining returns the number of unconsumed actions.
func (p *Pilot) Remaining() int {
	return len(p.path)
}

// Path returns a copy of the unconsumed actions.
func (p *Pilot) Path() []common.Direction {
	out := make([]common.Direction, len(p.path))
	copy(out, p.path)
	return out
}

// Visited returns the visited set of the last search.
func (p *Pilot) Visited() pathfinding.VisitedSet {
	return p.visited
}
