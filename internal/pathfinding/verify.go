package pathfinding

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"gridpilot/internal/common"
)

// ShortestDistance computes the agent-to-goal step count with gonum's Dijkstra over
// an explicit graph of free cells. It shares no code with FindShortestPath and serves
// as an oracle for it. Returns -1 when the goal is unreachable.
func ShortestDistance(b Board) int {
	width, height := b.Width(), b.Height()
	start, goal := b.Agent(), b.Goal()
	if !goal.InBounds(width, height) || b.IsObstacle(goal) {
		return -1
	}

	g := simple.NewUndirectedGraph()
	free := func(p common.Position) bool {
		return p.InBounds(width, height) && !b.IsObstacle(p)
	}

	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			p := common.NewPosition(r, c)
			if free(p) || p == start {
				g.AddNode(simple.Node(p.Index(width)))
			}
		}
	}
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			p := common.NewPosition(r, c)
			if g.Node(int64(p.Index(width))) == nil {
				continue
			}
			for _, d := range []common.Direction{common.Down, common.Right} {
				q := p.Add(d)
				if !free(q) {
					continue
				}
				g.SetEdge(simple.Edge{F: simple.Node(p.Index(width)), T: simple.Node(q.Index(width))})
			}
		}
	}

	shortest := path.DijkstraFrom(g.Node(int64(start.Index(width))), g)
	_, weight := shortest.To(int64(goal.Index(width)))
	if math.IsInf(weight, 1) {
		return -1
	}
	return int(weight)
}

// Replay walks a path over the board without moving anything and checks that every
// step stays in bounds, avoids obstacles and that the walk ends on the goal.
func Replay(b Board, route []common.Direction) error {
	width, height := b.Width(), b.Height()
	curr := b.Agent()
	for i, d := range route {
		if !d.Valid() {
			return fmt.Errorf("step %d: invalid direction %v", i, d)
		}
		next := curr.Add(d)
		if !next.InBounds(width, height) {
			return fmt.Errorf("step %d: %s leaves the grid from %s", i, d, curr)
		}
		if b.IsObstacle(next) {
			return fmt.Errorf("step %d: %s runs into obstacle at %s", i, d, next)
		}
		curr = next
	}
	if curr != b.Goal() {
		return fmt.Errorf("route ends at %s, goal is %s", curr, b.Goal())
	}
	return nil
}
