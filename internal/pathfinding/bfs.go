package pathfinding

import (
	"errors"
	"fmt"
	"sort"

	"gridpilot/internal/common"
)

// ErrNoPathFound reports that the goal is not 4-connected to the agent.
var ErrNoPathFound = errors.New("no path found")

// Board is the read-only view of a grid that the search needs.
type Board interface {
	Width() int
	Height() int
	Agent() common.Position
	Goal() common.Position
	IsObstacle(p common.Position) bool
}

// VisitedSet holds every position enqueued by one search.
type VisitedSet map[common.Position]struct{}

// Contains reports whether p was reached by the search.
func (v VisitedSet) Contains(p common.Position) bool {
	_, ok := v[p]
	return ok
}

// Positions returns the visited positions in row-major order for a grid of the given width.
func (v VisitedSet) Positions(width int) []common.Position {
	out := make([]common.Position, 0, len(v))
	for p := range v {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Index(width) < out[j].Index(width)
	})
	return out
}

// Result is the outcome of a search.
type Result struct {
	// Path is the route from the agent to the goal. Empty when they coincide.
	Path []common.Direction
	// Visited is diagnostic only; it is filled even when no path exists.
	Visited VisitedSet
}

// Len returns the number of steps in the path.
func (r Result) Len() int {
	return len(r.Path)
}

// FindShortestPath runs a breadth-first search from the agent to the goal.
// Neighbours are expanded in common.Directions order, which fixes the tie-break between
// equally short paths. Out-of-bounds cells and obstacles are never entered.
// The board is not modified.
func FindShortestPath(b Board) (Result, error) {
	width, height := b.Width(), b.Height()
	start, goal := b.Agent(), b.Goal()

	visited := VisitedSet{start: {}}
	if !goal.InBounds(width, height) || b.IsObstacle(goal) {
		return Result{Visited: visited}, fmt.Errorf("%w: goal %s is not a free cell", ErrNoPathFound, goal)
	}

	// cameFrom[i] is the direction used to first reach cell i.
	cameFrom := make([]common.Direction, width*height)

	queue := []common.Position{start}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		if curr == goal {
			return Result{Path: reconstruct(cameFrom, start, goal, width), Visited: visited}, nil
		}

		for _, d := range common.Directions {
			next := curr.Add(d)
			if !next.InBounds(width, height) || b.IsObstacle(next) || visited.Contains(next) {
				continue
			}
			visited[next] = struct{}{}
			cameFrom[next.Index(width)] = d
			queue = append(queue, next)
		}
	}

	return Result{Visited: visited}, fmt.Errorf("%w: goal %s unreachable from %s after visiting %d cells",
		ErrNoPathFound, goal, start, len(visited))
}

func reconstruct(cameFrom []common.Direction, start, goal common.Position, width int) []common.Direction {
	path := make([]common.Direction, 0, start.ManhattanDistance(goal))
	for curr := goal; curr != start; {
		d := cameFrom[curr.Index(width)]
		path = append(path, d)
		curr = curr.Add(d.Opposite())
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
