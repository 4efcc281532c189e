package gridworld

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"gridpilot/internal/common"
)

const (
	layoutEmpty    = '.'
	layoutObstacle = '#'
	layoutAgent    = 'A'
	layoutGoal     = 'G'
)

// FromLayout builds a grid from rows of '.', '#', 'A' and 'G'.
// Missing 'A' defaults to the origin, missing 'G' to the far corner.
// Later calls to Reset generate random layouts of the same size.
func FromLayout(layout string) (*Grid, error) {
	lines := strings.Split(strings.TrimSpace(layout), "\n")
	height := len(lines)
	width := 0
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
		if i == 0 {
			width = len(lines[i])
		} else if len(lines[i]) != width {
			return nil, fmt.Errorf("%w: row %d has width %d, want %d", ErrConstruction, i, len(lines[i]), width)
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrConstruction)
	}

	g := &Grid{
		width:     width,
		height:    height,
		agent:     common.NewPosition(0, 0),
		goal:      common.NewPosition(height-1, width-1),
		obstacles: make(map[common.Position]struct{}),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	var seenAgent, seenGoal bool
	for r, line := range lines {
		for c, ch := range line {
			p := common.NewPosition(r, c)
			switch ch {
			case layoutEmpty:
			case layoutObstacle:
				g.obstacles[p] = struct{}{}
			case layoutAgent:
				if seenAgent {
					return nil, fmt.Errorf("%w: more than one agent", ErrConstruction)
				}
				seenAgent = true
				g.agent = p
			case layoutGoal:
				if seenGoal {
					return nil, fmt.Errorf("%w: more than one goal", ErrConstruction)
				}
				seenGoal = true
				g.goal = p
			default:
				return nil, fmt.Errorf("%w: unknown layout character %q at %s", ErrConstruction, ch, p)
			}
		}
	}

	if err := g.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConstruction, err)
	}
	g.density = float64(len(g.obstacles)) / float64(width*height)
	return g, nil
}
