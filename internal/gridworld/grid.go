package gridworld

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"gridpilot/internal/common"
)

// MaxDensity is the exclusive upper bound accepted for obstacle density.
// Denser grids are rejected up front instead of risking unbounded placement.
const MaxDensity = 0.9

// Reward values produced by Step.
const (
	RewardGoal     = 10.0
	RewardStep     = -0.1
	RewardRejected = -1.0
)

var (
	// ErrConstruction reports that the dimensions or density leave no valid episode.
	ErrConstruction = errors.New("grid construction infeasible")
	// ErrInvalidDirection reports a step request with an unrecognized direction.
	ErrInvalidDirection = common.ErrInvalidDirection
)

// Grid holds the geometry and content of one episode.
// The agent position is only changed by Step; everything else is replaced wholesale by Reset.
type Grid struct {
	width   int
	height  int
	density float64

	agent     common.Position
	goal      common.Position
	obstacles map[common.Position]struct{}

	rng *rand.Rand
}

// NewGrid creates a grid with freshly generated obstacles.
// A nil rng falls back to a time-seeded source.
func NewGrid(width, height int, density float64, rng *rand.Rand) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrConstruction, width, height)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &Grid{width: width, height: height, rng: rng}
	if err := g.Reset(density); err != nil {
		return nil, err
	}
	return g, nil
}

// Reset regenerates the episode: agent back to the origin, goal to the far corner,
// obstacles drawn anew with the given density. On error the grid is left untouched.
func (g *Grid) Reset(density float64) error {
	agent := common.NewPosition(0, 0)
	goal := common.NewPosition(g.height-1, g.width-1)

	obstacles, err := generateObstacles(g.width, g.height, density, agent, goal, g.rng)
	if err != nil {
		return err
	}

	g.agent = agent
	g.goal = goal
	g.obstacles = obstacles
	g.density = density
	return nil
}

// ObstacleCount returns floor(width*height*density).
func ObstacleCount(width, height int, density float64) int {
	return int(float64(width*height) * density)
}

func generateObstacles(width, height int, density float64, agent, goal common.Position, rng *rand.Rand) (map[common.Position]struct{}, error) {
	if math.IsNaN(density) || density < 0 || density >= MaxDensity {
		return nil, fmt.Errorf("%w: density %.3f outside [0, %.2f)", ErrConstruction, density, MaxDensity)
	}

	free := make([]common.Position, 0, width*height)
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			p := common.NewPosition(r, c)
			if p == agent || p == goal {
				continue
			}
			free = append(free, p)
		}
	}

	count := ObstacleCount(width, height, density)
	if count > len(free) {
		return nil, fmt.Errorf("%w: %d obstacles do not fit in %d free cells", ErrConstruction, count, len(free))
	}

	// Partial Fisher-Yates: the first count cells become obstacles, no retries needed.
	for i := 0; i < count; i++ {
		j := i + rng.Intn(len(free)-i)
		free[i], free[j] = free[j], free[i]
	}

	obstacles := make(map[common.Position]struct{}, count)
	for _, p := range free[:count] {
		obstacles[p] = struct{}{}
	}
	return obstacles, nil
}

// Step tries to move the agent one cell.
// Boundaries clamp (the move still costs a normal step), obstacles reject with RewardRejected.
func (g *Grid) Step(d common.Direction) (StepResult, error) {
	if !d.Valid() {
		return StepResult{Reward: RewardRejected}, fmt.Errorf("%w: %v", ErrInvalidDirection, d)
	}

	candidate := g.agent.Add(d).Clamp(g.width, g.height)
	if g.IsObstacle(candidate) {
		return StepResult{Blocked: true, Reward: RewardRejected}, nil
	}

	moved := candidate != g.agent
	g.agent = candidate

	if g.agent == g.goal {
		return StepResult{Moved: moved, GoalReached: true, Reward: RewardGoal}, nil
	}
	return StepResult{Moved: moved, Reward: RewardStep}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Density returns the density used for the current obstacle layout.
func (g *Grid) Density() float64 { return g.density }

// Agent returns the current agent position.
func (g *Grid) Agent() common.Position { return g.agent }

// Goal returns the goal position of the current episode.
func (g *Grid) Goal() common.Position { return g.goal }

// IsObstacle reports whether p holds an obstacle.
func (g *Grid) IsObstacle(p common.Position) bool {
	_, ok := g.obstacles[p]
	return ok
}

// ObstacleCount returns the number of obstacles in the current episode.
func (g *Grid) ObstacleCount() int { return len(g.obstacles) }

// Obstacles returns the obstacle positions in row-major order.
func (g *Grid) Obstacles() []common.Position {
	out := make([]common.Position, 0, len(g.obstacles))
	for p := range g.obstacles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Index(g.width) < out[j].Index(g.width)
	})
	return out
}

// CheckInvariants verifies bounds and disjointness of agent, goal and obstacles.
func (g *Grid) CheckInvariants() error {
	if !g.agent.InBounds(g.width, g.height) {
		return fmt.Errorf("agent %s out of bounds %dx%d", g.agent, g.width, g.height)
	}
	if !g.goal.InBounds(g.width, g.height) {
		return fmt.Errorf("goal %s out of bounds %dx%d", g.goal, g.width, g.height)
	}
	for p := range g.obstacles {
		if !p.InBounds(g.width, g.height) {
			return fmt.Errorf("obstacle %s out of bounds %dx%d", p, g.width, g.height)
		}
		if p == g.agent {
			return fmt.Errorf("agent %s overlaps an obstacle", p)
		}
		if p == g.goal {
			return fmt.Errorf("goal %s overlaps an obstacle", p)
		}
	}
	return nil
}

// String renders the grid with the layout characters understood by FromLayout.
func (g *Grid) String() string {
	var sb strings.Builder
	for r := 0; r < g.height; r++ {
		for c := 0; c < g.width; c++ {
			sb.WriteRune(g.cellRune(common.NewPosition(r, c)))
		}
		if r < g.height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (g *Grid) cellRune(p common.Position) rune {
	switch {
	case p == g.agent:
		return layoutAgent
	case p == g.goal:
		return layoutGoal
	case g.IsObstacle(p):
		return layoutObstacle
	default:
		return layoutEmpty
	}
}
