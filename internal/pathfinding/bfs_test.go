package pathfinding

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridpilot/internal/common"
	"gridpilot/internal/gridworld"
)

func layout(t *testing.T, s string) *gridworld.Grid {
	t.Helper()
	g, err := gridworld.FromLayout(s)
	require.NoError(t, err)
	return g
}

func TestOpenGridManhattanPath(t *testing.T) {
	g, err := gridworld.NewGrid(5, 5, 0, nil)
	require.NoError(t, err)

	res, err := FindShortestPath(g)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Len())

	var downs, rights int
	for _, d := range res.Path {
		switch d {
		case common.Down:
			downs++
		case common.Right:
			rights++
		default:
			t.Fatalf("unexpected direction %v", d)
		}
	}
	assert.Equal(t, 4, downs)
	assert.Equal(t, 4, rights)
	require.NoError(t, Replay(g, res.Path))
}

func TestExpansionOrderIsStable(t *testing.T) {
	g := layout(t, `
A..
...
..G`)
	first, err := FindShortestPath(g)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := FindShortestPath(g)
		require.NoError(t, err)
		assert.Equal(t, first.Path, again.Path)
	}
	// Down is expanded before Right, so the column-0 branch claims every cell first.
	assert.Equal(t, []common.Direction{common.Down, common.Down, common.Right, common.Right}, first.Path)
}

func TestAgentAlreadyAtGoal(t *testing.T) {
	g, err := gridworld.NewGrid(1, 1, 0, nil)
	require.NoError(t, err)

	res, err := FindShortestPath(g)
	require.NoError(t, err)
	assert.NotNil(t, res.Visited)
	assert.Empty(t, res.Path)
	assert.Equal(t, 0, ShortestDistance(g))
}

func TestWallWithoutGap(t *testing.T) {
	g := layout(t, `
A....
#####
....G`)
	res, err := FindShortestPath(g)
	assert.ErrorIs(t, err, ErrNoPathFound)
	assert.Empty(t, res.Path)
	assert.Len(t, res.Visited, 5)
	assert.Equal(t, -1, ShortestDistance(g))
}

func TestEnclosedGoal(t *testing.T) {
	g := layout(t, `
A....
...#.
..#G#
...#.`)
	_, err := FindShortestPath(g)
	assert.ErrorIs(t, err, ErrNoPathFound)
}

func TestDetourAroundObstacles(t *testing.T) {
	g := layout(t, `
A.#...
.##.#.
....#G`)
	res, err := FindShortestPath(g)
	require.NoError(t, err)
	require.NoError(t, Replay(g, res.Path))
	assert.Equal(t, ShortestDistance(g), res.Len())
	assert.True(t, res.Visited.Contains(g.Goal()))
	assert.False(t, res.Visited.Contains(common.NewPosition(0, 2)))
}

func TestSearchDoesNotMutateBoard(t *testing.T) {
	g, err := gridworld.NewGrid(10, 10, 0.2, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	before := g.String()
	_, _ = FindShortestPath(g)
	assert.Equal(t, before, g.String())
}

func TestMatchesOracleOnRandomGrids(t *testing.T) {
	var reachable, blocked int
	for seed := int64(1); seed <= 300; seed++ {
		rng := rand.New(rand.NewSource(seed))
		w, h := 2+rng.Intn(7), 2+rng.Intn(7)
		g, err := gridworld.NewGrid(w, h, 0.35, rng)
		require.NoError(t, err)

		res, err := FindShortestPath(g)
		want := ShortestDistance(g)
		if want < 0 {
			blocked++
			require.ErrorIs(t, err, ErrNoPathFound, "seed %d\n%s", seed, g)
			continue
		}
		reachable++
		require.NoError(t, err, "seed %d\n%s", seed, g)
		require.Equal(t, want, res.Len(), "seed %d\n%s", seed, g)
		require.NoError(t, Replay(g, res.Path), "seed %d\n%s", seed, g)
		for p := range res.Visited {
			require.True(t, p.InBounds(w, h))
			require.False(t, g.IsObstacle(p))
		}
	}
	assert.Positive(t, reachable)
	assert.Positive(t, blocked)
}

func TestReplayFidelityThroughStep(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		g, err := gridworld.NewGrid(12, 12, 0.2, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		res, err := FindShortestPath(g)
		if err != nil {
			continue
		}
		for i, d := range res.Path {
			step, err := g.Step(d)
			require.NoError(t, err)
			require.True(t, step.Moved, "step %d rejected", i)
			require.Equal(t, i == res.Len()-1, step.GoalReached)
		}
		assert.Equal(t, g.Goal(), g.Agent())
	}
}

func TestReplayRejectsBadRoutes(t *testing.T) {
	g := layout(t, `
A#
.G`)
	assert.Error(t, Replay(g, []common.Direction{common.Right, common.Down}))
	assert.Error(t, Replay(g, []common.Direction{common.Up}))
	assert.Error(t, Replay(g, []common.Direction{common.Down}))
	assert.Error(t, Replay(g, []common.Direction{common.DirectionInvalid}))
	assert.NoError(t, Replay(g, []common.Direction{common.Down, common.Right}))
}

func TestVisitedPositionsSorted(t *testing.T) {
	v := VisitedSet{{Row: 1, Col: 0}: {}, {Row: 0, Col: 2}: {}, {Row: 0, Col: 0}: {}}
	assert.Equal(t, []common.Position{{Row: 0, Col: 0}, {Row: 0, Col: 2}, {Row: 1, Col: 0}}, v.Positions(3))
}
