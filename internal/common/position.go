package common

import (
	"errors"
	"fmt"
	"strings"
)

// Position is a cell on the grid addressed by row and column.
type Position struct {
	Row int
	Col int
}

// NewPosition creates a position from a row and a column.
func NewPosition(row, col int) Position {
	return Position{Row: row, Col: col}
}

// Add offsets the position by the unit vector of a direction.
// The result is not bounds-checked.
func (p Position) Add(d Direction) Position {
	dr, dc := d.Offset()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// InBounds reports whether the position lies in [0,height)x[0,width).
func (p Position) InBounds(width, height int) bool {
	return p.Row >= 0 && p.Row < height && p.Col >= 0 && p.Col < width
}

// Clamp limits each coordinate independently to the grid bounds.
func (p Position) Clamp(width, height int) Position {
	return Position{Row: clamp(p.Row, 0, height-1), Col: clamp(p.Col, 0, width-1)}
}

// ManhattanDistance returns |dRow| + |dCol| between two positions.
func (p Position) ManhattanDistance(other Position) int {
	return abs(p.Row-other.Row) + abs(p.Col-other.Col)
}

// Index flattens the position into row-major order for a grid of the given width.
func (p Position) Index(width int) int {
	return p.Row*width + p.Col
}

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// ErrInvalidDirection reports a token or value that is not one of the four moves.
var ErrInvalidDirection = errors.New("invalid direction")

// Direction is one of the four unit moves on the 4-connected grid.
type Direction int

// The zero value is deliberately invalid so an unset Direction is never a move.
const (
	DirectionInvalid Direction = iota
	Up
	Down
	Left
	Right
)

// Directions lists the valid directions in neighbour expansion order.
var Directions = [4]Direction{Up, Down, Left, Right}

// Offset returns the (dRow, dCol) unit vector of the direction.
// Invalid directions have a zero offset.
func (d Direction) Offset() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	default:
		return 0, 0
	}
}

// Valid reports whether d is one of Up, Down, Left, Right.
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return DirectionInvalid
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("invalid(%d)", int(d))
	}
}

// ParseDirection converts an input token into a Direction.
// Accepts full names and the WASD single-key aliases, case-insensitively.
func ParseDirection(token string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "up", "w":
		return Up, nil
	case "down", "s":
		return Down, nil
	case "left", "a":
		return Left, nil
	case "right", "d":
		return Right, nil
	default:
		return DirectionInvalid, fmt.Errorf("%w: unrecognized token %q", ErrInvalidDirection, token)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
