package visualization

import (
	"math"

	"gridpilot/internal/common"
)

const (
	padding   = 20.0  // Margin around the board
	hudHeight = 100.0 // Room below the board for status lines
	minCell   = 4.0
)

// Projector maps grid coordinates to screen pixels, fitting the whole board into the window.
type Projector struct {
	cols, rows int

	cell    float64
	offsetX float64
	offsetY float64
}

// NewProjector creates a projector for a cols×rows board drawn with the given cell size
// until the first Fit.
func NewProjector(cols, rows, cellSize int) *Projector {
	return &Projector{
		cols:    cols,
		rows:    rows,
		cell:    float64(cellSize),
		offsetX: padding,
		offsetY: padding,
	}
}

// WindowSize returns the window size that shows a cols×rows board at cellSize pixels per cell.
func WindowSize(cols, rows, cellSize int) (int, int) {
	w := cols*cellSize + 2*padding
	h := rows*cellSize + 2*padding + hudHeight
	return w, h
}

// Fit recomputes cell size and offsets for a screen, preserving square cells
// and centering the board horizontally.
func (p *Projector) Fit(screenWidth, screenHeight int) {
	availW := float64(screenWidth) - 2*padding
	availH := float64(screenHeight) - 2*padding - hudHeight

	cell := math.Min(availW/float64(p.cols), availH/float64(p.rows))
	if cell < minCell || math.IsNaN(cell) || math.IsInf(cell, 0) {
		cell = minCell
	}
	p.cell = math.Floor(cell)

	boardW := p.cell * float64(p.cols)
	p.offsetX = math.Max(padding, (float64(screenWidth)-boardW)/2)
	p.offsetY = padding
}

// CellSize is the current side of one cell in pixels.
func (p *Projector) CellSize() float32 {
	return float32(p.cell)
}

// ToScreen converts fractional grid coordinates to the top-left pixel of that cell.
func (p *Projector) ToScreen(row, col float64) (float32, float32) {
	return float32(col*p.cell + p.offsetX), float32(row*p.cell + p.offsetY)
}

// Center returns the pixel at the middle of a cell.
func (p *Projector) Center(pos common.Position) (float32, float32) {
	x, y := p.ToScreen(float64(pos.Row), float64(pos.Col))
	half := float32(p.cell / 2)
	return x + half, y + half
}

// HUDTop is the first pixel row below the board.
func (p *Projector) HUDTop() int {
	return int(p.offsetY + p.cell*float64(p.rows) + padding/2)
}

// ToCell converts a pixel to the cell under it.
func (p *Projector) ToCell(x, y int) (common.Position, bool) {
	fx := float64(x) - p.offsetX
	fy := float64(y) - p.offsetY
	if fx < 0 || fy < 0 {
		return common.Position{}, false
	}
	pos := common.NewPosition(int(fy/p.cell), int(fx/p.cell))
	return pos, pos.InBounds(p.cols, p.rows)
}
