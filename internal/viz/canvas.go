package viz

import (
	"math"
	"strings"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a grid of Braille cells. Dot coordinates run from (0, 0) at the
// top left to (2*Width-1, 4*Height-1).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y); dots outside the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawDot draws a small plus centred on (x, y).
func (c *Canvas) DrawDot(x, y int) {
	c.Set(x, y)
	c.Set(x-1, y)
	c.Set(x+1, y)
	c.Set(x, y-1)
	c.Set(x, y+1)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Scatter plots (xs[i], ys[i]) scaled to fill the canvas, y up.
func Scatter(xs, ys []float64, w, h int) *Canvas {
	c := NewCanvas(w, h)
	n := min(len(xs), len(ys))
	if n == 0 {
		return c
	}
	xb, yb := newBounds(xs[:n]), newBounds(ys[:n])
	pw, ph := 2*w-1, 4*h-1
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]+ys[i]) || math.IsInf(xs[i]+ys[i], 0) {
			continue
		}
		px := int(math.Round(xb.unit(xs[i]) * float64(pw)))
		py := ph - int(math.Round(yb.unit(ys[i])*float64(ph)))
		c.Set(px, py)
	}
	return c
}

type bounds struct{ lo, hi float64 }

func newBounds(v []float64) bounds {
	b := bounds{math.Inf(1), math.Inf(-1)}
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		b.lo = math.Min(b.lo, x)
		b.hi = math.Max(b.hi, x)
	}
	if b.lo > b.hi {
		return bounds{0, 1}
	}
	if b.hi == b.lo {
		b.lo, b.hi = b.lo-0.5, b.hi+0.5
	}
	return b
}

func (b bounds) unit(x float64) float64 { return (x - b.lo) / (b.hi - b.lo) }

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
