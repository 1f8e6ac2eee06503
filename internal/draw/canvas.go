package draw

import (
	"io"
	"math"
	"strings"
)

// Point represents a 2D coordinate in logical space.
type Point struct {
	X, Y float64
}

// Block characters used by the half-block renderer.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// cell is the pair of sub-pixel colours that make up one terminal cell.
type cell struct {
	top, bottom Color
}

// Canvas is a colour drawing buffer with 2x vertical resolution using half-block characters.
// Supports scaling from logical coordinates to actual terminal pixels and only
// re-emits cells that changed since the previous Render.
type Canvas struct {
	termWidth      int     // Actual terminal columns
	termHeight     int     // Actual terminal rows
	subPixelHeight int     // termHeight * 2
	pixels         []Color // Flat slice: [y * termWidth + x]

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64 // In sub-pixels
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// 0-based terminal offsets used to centre the render area.
	offsetCol int
	offsetRow int

	prev        []cell // Cells as last emitted
	dirty       []bool // Cells overwritten by text since the last Render
	forceRedraw bool

	renderBuf []byte
}

// NewCanvas creates a canvas for the given terminal dimensions with a 1:1 mapping.
func NewCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.allocate(termWidth, termHeight)
	return c
}

func (c *Canvas) allocate(termWidth, termHeight int) {
	if termWidth < 0 {
		termWidth = 0
	}
	if termHeight < 0 {
		termHeight = 0
	}
	c.termWidth = termWidth
	c.termHeight = termHeight
	c.subPixelHeight = termHeight * 2
	c.pixels = make([]Color, c.subPixelHeight*termWidth)
	c.prev = make([]cell, termHeight*termWidth)
	c.dirty = make([]bool, termHeight*termWidth)
	c.forceRedraw = true
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.allocate(termWidth, termHeight)
	}
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.forceRedraw = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// ForceRedraw makes the next Render emit every cell, e.g. after the terminal was cleared.
func (c *Canvas) ForceRedraw() {
	c.forceRedraw = true
}

// MarkTextDirty flags n cells starting at the 1-based canvas position (col, row)
// as overwritten by text, so the next Render repaints them.
func (c *Canvas) MarkTextDirty(col, row, n int) {
	r := row - 1
	if r < 0 || r >= c.termHeight {
		return
	}
	for i := 0; i < n; i++ {
		x := col - 1 + i
		if x >= 0 && x < c.termWidth {
			c.dirty[r*c.termWidth+x] = true
		}
	}
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, col Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = col
	}
}

// PixelAt returns the colour of the sub-pixel at logical coordinates.
func (c *Canvas) PixelAt(x, y float64) Color {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	if px < 0 || px >= c.termWidth || py < 0 || py >= c.subPixelHeight {
		return ColorNone
	}
	return c.pixels[py*c.termWidth+px]
}

// SetFloat sets a pixel using float logical coordinates (applies scaling).
func (c *Canvas) SetFloat(x, y float64, col Color) {
	c.setPixel(int(math.Round(x*c.scaleX)), int(math.Round(y*c.scaleY)), col)
}

// FillRect fills the logical rectangle (x, y, w, h). Any non-empty rectangle
// covers at least one pixel.
func (c *Canvas) FillRect(x, y, w, h float64, col Color) {
	if w <= 0 || h <= 0 {
		return
	}
	x0 := int(math.Round(x * c.scaleX))
	x1 := int(math.Round((x + w) * c.scaleX))
	y0 := int(math.Round(y * c.scaleY))
	y1 := int(math.Round((y + h) * c.scaleY))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > c.termWidth {
		x1 = c.termWidth
	}
	if y1 > c.subPixelHeight {
		y1 = c.subPixelHeight
	}
	for py := y0; py < y1; py++ {
		row := c.pixels[py*c.termWidth : (py+1)*c.termWidth]
		for px := x0; px < x1; px++ {
			row[px] = col
		}
	}
}

// DrawBitmap draws a w×h bitmap with its top-left corner at logical (x, y).
// ColorNone entries are transparent.
func (c *Canvas) DrawBitmap(x, y float64, w, h int, pix []Color) {
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			col := pix[j*w+i]
			if col == ColorNone {
				continue
			}
			c.FillRect(x+float64(i), y+float64(j), 1, 1, col)
		}
	}
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 Point, col Color) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		c.setPixel(x1, y1, col)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// Render writes every cell that changed since the previous Render.
func (c *Canvas) Render(w io.Writer) error {
	buf := c.renderBuf[:0]
	styled := false
	var curFg, curBg Color

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			idx := row*c.termWidth + col
			cur := cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]}
			if !c.forceRedraw && !c.dirty[idx] && c.prev[idx] == cur {
				continue
			}
			c.prev[idx] = cur
			c.dirty[idx] = false

			fg, bg, ch := glyph(cur)
			buf = appendCursor(buf, col+1+c.offsetCol, row+1+c.offsetRow)
			if !styled || fg != curFg || bg != curBg {
				buf = appendStyle(buf, fg, bg)
				curFg, curBg, styled = fg, bg, true
			}
			buf = appendRune(buf, ch)
		}
	}
	if styled {
		buf = append(buf, ColorReset...)
	}
	c.forceRedraw = false
	c.renderBuf = buf
	return writeChunked(w, buf)
}

// glyph picks the colours and half-block character that represent a cell.
func glyph(c cell) (fg, bg Color, ch rune) {
	switch {
	case c.top == ColorNone && c.bottom == ColorNone:
		return ColorNone, ColorNone, ' '
	case c.top == c.bottom:
		return c.top, ColorNone, BlockFull
	case c.bottom == ColorNone:
		return c.top, ColorNone, BlockUpperHalf
	case c.top == ColorNone:
		return c.bottom, ColorNone, BlockLowerHalf
	default:
		return c.top, c.bottom, BlockUpperHalf
	}
}

func appendRune(buf []byte, r rune) []byte {
	if r < 0x80 {
		return append(buf, byte(r))
	}
	return append(buf, string(r)...)
}

// RenderBorder frames the viewport when the terminal has spare cells around
// it. Only the sides with room get a line.
func (c *Canvas) RenderBorder(w io.Writer) error {
	sides := c.offsetCol >= 1
	ends := c.offsetRow >= 1
	if !sides && !ends {
		return nil
	}

	left, right := c.offsetCol, c.offsetCol+c.termWidth+1
	top, bottom := c.offsetRow, c.offsetRow+c.termHeight+1
	line := strings.Repeat("─", c.termWidth)

	buf := append([]byte(nil), ColorDim...)
	if ends {
		tl, tr, bl, br := "", "", "", ""
		col := left + 1
		if sides {
			tl, tr, bl, br = "┌", "┐", "└", "┘"
			col = left
		}
		buf = appendCursor(buf, col, top)
		buf = append(buf, tl+line+tr...)
		buf = appendCursor(buf, col, bottom)
		buf = append(buf, bl+line+br...)
	}
	if sides {
		for row := top + 1; row < bottom; row++ {
			buf = appendCursor(buf, left, row)
			buf = append(buf, "│"...)
			buf = appendCursor(buf, right, row)
			buf = append(buf, "│"...)
		}
	}
	buf = append(buf, ColorReset...)
	_, err := w.Write(buf)
	return err
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to a 1-based canvas position (col, row).
// Useful for placing text overlays next to canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	return px + 1, py/2 + 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
