// Package draw renders tinted rectangles and text to a terminal using
// half-block characters.
package draw

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color is a 0xRRGGBB pixel color.
type Color uint32

// filled marks a set pixel so that pure black stays drawable.
const filled = 1 << 24

// Half-block characters.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// cellKey identifies a styled terminal cell for the style cache.
type cellKey struct {
	ch     rune
	fg, bg uint32
}

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// It scales logical coordinates to terminal pixels and only re-emits cells
// that changed since the previous Render.
type Canvas struct {
	termWidth      int      // Actual terminal columns
	termHeight     int      // Actual terminal rows
	subPixelHeight int      // termHeight * 2
	pixels         []uint32 // [y * termWidth + x], 0 if unset
	prev           []string // Last emitted cell per [row * termWidth + col]
	fullRedraw     bool

	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// 0-based terminal offsets (columns/rows to skip) for centering.
	offsetCol int
	offsetRow int

	renderer  *lipgloss.Renderer
	cellCache map[cellKey]string
	renderBuf strings.Builder
}

// NewScaledCanvas creates a canvas that maps a logicalWidth x logicalHeight
// world onto termWidth x termHeight terminal cells. Styles are rendered with
// r, which decides the color profile.
func NewScaledCanvas(r *lipgloss.Renderer, termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		renderer:      r,
		cellCache:     make(map[cellKey]string),
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth < 0 {
		termWidth = 0
	}
	if termHeight < 0 {
		termHeight = 0
	}
	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]uint32, c.subPixelHeight*termWidth)
		c.prev = make([]string, termHeight*termWidth)
		c.fullRedraw = true
	}
	c.rescale()
}

// SetLogicalSize changes the world size mapped onto the terminal.
func (c *Canvas) SetLogicalSize(width, height float64) {
	c.logicalWidth = width
	c.logicalHeight = height
	c.rescale()
}

func (c *Canvas) rescale() {
	c.scaleX, c.scaleY = 0, 0
	if c.logicalWidth > 0 {
		c.scaleX = float64(c.termWidth) / c.logicalWidth
	}
	if c.logicalHeight > 0 {
		c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
	}
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.fullRedraw = true
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

// ForceRedraw makes the next Render emit every non-blank cell. Call it after
// clearing the screen.
func (c *Canvas) ForceRedraw() {
	c.fullRedraw = true
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, col Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = uint32(col)&0xffffff | filled
	}
}

// FillRect fills a rectangle given in logical coordinates. Parts outside the
// canvas are clipped.
func (c *Canvas) FillRect(x, y, w, h float64, col Color) {
	if w <= 0 || h <= 0 {
		return
	}
	x0 := int(math.Round(x * c.scaleX))
	y0 := int(math.Round(y * c.scaleY))
	x1 := int(math.Round((x + w) * c.scaleX))
	y1 := int(math.Round((y + h) * c.scaleY))
	// Keep thin blocks visible.
	if x1 == x0 {
		x1++
	}
	if y1 == y0 {
		y1++
	}

	x0, x1 = max(x0, 0), min(x1, c.termWidth)
	y0, y1 = max(y0, 0), min(y1, c.subPixelHeight)
	for py := y0; py < y1; py++ {
		row := c.pixels[py*c.termWidth : (py+1)*c.termWidth]
		for px := x0; px < x1; px++ {
			row[px] = uint32(col)&0xffffff | filled
		}
	}
}

// HLine draws a one sub-pixel high line across the logical x range at y.
func (c *Canvas) HLine(x0, x1, y float64, col Color) {
	py := int(math.Round(y * c.scaleY))
	start := max(int(math.Round(x0*c.scaleX)), 0)
	end := min(int(math.Round(x1*c.scaleX)), c.termWidth-1)
	for px := start; px <= end; px++ {
		c.setPixel(px, py, col)
	}
}

// maxChunkSize is the maximum bytes to write at once for smooth SSH transmission.
const maxChunkSize = 1400

// Render writes changed cells to w as cursor moves followed by styled
// half-block characters.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()

	for row := 0; row < c.termHeight; row++ {
		top := c.pixels[row*2*c.termWidth : (row*2+1)*c.termWidth]
		bottom := c.pixels[(row*2+1)*c.termWidth : (row*2+2)*c.termWidth]

		for col := 0; col < c.termWidth; col++ {
			cell := c.cell(top[col], bottom[col])
			idx := row*c.termWidth + col
			if !c.fullRedraw && c.prev[idx] == cell {
				continue
			}
			if c.fullRedraw && cell == " " {
				c.prev[idx] = cell
				continue
			}
			c.prev[idx] = cell
			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH%s", row+1+c.offsetRow, col+1+c.offsetCol, cell)
		}
	}
	c.fullRedraw = false

	return writeChunked(w, c.renderBuf.String())
}

// cell returns the styled string for a terminal cell made of two sub-pixels.
func (c *Canvas) cell(top, bottom uint32) string {
	var key cellKey
	switch {
	case top == 0 && bottom == 0:
		return " "
	case top == bottom:
		key = cellKey{ch: BlockFull, fg: top}
	case bottom == 0:
		key = cellKey{ch: BlockUpperHalf, fg: top}
	case top == 0:
		key = cellKey{ch: BlockLowerHalf, fg: bottom}
	default:
		key = cellKey{ch: BlockUpperHalf, fg: top, bg: bottom}
	}

	if s, ok := c.cellCache[key]; ok {
		return s
	}
	style := c.renderer.NewStyle().Foreground(hexColor(key.fg))
	if key.bg != 0 {
		style = style.Background(hexColor(key.bg))
	}
	s := style.Render(string(key.ch))
	c.cellCache[key] = s
	return s
}

func hexColor(px uint32) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%06x", px&0xffffff))
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) error {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars
	if !hasH && !hasV {
		return nil
	}

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	if hasV {
		line := strings.Repeat("─", c.termWidth)
		if hasH {
			fmt.Fprintf(&buf, "\033[%d;%dH┌%s┐", top, left, line)
			fmt.Fprintf(&buf, "\033[%d;%dH└%s┘", bottom, left, line)
		} else {
			fmt.Fprintf(&buf, "\033[%d;%dH%s", top, c.offsetCol+1, line)
			fmt.Fprintf(&buf, "\033[%d;%dH%s", bottom, c.offsetCol+1, line)
		}
	}
	if hasH {
		startRow, endRow := top+1, bottom
		if !hasV {
			startRow, endRow = c.offsetRow+1, c.offsetRow+c.termHeight+1
		}
		for row := startRow; row < endRow; row++ {
			fmt.Fprintf(&buf, "\033[%d;%dH│\033[%d;%dH│", row, left, row, right)
		}
	}
	return writeChunked(w, buf.String())
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height.
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
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
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	return px + 1, py/2 + 1
}

func writeChunked(w io.Writer, data string) error {
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}
