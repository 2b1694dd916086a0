// Package render draws the simulation in a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tomz197/collide/internal/config"
	"github.com/tomz197/collide/internal/control"
	"github.com/tomz197/collide/internal/draw"
	"github.com/tomz197/collide/internal/loop"
	"github.com/tomz197/collide/internal/sim"
)

// Screen layout in terminal rows.
const (
	hudRows   = 3
	panelRows = 5
	minRows   = 2
)

// groundRatio places the floor the blocks rest on, as a fraction of canvas height.
const groundRatio = 0.8

type block struct {
	x, side float64
	tint    sim.Tint
}

// Terminal implements loop.Renderer on top of a half-block canvas. Text is
// drawn in rows above and below the canvas so it never overlaps block cells.
type Terminal struct {
	blocks     [2]block
	labels     [4]string
	visible    [2]bool
	worldWidth float64

	canvas *draw.Canvas
	cw     *draw.ChunkWriter
	styles styles

	termWidth  int // Clamped render area
	termHeight int
	rows       map[int]string // Last text written per screen row
	clear      bool           // Next frame starts with a full clear
}

var _ loop.Renderer = (*Terminal)(nil)

// NewTerminal creates a renderer writing frames to w with colors from r.
func NewTerminal(r *lipgloss.Renderer, w io.Writer, termWidth, termHeight int) *Terminal {
	t := &Terminal{
		canvas: draw.NewScaledCanvas(r, 0, 0, config.WorldWidth, config.WorldHeight),
		cw:     draw.NewChunkWriter(w, 0, 0),
		styles: newStyles(r),
		rows:   make(map[int]string),
	}
	t.Resize(termWidth, termHeight)
	return t
}

// UpdatePosition records where a block is.
func (t *Terminal) UpdatePosition(id sim.BodyID, x, side float64, tint sim.Tint) {
	t.blocks[id] = block{x: x, side: side, tint: tint}
}

// UpdateLabel records label text.
func (t *Terminal) UpdateLabel(id loop.LabelID, text string) {
	t.labels[id] = text
}

// SetVisible records widget visibility.
func (t *Terminal) SetVisible(id loop.WidgetID, visible bool) {
	t.visible[id] = visible
}

// Reposition records the world width for the next frame.
func (t *Terminal) Reposition(worldWidth float64) {
	t.worldWidth = worldWidth
}

// Resize fits the render area to a terminal of the given size, clamped to
// the max render resolution and centered. Reports whether the layout changed.
func (t *Terminal) Resize(termWidth, termHeight int) bool {
	renderWidth := min(max(termWidth, 1), config.MaxTermWidth)
	renderHeight := min(max(termHeight, hudRows+panelRows+minRows), config.MaxTermHeight)
	offsetCol := max((termWidth-renderWidth)/2, 0)
	offsetRow := max((termHeight-renderHeight)/2, 0)

	changed := renderWidth != t.termWidth || renderHeight != t.termHeight ||
		offsetCol != t.canvas.OffsetCol() || offsetRow+hudRows != t.canvas.OffsetRow()

	t.termWidth = renderWidth
	t.termHeight = renderHeight
	canvasRows := renderHeight - hudRows - panelRows
	t.canvas.Resize(renderWidth, canvasRows)
	t.canvas.SetOffset(offsetCol, offsetRow+hudRows)
	t.canvas.SetLogicalSize(t.ViewportWidth(), float64(canvasRows*2*config.CellPixels))
	t.cw.SetOffset(offsetCol, offsetRow)

	if changed {
		t.clear = true
	}
	return changed
}

// ViewportWidth is the world width the terminal can show, in logical pixels.
func (t *Terminal) ViewportWidth() float64 {
	return float64(t.termWidth * config.CellPixels)
}

// Frame draws the world, the HUD and the control panel, then flushes.
func (t *Terminal) Frame(panel *control.Surface, stats loop.Stats) error {
	if t.clear {
		t.cw.ClearScreen()
		t.canvas.ForceRedraw()
		clear(t.rows)
		t.clear = false
	}

	t.drawWorld()
	if err := t.canvas.Render(t.cw); err != nil {
		return err
	}
	if err := t.canvas.RenderBorder(t.cw); err != nil {
		return err
	}

	t.drawHUD(stats)
	t.drawPanel(panel)

	return t.cw.Flush()
}

// Message shows a one-off full-screen notice, e.g. an inactivity warning.
func (t *Terminal) Message(lines ...string) error {
	t.cw.ClearScreen()
	centerY := t.termHeight/2 - len(lines)/2
	for i, line := range lines {
		t.cw.WriteAt(t.termWidth/2-lipgloss.Width(line)/2, centerY+i, line)
	}
	t.clear = true
	return t.cw.Flush()
}

func (t *Terminal) drawWorld() {
	t.canvas.Clear()
	ground := t.canvas.LogicalHeight() * groundRatio
	t.canvas.HLine(0, t.canvas.LogicalWidth(), ground, draw.Color(groundColor))

	for _, b := range t.blocks {
		t.canvas.FillRect(b.x, ground-b.side, b.side, b.side, draw.Color(b.tint))
	}
}

func (t *Terminal) drawHUD(stats loop.Stats) {
	state := t.styles.muted.Render("▶ paused, press SPACE to play")
	if t.visible[loop.WidgetPause] {
		state = t.styles.accent.Render("⏸ playing, press SPACE to pause")
	}
	title := t.styles.title.Render("ELASTIC COLLISION")
	counters := t.styles.muted.Render(fmt.Sprintf("collisions %d  walls %d/%d",
		stats.Collisions, stats.WallHits[sim.BodyA], stats.WallHits[sim.BodyB]))
	t.writeRow(1, 2, title+"  "+state+"  "+counters)

	a := t.styles.blockA.Render(fmt.Sprintf("A  %s  %s", t.labels[loop.LabelVelocityA], t.labels[loop.LabelMassA]))
	b := t.styles.blockB.Render(fmt.Sprintf("B  %s  %s", t.labels[loop.LabelVelocityB], t.labels[loop.LabelMassB]))
	center := t.termWidth / 2
	t.writeRow(2, max(center-lipgloss.Width(a)-4, 2), a+"        "+b)
}

func (t *Terminal) drawPanel(panel *control.Surface) {
	top := t.termHeight - panelRows + 1

	var fields []string
	for _, f := range control.Fields {
		value := fmt.Sprintf("%g", panel.Value(f))
		if buf, editing := panel.Editing(); editing && f == panel.Cursor() {
			value = buf + "_"
		}
		text := fmt.Sprintf("%s: %s %s", f, value, f.Unit())
		if f == panel.Cursor() {
			fields = append(fields, t.styles.selected.Render("["+text+"]"))
		} else {
			fields = append(fields, t.styles.field.Render(" "+text+" "))
		}
	}
	t.writeRow(top+1, 2, strings.Join(fields, "  "))

	msg := ""
	if m := panel.Message(); m != "" {
		msg = t.styles.err.Render(m)
	}
	t.writeRow(top+2, 2, msg)

	help := "↑/↓ field  ←/→ adjust  0-9 type  ENTER apply  R restart  C defaults  SPACE play/pause  Q quit"
	t.writeRow(top+3, 2, t.styles.muted.Render(help))
}

// writeRow rewrites a screen row when its text changed since the last frame.
func (t *Terminal) writeRow(row, col int, text string) {
	key := fmt.Sprintf("%d:%s", col, text)
	if prev, ok := t.rows[row]; ok && prev == key {
		return
	}
	t.rows[row] = key
	t.cw.ClearRow(row)
	t.cw.WriteAt(col, row, text)
}
