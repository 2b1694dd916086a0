package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCanvas(termW, termH int, logicalW, logicalH float64) *Canvas {
	r := NewRenderer(&bytes.Buffer{}, termenv.Ascii)
	return NewScaledCanvas(r, termW, termH, logicalW, logicalH)
}

func TestFillRectScalesAndClips(t *testing.T) {
	c := newTestCanvas(10, 5, 100, 100)

	c.FillRect(-20, 0, 50, 20, 0x00ff00)

	// 10 sub-pixel rows for 100 logical units: 0.1 px per unit on both axes.
	for x := 0; x < 10; x++ {
		want := x < 3
		assert.Equal(t, want, c.pixels[x] != 0, "x=%d", x)
	}
	assert.NotZero(t, c.pixels[1*10+2])
	assert.Zero(t, c.pixels[2*10+0])
}

func TestFillRectKeepsThinBlocksVisible(t *testing.T) {
	c := newTestCanvas(10, 5, 1000, 1000)
	c.FillRect(500, 500, 1, 1, 0x0000ff)

	count := 0
	for _, px := range c.pixels {
		if px != 0 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRenderOnlyEmitsChanges(t *testing.T) {
	c := newTestCanvas(4, 2, 4, 4)
	c.FillRect(0, 0, 1, 2, 0xff0000)

	var first bytes.Buffer
	require.NoError(t, c.Render(&first))
	assert.Equal(t, 1, strings.Count(first.String(), "\033["), "one filled cell on first frame")
	assert.Contains(t, first.String(), string(BlockFull))

	var second bytes.Buffer
	require.NoError(t, c.Render(&second))
	assert.Empty(t, second.String())

	c.Clear()
	var third bytes.Buffer
	require.NoError(t, c.Render(&third))
	assert.Equal(t, "\033[1;1H ", third.String())
}

func TestRenderHalfBlocks(t *testing.T) {
	c := newTestCanvas(2, 1, 2, 2)
	c.FillRect(0, 0, 1, 1, 0xff0000)
	c.FillRect(1, 1, 1, 1, 0x00ff00)

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))
	assert.Contains(t, buf.String(), string(BlockUpperHalf))
	assert.Contains(t, buf.String(), string(BlockLowerHalf))
}

func TestRenderAppliesOffset(t *testing.T) {
	c := newTestCanvas(2, 1, 2, 2)
	c.SetOffset(3, 2)
	c.FillRect(1, 0, 1, 2, 0xffffff)

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "\033[3;5H"), buf.String())
}

func TestRenderBorder(t *testing.T) {
	c := newTestCanvas(3, 2, 3, 4)

	var none bytes.Buffer
	require.NoError(t, c.RenderBorder(&none))
	assert.Empty(t, none.String())

	c.SetOffset(1, 1)
	var buf bytes.Buffer
	require.NoError(t, c.RenderBorder(&buf))
	assert.Contains(t, buf.String(), "┌───┐")
	assert.Contains(t, buf.String(), "└───┘")
}

func TestLogicalToTerminal(t *testing.T) {
	c := newTestCanvas(80, 20, 800, 400)
	col, row := c.LogicalToTerminal(400, 200)
	assert.Equal(t, 41, col)
	assert.Equal(t, 11, row)
}

func TestChunkWriter(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 2, 1)
	cw.WriteAt(3, 4, "hi")
	assert.Empty(t, out.String(), "nothing written before Flush")

	require.NoError(t, cw.Flush())
	assert.Equal(t, "\033[5;5Hhi", out.String())
}

func TestProfileForTerm(t *testing.T) {
	assert.Equal(t, termenv.ANSI256, ProfileForTerm("xterm-256color"))
	assert.Equal(t, termenv.TrueColor, ProfileForTerm("xterm-truecolor"))
	assert.Equal(t, termenv.Ascii, ProfileForTerm("dumb"))
	assert.Equal(t, termenv.ANSI, ProfileForTerm("vt100"))
}
