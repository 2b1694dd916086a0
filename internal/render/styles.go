package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tomz197/collide/internal/sim"
)

const groundColor = 0x808080

type styles struct {
	title    lipgloss.Style
	accent   lipgloss.Style
	muted    lipgloss.Style
	blockA   lipgloss.Style
	blockB   lipgloss.Style
	field    lipgloss.Style
	selected lipgloss.Style
	err      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		accent:   r.NewStyle().Foreground(lipgloss.Color("86")),
		muted:    r.NewStyle().Foreground(lipgloss.Color("242")),
		blockA:   r.NewStyle().Foreground(tintColor(sim.TintA)),
		blockB:   r.NewStyle().Foreground(tintColor(sim.TintB)),
		field:    r.NewStyle().Foreground(lipgloss.Color("250")),
		selected: r.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		err:      r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func tintColor(t sim.Tint) lipgloss.Color {
	r, g, b := t.RGB()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}
