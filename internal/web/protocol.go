package web

import (
	"fmt"

	"github.com/tomz197/collide/internal/loop"
	"github.com/tomz197/collide/internal/sim"
)

// Client → server message types.
const (
	MsgPlay   = "play"
	MsgPause  = "pause"
	MsgReset  = "reset"
	MsgApply  = "apply"
	MsgResize = "resize"
)

// Server → client message types.
const (
	MsgFrame = "frame"
	MsgError = "error"
)

// Message is a command sent by the browser.
type Message struct {
	Type   string      `json:"type"`
	Params *sim.Params `json:"params,omitempty"`
	Width  float64     `json:"width,omitempty"`
}

// BodyFrame is one block as the browser draws it.
type BodyFrame struct {
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Side float64 `json:"side"`
	Tint string  `json:"tint"`
}

// Labels holds the text shown next to each block.
type Labels struct {
	VelocityA string `json:"velocityA"`
	VelocityB string `json:"velocityB"`
	MassA     string `json:"massA"`
	MassB     string `json:"massB"`
}

// Frame is the per-tick snapshot pushed to the browser.
type Frame struct {
	Type       string       `json:"type"`
	Session    string       `json:"session"`
	Bodies     [2]BodyFrame `json:"bodies"`
	Labels     Labels       `json:"labels"`
	Playing    bool         `json:"playing"`
	WorldWidth float64      `json:"worldWidth"`
	Collisions int          `json:"collisions"`
	Momentum   float64      `json:"momentum"`
	Energy     float64      `json:"energy"`
}

// ErrorMessage reports a rejected command.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// frameRenderer implements loop.Renderer by filling in a Frame.
type frameRenderer struct {
	frame Frame
}

var _ loop.Renderer = (*frameRenderer)(nil)

func (r *frameRenderer) UpdatePosition(id sim.BodyID, x, side float64, tint sim.Tint) {
	red, green, blue := tint.RGB()
	r.frame.Bodies[id] = BodyFrame{
		ID:   id.String(),
		X:    x,
		Side: side,
		Tint: fmt.Sprintf("#%02x%02x%02x", red, green, blue),
	}
}

func (r *frameRenderer) UpdateLabel(id loop.LabelID, text string) {
	switch id {
	case loop.LabelVelocityA:
		r.frame.Labels.VelocityA = text
	case loop.LabelVelocityB:
		r.frame.Labels.VelocityB = text
	case loop.LabelMassA:
		r.frame.Labels.MassA = text
	case loop.LabelMassB:
		r.frame.Labels.MassB = text
	}
}

func (r *frameRenderer) SetVisible(id loop.WidgetID, visible bool) {
	if id == loop.WidgetPause {
		r.frame.Playing = visible
	}
}

func (r *frameRenderer) Reposition(worldWidth float64) {
	r.frame.WorldWidth = worldWidth
}
