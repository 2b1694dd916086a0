package sim

import (
	"math"

	"github.com/tomz197/collide/internal/physics"
)

// Params are the initial conditions of both blocks.
type Params struct {
	MassA     float64 `json:"massA"`
	MassB     float64 `json:"massB"`
	VelocityA float64 `json:"velocityA"`
	VelocityB float64 `json:"velocityB"`
}

// DefaultParams returns the stock setup: a light block moving right towards a
// heavier block moving left.
func DefaultParams() Params {
	return Params{
		MassA:     3,
		MassB:     7,
		VelocityA: 15,
		VelocityB: -12,
	}
}

// Validate returns an *InvalidParameterError for the first bad field.
func (p Params) Validate() error {
	fields := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"mass A", p.MassA, true},
		{"mass B", p.MassB, true},
		{"velocity A", p.VelocityA, false},
		{"velocity B", p.VelocityB, false},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &InvalidParameterError{Field: f.name, Value: f.value, Reason: "must be a finite number"}
		}
		if f.positive && f.value <= 0 {
			return &InvalidParameterError{Field: f.name, Value: f.value, Reason: "must be greater than zero"}
		}
	}
	return nil
}

// State owns both blocks and the parameters they were last built from.
// It is not safe for concurrent use; a single frame loop owns it.
type State struct {
	bodies     [2]Body
	params     Params
	worldWidth float64
	ready      bool
}

// NewState returns an empty state. Call Initialize before stepping.
func NewState() *State {
	return &State{}
}

// Initialize places A flush with the left wall and B flush with the right
// wall of a world worldWidth pixels wide. On error the state is unchanged.
func (s *State) Initialize(p Params, worldWidth float64) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := validateWidth(worldWidth); err != nil {
		return err
	}
	s.params = p
	s.worldWidth = worldWidth
	s.rebuild()
	return nil
}

// Apply commits p as the new initial parameters and re-initializes at the
// current world width. On error the state is unchanged.
func (s *State) Apply(p Params) error {
	return s.Initialize(p, s.worldWidth)
}

// Reset rebuilds both blocks from the last applied parameters. It does
// nothing before the first successful Initialize.
func (s *State) Reset() {
	if !s.ready {
		return
	}
	s.rebuild()
}

// Resize records the viewport width used by later Apply and Reset calls.
// Non-finite or negative widths are ignored.
func (s *State) Resize(worldWidth float64) {
	if validateWidth(worldWidth) != nil {
		return
	}
	s.worldWidth = worldWidth
}

// Ready reports whether the state has been initialized.
func (s *State) Ready() bool {
	return s.ready
}

// Params returns the last applied parameters.
func (s *State) Params() Params {
	return s.params
}

// WorldWidth returns the width new blocks are laid out against.
func (s *State) WorldWidth() float64 {
	return s.worldWidth
}

// Body returns a copy of the given block.
func (s *State) Body(id BodyID) Body {
	return s.bodies[id]
}

// Bodies returns copies of both blocks.
func (s *State) Bodies() (Body, Body) {
	return s.bodies[BodyA], s.bodies[BodyB]
}

// Momentum returns the total momentum of both blocks.
func (s *State) Momentum() float64 {
	a, b := s.Bodies()
	return physics.Momentum(a.Mass, a.Velocity, b.Mass, b.Velocity)
}

// KineticEnergy returns the total kinetic energy of both blocks.
func (s *State) KineticEnergy() float64 {
	a, b := s.Bodies()
	return physics.KineticEnergy(a.Mass, a.Velocity, b.Mass, b.Velocity)
}

// rebuild recreates the blocks from params, since side length is fixed at construction.
func (s *State) rebuild() {
	a := newBody(s.params.MassA, s.params.VelocityA, 0, TintA)
	b := newBody(s.params.MassB, s.params.VelocityB, 0, TintB)
	b.Position = s.worldWidth - b.Side
	s.bodies = [2]Body{a, b}
	s.ready = true
}

func validateWidth(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return &InvalidParameterError{Field: "world width", Value: w, Reason: "must be a finite non-negative number"}
	}
	return nil
}
