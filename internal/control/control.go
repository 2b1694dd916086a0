// Package control implements the parameter panel: four numeric inputs plus
// apply and reset commands.
package control

import (
	"errors"
	"strconv"

	"github.com/tomz197/collide/internal/config"
	"github.com/tomz197/collide/internal/sim"
)

// Field identifies one of the panel inputs.
type Field int

const (
	FieldMassA Field = iota
	FieldMassB
	FieldVelocityA
	FieldVelocityB
	fieldCount
)

// Fields lists the inputs in display order.
var Fields = [...]Field{FieldMassA, FieldMassB, FieldVelocityA, FieldVelocityB}

// String returns the field's display name.
func (f Field) String() string {
	switch f {
	case FieldMassA:
		return "mass A"
	case FieldMassB:
		return "mass B"
	case FieldVelocityA:
		return "velocity A"
	case FieldVelocityB:
		return "velocity B"
	default:
		return "unknown"
	}
}

// Unit returns the unit shown next to the field.
func (f Field) Unit() string {
	if f == FieldMassA || f == FieldMassB {
		return "kg"
	}
	return "m/s"
}

func (f Field) step() float64 {
	if f == FieldMassA || f == FieldMassB {
		return config.MassStep
	}
	return config.VelocityStep
}

// Applier accepts new simulation parameters. Both *sim.State and *loop.Loop
// satisfy it.
type Applier interface {
	Apply(p sim.Params) error
}

// Surface holds the displayed input values. It never touches the
// simulation except through Apply.
type Surface struct {
	values   [fieldCount]float64
	defaults sim.Params
	cursor   Field
	editBuf  string
	editing  bool
	message  string
}

// New creates a panel showing defaults.
func New(defaults sim.Params) *Surface {
	s := &Surface{defaults: defaults}
	s.Load(defaults)
	return s
}

// Load replaces the displayed values and drops any pending edit.
func (s *Surface) Load(p sim.Params) {
	s.values = [fieldCount]float64{p.MassA, p.MassB, p.VelocityA, p.VelocityB}
	s.editing = false
	s.editBuf = ""
}

// Values returns the displayed values as simulation parameters.
func (s *Surface) Values() sim.Params {
	return sim.Params{
		MassA:     s.values[FieldMassA],
		MassB:     s.values[FieldMassB],
		VelocityA: s.values[FieldVelocityA],
		VelocityB: s.values[FieldVelocityB],
	}
}

// Value returns one displayed value.
func (s *Surface) Value(f Field) float64 {
	return s.values[f]
}

// Cursor returns the selected field.
func (s *Surface) Cursor() Field {
	return s.cursor
}

// Editing returns the text typed into the selected field, if any.
func (s *Surface) Editing() (string, bool) {
	return s.editBuf, s.editing
}

// Message returns the last validation message, empty after a good apply.
func (s *Surface) Message() string {
	return s.message
}

// Next selects the following field, wrapping around.
func (s *Surface) Next() {
	s.commitEdit()
	s.cursor = (s.cursor + 1) % fieldCount
}

// Prev selects the preceding field, wrapping around.
func (s *Surface) Prev() {
	s.commitEdit()
	s.cursor = (s.cursor + fieldCount - 1) % fieldCount
}

// Increment raises the selected field by its step.
func (s *Surface) Increment() {
	s.commitEdit()
	s.values[s.cursor] += s.cursor.step()
}

// Decrement lowers the selected field by its step. Masses may go to zero or
// below; Apply reports them.
func (s *Surface) Decrement() {
	s.commitEdit()
	s.values[s.cursor] -= s.cursor.step()
}

// Type appends a character to the selected field's text. Only digits, '.'
// and a leading '-' are accepted.
func (s *Surface) Type(r rune) bool {
	switch {
	case r >= '0' && r <= '9', r == '.':
	case r == '-' && (!s.editing || s.editBuf == ""):
	default:
		return false
	}
	s.editing = true
	s.editBuf += string(r)
	return true
}

// Backspace removes the last typed character.
func (s *Surface) Backspace() {
	if !s.editing || s.editBuf == "" {
		return
	}
	s.editBuf = s.editBuf[:len(s.editBuf)-1]
}

// Apply pushes the displayed values into target. Validation failures are
// kept for display and returned.
func (s *Surface) Apply(target Applier) error {
	if !s.commitEdit() {
		return errors.New(s.message)
	}
	if err := target.Apply(s.Values()); err != nil {
		s.message = err.Error()
		return err
	}
	s.message = ""
	return nil
}

// Reset restores the displayed values to their defaults. The simulation is
// left alone.
func (s *Surface) Reset() {
	s.Load(s.defaults)
	s.cursor = FieldMassA
	s.message = ""
}

// commitEdit parses typed text into the selected field. Reports false and
// keeps the old value if the text is not a number.
func (s *Surface) commitEdit() bool {
	if !s.editing {
		return true
	}
	buf := s.editBuf
	s.editing = false
	s.editBuf = ""
	if buf == "" {
		return true
	}
	v, err := strconv.ParseFloat(buf, 64)
	if err != nil {
		s.message = strconv.Quote(buf) + " is not a number"
		return false
	}
	s.values[s.cursor] = v
	return true
}
