package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomz197/collide/internal/sim"
)

func TestNewShowsDefaults(t *testing.T) {
	s := New(sim.DefaultParams())
	assert.Equal(t, sim.DefaultParams(), s.Values())
	assert.Equal(t, FieldMassA, s.Cursor())
	assert.Empty(t, s.Message())
}

func TestCursorWraps(t *testing.T) {
	s := New(sim.DefaultParams())
	s.Prev()
	assert.Equal(t, FieldVelocityB, s.Cursor())
	s.Next()
	s.Next()
	assert.Equal(t, FieldMassB, s.Cursor())
}

func TestIncrementDecrement(t *testing.T) {
	s := New(sim.DefaultParams())
	s.Increment()
	s.Increment()
	assert.Equal(t, 5.0, s.Value(FieldMassA))

	s.Next()
	s.Next()
	s.Decrement()
	assert.Equal(t, 14.0, s.Value(FieldVelocityA))
}

func TestTypeAndCommit(t *testing.T) {
	s := New(sim.DefaultParams())
	s.Next()
	for _, r := range "12.5" {
		require.True(t, s.Type(r))
	}
	assert.False(t, s.Type('x'))
	buf, editing := s.Editing()
	assert.True(t, editing)
	assert.Equal(t, "12.5", buf)

	s.Backspace()
	s.Next()

	assert.Equal(t, 12.0, s.Value(FieldMassB))
	_, editing = s.Editing()
	assert.False(t, editing)
}

func TestTypeNegativeOnlyLeading(t *testing.T) {
	s := New(sim.DefaultParams())
	s.Prev()
	assert.True(t, s.Type('-'))
	assert.True(t, s.Type('4'))
	assert.False(t, s.Type('-'))
	s.Next()
	assert.Equal(t, -4.0, s.Value(FieldVelocityB))
}

func TestApplyPushesValues(t *testing.T) {
	st := sim.NewState()
	require.NoError(t, st.Initialize(sim.DefaultParams(), 800))
	s := New(sim.DefaultParams())
	s.Increment()

	require.NoError(t, s.Apply(st))

	assert.Equal(t, 4.0, st.Params().MassA)
	assert.Equal(t, 40.0, st.Body(sim.BodyA).Side)
	assert.Empty(t, s.Message())
}

func TestApplyInvalidKeepsMessage(t *testing.T) {
	st := sim.NewState()
	require.NoError(t, st.Initialize(sim.DefaultParams(), 800))
	s := New(sim.DefaultParams())
	for i := 0; i < 3; i++ {
		s.Decrement()
	}

	err := s.Apply(st)

	assert.ErrorIs(t, err, sim.ErrInvalidParameter)
	assert.Contains(t, s.Message(), "mass A")
	assert.Equal(t, sim.DefaultParams(), st.Params())
}

func TestApplyRejectsUnparsableText(t *testing.T) {
	st := sim.NewState()
	require.NoError(t, st.Initialize(sim.DefaultParams(), 800))
	s := New(sim.DefaultParams())
	s.Type('.')

	err := s.Apply(st)

	assert.Error(t, err)
	assert.Contains(t, s.Message(), "not a number")
	assert.Equal(t, 3.0, s.Value(FieldMassA))
}

func TestResetIsUIOnly(t *testing.T) {
	st := sim.NewState()
	require.NoError(t, st.Initialize(sim.DefaultParams(), 800))
	s := New(sim.DefaultParams())
	s.Increment()
	require.NoError(t, s.Apply(st))
	sim.Step(st, 1, 800)
	moved := st.Body(sim.BodyA)

	s.Reset()

	assert.Equal(t, sim.DefaultParams(), s.Values())
	assert.Equal(t, 4.0, st.Params().MassA, "simulation keeps its applied params")
	assert.Equal(t, moved, st.Body(sim.BodyA), "simulation is not reset")
}

func TestLoad(t *testing.T) {
	s := New(sim.DefaultParams())
	s.Type('9')
	p := sim.Params{MassA: 1, MassB: 2, VelocityA: 3, VelocityB: 4}

	s.Load(p)

	assert.Equal(t, p, s.Values())
	_, editing := s.Editing()
	assert.False(t, editing)
}

func TestFieldNames(t *testing.T) {
	assert.Equal(t, "velocity B", FieldVelocityB.String())
	assert.Equal(t, "kg", FieldMassB.Unit())
	assert.Equal(t, "m/s", FieldVelocityA.Unit())
}
