package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_Fresh(t *testing.T) {
	s := NewStream("empty")
	assert.Equal(t, "empty", s.Name())
	assert.True(t, s.IsOff())
	assert.False(t, s.IsOn())
	assert.Equal(t, 0, s.Len())

	ivs, err := s.Intervals()
	require.NoError(t, err)
	assert.Empty(t, ivs)

	_, err = s.LastTurnOn()
	assert.Error(t, err)
	_, err = s.LastTurnOff()
	assert.Error(t, err)
}

func TestStream_Open(t *testing.T) {
	s := NewStream("open")
	require.NoError(t, s.TurnOn(1, 1))

	assert.True(t, s.IsOn())
	assert.Equal(t, 1, s.Len())

	_, err := s.Intervals()
	assert.Error(t, err, "open intervals cannot be listed")
	_, err = s.LastTurnOff()
	assert.Error(t, err)

	on, err := s.LastTurnOn()
	require.NoError(t, err)
	assert.Equal(t, 1.0, on)
}

func TestStream_Closed(t *testing.T) {
	s := NewStream("closed")
	require.NoError(t, s.TurnOn(1, 1))
	require.NoError(t, s.TurnOff(2, 2))

	assert.True(t, s.IsOff())
	assert.Equal(t, 1, s.Len())

	ivs, err := s.Intervals()
	require.NoError(t, err)
	assert.Equal(t, []Interval{{Begin: 1, End: 2}}, ivs)

	on, err := s.LastTurnOn()
	require.NoError(t, err)
	assert.Equal(t, 1.0, on)
	off, err := s.LastTurnOff()
	require.NoError(t, err)
	assert.Equal(t, 2.0, off)
}

func TestStream_DoubleToggle(t *testing.T) {
	s := NewStream("RF")
	require.NoError(t, s.TurnOn(0, 3))

	var se *StreamError
	err := s.TurnOn(1, 4)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "RF", se.Stream)
	assert.Equal(t, 4, se.Line)

	require.NoError(t, s.TurnOff(1, 5))
	err = s.TurnOff(2, 6)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 6, se.Line)
}

func TestStream_TurnOffBeforeOn(t *testing.T) {
	s := NewStream("CH1")
	require.NoError(t, s.TurnOn(5, 1))
	assert.Error(t, s.TurnOff(4, 2))
}
