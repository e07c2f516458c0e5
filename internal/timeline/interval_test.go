package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInterval(t *testing.T, begin, end float64) Interval {
	t.Helper()
	iv, err := NewInterval(begin, end)
	require.NoError(t, err)
	return iv
}

func TestNewInterval_Valid(t *testing.T) {
	iv := mustInterval(t, 1, 2)
	assert.Equal(t, 1.0, iv.Begin)
	assert.Equal(t, 2.0, iv.End)
	assert.Equal(t, 1.0, iv.Length())
}

func TestNewInterval_EndBeforeBegin(t *testing.T) {
	_, err := NewInterval(1, 0)
	assert.Error(t, err)
}

func TestInterval_Empty(t *testing.T) {
	iv := mustInterval(t, 0, 0)
	assert.Equal(t, 0.0, iv.Length())

	scaled, err := iv.Scale(20)
	require.NoError(t, err)
	assert.Equal(t, iv, scaled)
}

func TestInterval_Scale(t *testing.T) {
	iv := mustInterval(t, 1, 2)

	scaled, err := iv.Scale(2)
	require.NoError(t, err)
	assert.Equal(t, mustInterval(t, 2, 4), scaled)

	zero, err := iv.Scale(0)
	require.NoError(t, err)
	assert.Equal(t, mustInterval(t, 0, 0), zero)

	_, err = iv.Scale(-1)
	assert.Error(t, err, "negative scaling swaps the endpoints")
}

func TestInterval_Overlaps(t *testing.T) {
	a := mustInterval(t, 1, 2)
	b := mustInterval(t, 0, 4)
	c := mustInterval(t, 2, 4)
	null := mustInterval(t, 0, 0)

	assert.True(t, a.OverlapsWith(b))
	assert.True(t, b.OverlapsWith(a))
	assert.True(t, b.OverlapsWith(c))

	// Shared boundaries do not overlap.
	assert.False(t, a.OverlapsWith(c))
	assert.False(t, c.OverlapsWith(a))
	assert.False(t, a.OverlapsWith(null))

	assert.True(t, a.OverlapsAny([]Interval{c, b}))
	assert.False(t, a.OverlapsAny([]Interval{c, null}))
}

func TestInterval_CheckOverlap(t *testing.T) {
	a := mustInterval(t, 1, 2)
	b := mustInterval(t, 0, 4)
	c := mustInterval(t, 2, 4)

	var oe *OverlapError
	err := a.CheckOverlap(b)
	require.ErrorAs(t, err, &oe)

	assert.NoError(t, a.CheckOverlap(c))
}

func TestInterval_Within(t *testing.T) {
	a := mustInterval(t, 1, 2)
	b := mustInterval(t, 0, 4)
	c := mustInterval(t, 2, 4)

	assert.True(t, a.Within(b))
	assert.False(t, b.Within(a))
	assert.True(t, a.Within(a), "shared boundaries are allowed")
	assert.True(t, a.WithinAny([]Interval{c, b}))
	assert.False(t, a.WithinAny([]Interval{c}))
}
