package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencySeries_SetAndReplace(t *testing.T) {
	f := NewFrequencySeries()
	f.Set(2, 135)
	f.Set(1, 100)
	f.Set(5, 274)
	assert.Equal(t, 3, f.Len())

	// Same time replaces.
	f.Set(2, 140)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, EventList{{1, 100}, {2, 140}, {5, 274}}, f.Events())
}

func TestFrequencySeries_Frequencies(t *testing.T) {
	f := NewFrequencySeries()
	f.Set(1, 100)
	f.Set(2, 135)
	f.Set(5, 100)
	assert.Equal(t, []float64{100, 135}, f.Frequencies())
}

func TestFrequencySeries_ShiftsWithin(t *testing.T) {
	f := NewFrequencySeries()
	f.Set(1, 100)
	f.Set(2, 135)
	f.Set(5, 274)
	f.Set(23, 34)

	// Interval starting strictly between two changes begins with the earlier
	// frequency.
	within, err := f.ShiftsWithin(mustInterval(t, 3, 6))
	require.NoError(t, err)
	assert.Equal(t, EventList{{3, 135}, {5, 274}}, within)

	// A change exactly at the interval end is excluded.
	within, err = f.ShiftsWithin(mustInterval(t, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, EventList{{1, 100}, {2, 135}}, within)
}

func TestFrequencySeries_ShiftsWithin_BeforeFirst(t *testing.T) {
	f := NewFrequencySeries()
	f.Set(1, 100)

	_, err := f.ShiftsWithin(mustInterval(t, 0, 2))
	assert.Error(t, err)
}
