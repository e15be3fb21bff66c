package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	r, err := Parse([]string{"10", "20", "-60", "-50"})
	require.NoError(t, err)
	assert.Equal(t, Region{LatMin: 10, LatMax: 20, LonMin: -60, LonMax: -50}, r)
}

func TestParse_Errors(t *testing.T) {
	cases := [][]string{
		{"10", "20", "-60"},              // too few
		{"10", "20", "-60", "abc"},       // not a number
		{"20", "10", "-60", "-50"},       // latMin >= latMax
		{"-95", "20", "-60", "-50"},      // latitude out of range
		{"10", "95", "-60", "-50"},       // latitude out of range
		{"10", "10", "-60", "-50"},       // degenerate
	}
	for _, args := range cases {
		_, err := Parse(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestLongitudeNormalization(t *testing.T) {
	r, err := New(10, 20, 300, 310)
	require.NoError(t, err)
	assert.Equal(t, -60.0, r.LonMin)
	assert.Equal(t, -50.0, r.LonMax)

	r, err = New(10, 20, 180, 190)
	require.NoError(t, err)
	assert.Equal(t, -180.0, r.LonMin)
	assert.Equal(t, -170.0, r.LonMax)
}

func TestIntersects(t *testing.T) {
	r, err := New(10, 20, -60, -50)
	require.NoError(t, err)

	overlapping, err := New(15, 25, -55, -40)
	require.NoError(t, err)
	assert.True(t, r.Intersects(overlapping))
	assert.True(t, overlapping.Intersects(r))

	// Same longitudes, unnormalized on input.
	wrapped, err := New(15, 25, 305, 320)
	require.NoError(t, err)
	assert.True(t, r.Intersects(wrapped))

	disjoint, err := New(10, 20, 100, 120)
	require.NoError(t, err)
	assert.False(t, r.Intersects(disjoint))

	tooFarNorth, err := New(25, 35, -60, -50)
	require.NoError(t, err)
	assert.False(t, r.Intersects(tooFarNorth))
}

func TestTokenValues(t *testing.T) {
	r, err := New(10, 20, -60.5, -50)
	require.NoError(t, err)

	vals := r.TokenValues()
	assert.Equal(t, "10", vals["N1"])
	assert.Equal(t, "20", vals["N2"])
	assert.Equal(t, "-60.5", vals["E1"])
	assert.Equal(t, "-50", vals["E2"])
}
