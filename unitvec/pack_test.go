package unitvec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func normalize(x, y, z float64) (float64, float64, float64) {
	n := math.Sqrt(x*x + y*y + z*z)
	return x / n, y / n, z / n
}

func TestPackUnpackRoundTrip(t *testing.T) {
	require := require.New(t)

	cases := [][3]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{-1, 0, 0},
		{0, -1, 0},
		{0, 0, -1},
		{0.1, 0.2, 0.3},
		{0.9, 0.1, 0.01},
		{0.5, -0.5, 0.7071},
		{1e-8, 1e-8, 1},
	}

	for _, c := range cases {
		ux, uy, uz := normalize(c[0], c[1], c[2])
		for _, ekin := range []float64{0, 1e-10, 1.0, 14.1, 1e6} {
			a, b, cc := Pack(ux, uy, uz, ekin)
			gx, gy, gz, gekin := Unpack(a, b, cc)

			dist := math.Sqrt(math.Pow(gx-ux, 2) + math.Pow(gy-uy, 2) + math.Pow(gz-uz, 2))
			require.Less(dist, 1e-9, "direction round-trip for %v ekin=%v", c, ekin)
			require.InDelta(ekin, gekin, 1e-9+ekin*1e-12, "energy round-trip for ekin=%v", ekin)
		}
	}
}

func TestPackZeroEnergyKeepsDirection(t *testing.T) {
	require := require.New(t)
	ux, uy, uz := normalize(0.3, -0.6, 0.74)
	a, b, c := Pack(ux, uy, uz, 0)
	gx, gy, gz, gekin := Unpack(a, b, c)
	require.Equal(0.0, gekin)
	require.InDelta(ux, gx, 1e-9)
	require.InDelta(uy, gy, 1e-9)
	require.InDelta(uz, gz, 1e-9)
}

func TestPackEncodesSignOfUzInC(t *testing.T) {
	require := require.New(t)
	ux, uy, uz := normalize(0.1, 0.2, -0.9)
	_, _, c := Pack(ux, uy, uz, 5.0)
	require.True(math.Signbit(c))

	ux, uy, uz = normalize(0.1, 0.2, 0.9)
	_, _, c = Pack(ux, uy, uz, 5.0)
	require.False(math.Signbit(c))
}

func TestUnpackLegacyAxisAligned(t *testing.T) {
	require := require.New(t)

	// +z axis: ux=0,uy=0 => z=1-0-0=1 (no reflection), sign bit clear.
	ux, uy, uz, ekin := UnpackLegacy(0, 0, 2.5)
	require.InDelta(0.0, ux, 1e-12)
	require.InDelta(0.0, uy, 1e-12)
	require.InDelta(1.0, uz, 1e-12)
	require.Equal(2.5, ekin)
}

func TestUnpackLegacyNegativeZSignBitForcesZero(t *testing.T) {
	require := require.New(t)
	_, _, uz, _ := UnpackLegacy(0.3, 0.3, math.Copysign(1.0, -1))
	require.Equal(0.0, uz)
}
