package particle

import (
	"math"
	"testing"

	"github.com/mctools/mcpl/endian"
	"github.com/mctools/mcpl/format"
	"github.com/mctools/mcpl/section"
	"github.com/stretchr/testify/require"
)

func sampleParticle() *Particle {
	return &Particle{
		PolX: 0.1, PolY: 0.2, PolZ: 0.3,
		X: 1.5, Y: -2.5, Z: 3.5,
		Ux: 0, Uy: 0, Uz: 1,
		Ekin: 14.1,
		Time: 0.01,
		Weight: 2.0, PDGCode: 2112,
		UserFlags: 0xdeadbeef,
	}
}

func TestLayoutRecordSizeMatchesFieldCount(t *testing.T) {
	require := require.New(t)

	h := &section.Header{Version: format.Version3, SinglePrec: false, Polarisation: true}
	l := NewLayout(h)
	// polx,poly,polz,x,y,z,uve1,uve2,uve3,t,w,pdg = 11*8 + 4
	require.Equal(11*8+4, l.RecordSize)
}

func TestEncodeDecodeRoundTripDoublePrecisionAllFields(t *testing.T) {
	require := require.New(t)

	h := &section.Header{Version: format.Version3, SinglePrec: false, Polarisation: true, UserFlags: true}
	l := NewLayout(h)
	require.True(l.HasWeightField)
	require.True(l.HasPDGField)

	p := sampleParticle()
	buf := make([]byte, l.RecordSize)
	engine := endian.GetLittleEndianEngine()
	l.Encode(p, buf, engine)

	got, err := l.Decode(buf, engine, 0, 0)
	require.NoError(err)
	require.InDelta(p.X, got.X, 1e-12)
	require.InDelta(p.Y, got.Y, 1e-12)
	require.InDelta(p.Z, got.Z, 1e-12)
	require.InDelta(p.Ekin, got.Ekin, 1e-9)
	require.InDelta(p.Ux, got.Ux, 1e-9)
	require.InDelta(p.Uy, got.Uy, 1e-9)
	require.InDelta(p.Uz, got.Uz, 1e-9)
	require.Equal(p.Weight, got.Weight)
	require.Equal(p.PDGCode, got.PDGCode)
	require.Equal(p.UserFlags, got.UserFlags)
}

func TestEncodeDecodeSinglePrecision(t *testing.T) {
	require := require.New(t)

	h := &section.Header{Version: format.Version3, SinglePrec: true}
	l := NewLayout(h)
	require.Equal(7*4+4+4, l.RecordSize) // xyz+uve+t (no pol) + w + pdg

	p := sampleParticle()
	buf := make([]byte, l.RecordSize)
	engine := endian.GetLittleEndianEngine()
	l.Encode(p, buf, engine)

	got, err := l.Decode(buf, engine, 0, 0)
	require.NoError(err)
	require.InDelta(p.X, got.X, 1e-4)
	require.InDelta(p.Ekin, got.Ekin, 1e-3)
}

func TestLayoutUniversalWeightAndPDGOmittedFromRecord(t *testing.T) {
	require := require.New(t)

	h := &section.Header{
		Version: format.Version3, HasUniversalWeight: true, UniversalWeight: 1.0,
		UniversalPDG: 2112,
	}
	l := NewLayout(h)
	require.False(l.HasWeightField)
	require.False(l.HasPDGField)
	require.Equal(7*8, l.RecordSize)

	p := sampleParticle()
	buf := make([]byte, l.RecordSize)
	engine := endian.GetLittleEndianEngine()
	l.Encode(p, buf, engine)

	got, err := l.Decode(buf, engine, 1.0, 2112)
	require.NoError(err)
	require.Equal(1.0, got.Weight)
	require.Equal(int32(2112), got.PDGCode)
}

func TestDecodeLegacyVersionUsesOctahedralUnpack(t *testing.T) {
	require := require.New(t)

	h := &section.Header{Version: format.Version2}
	l := NewLayout(h)

	buf := make([]byte, l.RecordSize)
	engine := endian.GetLittleEndianEngine()
	// x,y,z,uve1,uve2,uve3,t
	engine.PutUint64(buf[0:8], math.Float64bits(0))
	engine.PutUint64(buf[8:16], math.Float64bits(0))
	engine.PutUint64(buf[16:24], math.Float64bits(0))
	engine.PutUint64(buf[24:32], math.Float64bits(0)) // uve1
	engine.PutUint64(buf[32:40], math.Float64bits(0)) // uve2
	engine.PutUint64(buf[40:48], math.Float64bits(3.0)) // uve3 -> ekin=3
	engine.PutUint64(buf[48:56], math.Float64bits(0))

	got, err := l.Decode(buf, engine, 0, 0)
	require.NoError(err)
	require.InDelta(3.0, got.Ekin, 1e-12)
	require.InDelta(1.0, got.Uz, 1e-9)
}

func TestDecodeTruncatedRecordFails(t *testing.T) {
	require := require.New(t)
	h := &section.Header{Version: format.Version3}
	l := NewLayout(h)
	_, err := l.Decode(make([]byte, l.RecordSize-1), endian.GetLittleEndianEngine(), 0, 0)
	require.Error(err)
}
