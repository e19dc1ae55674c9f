package section

import (
	"bytes"
	"testing"

	"github.com/mctools/mcpl/errs"
	"github.com/mctools/mcpl/format"
	"github.com/stretchr/testify/require"
)

func sampleHeader() *Header {
	return &Header{
		Version:      format.Version3,
		Endianness:   format.Little,
		NParticles:   42,
		NComments:    1,
		NBlobs:       1,
		UserFlags:    false,
		Polarisation: true,
		SinglePrec:   false,
		UniversalPDG: 2112,
		ParticleSize: 41,
		SourceName:   []byte("testgen"),
		Comments:     [][]byte{FormatStatSumComment("hello", 1.0)},
		BlobKeys:     [][]byte{[]byte("geometry")},
		Blobs:        [][]byte{[]byte{1, 2, 3, 4}},
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	require := require.New(t)

	h := sampleHeader()
	b := h.Bytes()

	got, n, err := Parse(b)
	require.NoError(err)
	require.Equal(len(b), n)
	require.Equal(h.Version, got.Version)
	require.Equal(h.Endianness, got.Endianness)
	require.Equal(h.NParticles, got.NParticles)
	require.Equal(h.Polarisation, got.Polarisation)
	require.Equal(h.UniversalPDG, got.UniversalPDG)
	require.Equal(h.SourceName, got.SourceName)
	require.Equal(h.BlobKeys, got.BlobKeys)
	require.Equal(h.Blobs, got.Blobs)
}

func TestHeaderRoundTripBigEndian(t *testing.T) {
	require := require.New(t)

	h := sampleHeader()
	h.Endianness = format.Big
	b := h.Bytes()

	got, _, err := Parse(b)
	require.NoError(err)
	require.Equal(format.Big, got.Endianness)
	require.Equal(h.NParticles, got.NParticles)
}

func TestParseRejectsBadMagic(t *testing.T) {
	require := require.New(t)
	h := sampleHeader()
	b := h.Bytes()
	b[0] = 'X'
	_, _, err := Parse(b)
	require.ErrorIs(err, errs.ErrBadMagic)
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	require := require.New(t)
	h := sampleHeader()
	b := h.Bytes()
	copy(b[VersionOffset:VersionOffset+3], "009")
	_, _, err := Parse(b)
	require.Error(err)
}

func TestParseRejectsTruncatedData(t *testing.T) {
	require := require.New(t)
	h := sampleHeader()
	b := h.Bytes()
	_, _, err := Parse(b[:len(b)-5])
	require.Error(err)
}

func TestParseRejectsDuplicateBlobKey(t *testing.T) {
	require := require.New(t)
	h := sampleHeader()
	h.NBlobs = 2
	h.BlobKeys = [][]byte{[]byte("geometry"), []byte("geometry")}
	h.Blobs = [][]byte{[]byte{1}, []byte{2}}
	b := h.Bytes()
	_, _, err := Parse(b)
	require.Error(err)
}

func TestReadHeaderMatchesParse(t *testing.T) {
	require := require.New(t)

	h := sampleHeader()
	b := h.Bytes()

	parsed, n, err := Parse(b)
	require.NoError(err)

	streamed, n2, err := ReadHeader(bytes.NewReader(b))
	require.NoError(err)
	require.Equal(n, n2)
	require.Equal(parsed.NParticles, streamed.NParticles)
	require.Equal(parsed.SourceName, streamed.SourceName)
	require.Equal(parsed.BlobKeys, streamed.BlobKeys)
	require.Equal(parsed.Blobs, streamed.Blobs)
}

func TestHeaderWithUniversalWeight(t *testing.T) {
	require := require.New(t)
	h := sampleHeader()
	h.HasUniversalWeight = true
	h.UniversalWeight = 1.0
	b := h.Bytes()

	got, _, err := Parse(b)
	require.NoError(err)
	require.True(got.HasUniversalWeight)
	require.Equal(1.0, got.UniversalWeight)
}
