package reader

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mctools/mcpl/endian"
	"github.com/mctools/mcpl/format"
	"github.com/mctools/mcpl/particle"
	"github.com/mctools/mcpl/section"
	"github.com/stretchr/testify/require"
)

// writeTestFile hand-assembles a minimal MCPL file for a fixed set of
// particles, bypassing the writer package (tested separately) so the
// reader can be exercised in isolation.
func writeTestFile(t *testing.T, path string, h *section.Header, particles []particle.Particle) {
	t.Helper()
	require := require.New(t)

	layout := particle.NewLayout(h)
	h.ParticleSize = uint32(layout.RecordSize)
	h.NParticles = uint64(len(particles))

	f, err := os.Create(path)
	require.NoError(err)
	defer f.Close()

	_, err = f.Write(h.Bytes())
	require.NoError(err)

	engine := endian.GetLittleEndianEngine()
	buf := make([]byte, layout.RecordSize)
	for i := range particles {
		layout.Encode(&particles[i], buf, engine)
		_, err = f.Write(buf)
		require.NoError(err)
	}
}

func baseHeader() *section.Header {
	return &section.Header{
		Version:    format.Version3,
		Endianness: format.Little,
		SourceName: []byte("test"),
	}
}

func TestOpenReadsHeaderAndAllParticles(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "f.mcpl")

	particles := []particle.Particle{
		{X: 1, Y: 2, Z: 3, Uz: 1, Ekin: 1.0, Weight: 1.0, PDGCode: 2112},
		{X: 4, Y: 5, Z: 6, Uz: 1, Ekin: 2.0, Weight: 1.0, PDGCode: 22},
	}
	writeTestFile(t, path, baseHeader(), particles)

	r, err := Open(path)
	require.NoError(err)
	defer r.Close()

	require.Equal(StateReady, r.State())
	require.Equal(uint64(2), r.NParticles())

	p1, err := r.Read()
	require.NoError(err)
	require.Equal(1.0, p1.X)
	require.Equal(int32(2112), p1.PDGCode)

	p2, err := r.Read()
	require.NoError(err)
	require.Equal(4.0, p2.X)

	_, err = r.Read()
	require.ErrorIs(err, io.EOF)
}

func TestReadBlockReturnsColumnarView(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "f.mcpl")

	particles := make([]particle.Particle, 5)
	for i := range particles {
		particles[i] = particle.Particle{X: float64(i), Uz: 1, Ekin: float64(i), Weight: 1, PDGCode: 2112}
	}
	writeTestFile(t, path, baseHeader(), particles)

	r, err := Open(path)
	require.NoError(err)
	defer r.Close()

	block, err := r.ReadBlock(3)
	require.NoError(err)
	require.Equal(3, block.Count)
	require.Equal([]float64{0, 1, 2}, block.X)

	block2, err := r.ReadBlock(3)
	require.NoError(err)
	require.Equal(2, block2.Count)
	require.Equal([]float64{3, 4}, block2.X[:2])
}

func TestSkipForwardWithinAndAcrossBlocks(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "f.mcpl")

	particles := make([]particle.Particle, 10)
	for i := range particles {
		particles[i] = particle.Particle{X: float64(i), Uz: 1, Weight: 1, PDGCode: 2112}
	}
	writeTestFile(t, path, baseHeader(), particles)

	r, err := Open(path)
	require.NoError(err)
	defer r.Close()

	_, err = r.ReadBlock(10)
	require.NoError(err)

	require.NoError(r.SkipForward(3))
	p, err := r.Read()
	require.NoError(err)
	require.Equal(3.0, p.X)
}

func TestRewindOnPlainFileReturnsToFirstParticle(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "f.mcpl")
	writeTestFile(t, path, baseHeader(), []particle.Particle{{Uz: 1, Weight: 1, PDGCode: 2112}})

	r, err := Open(path)
	require.NoError(err)
	defer r.Close()

	_, err = r.Read()
	require.NoError(err)

	require.NoError(r.Rewind())
	p, err := r.Read()
	require.NoError(err)
	require.Equal(0.0, p.X)
}

func TestOpenUniversalColumnsSynthesised(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "f.mcpl")

	h := baseHeader()
	h.HasUniversalWeight = true
	h.UniversalWeight = 1.5
	h.UniversalPDG = 2112

	particles := []particle.Particle{{X: 1, Uz: 1}, {X: 2, Uz: 1}}
	writeTestFile(t, path, h, particles)

	r, err := Open(path)
	require.NoError(err)
	defer r.Close()

	block, err := r.ReadBlock(10)
	require.NoError(err)
	require.Equal([]float64{1.5, 1.5}, block.Weight)
	require.Equal([]int32{2112, 2112}, block.PDGCode)
}

func TestOpenRecoversUnclosedSeekableFile(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "f.mcpl")

	h := baseHeader()
	particles := []particle.Particle{{Uz: 1, Weight: 1, PDGCode: 2112}, {Uz: 1, Weight: 1, PDGCode: 22}}
	writeTestFile(t, path, h, particles)

	// Simulate an unclosed file: patch nparticles back to 0 in place.
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	require.NoError(err)
	zero := make([]byte, 8)
	_, err = f.WriteAt(zero, section.NParticlesOffset)
	require.NoError(err)
	require.NoError(f.Close())

	r, err := Open(path)
	require.NoError(err)
	defer r.Close()

	require.Equal(uint64(2), r.NParticles())
	require.NotEmpty(r.Warnings())
}
