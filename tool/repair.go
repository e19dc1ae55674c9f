package tool

import (
	"os"

	"github.com/mctools/mcpl/endian"
	"github.com/mctools/mcpl/errs"
	"github.com/mctools/mcpl/section"
	"github.com/mctools/mcpl/transport"
)

// Repair recomputes nparticles for an uncompressed file whose header
// disagrees with its actual data size, rewriting the field in place. It
// refuses to touch a file that is already consistent.
func Repair(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h, headerSize, err := section.ReadHeader(f)
	if err != nil {
		return 0, err
	}

	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}

	remaining := fi.Size() - int64(headerSize)
	if remaining < 0 || h.ParticleSize == 0 {
		return 0, errs.ErrExcessBytes
	}
	if remaining%int64(h.ParticleSize) != 0 {
		return 0, errs.ErrExcessBytes
	}
	trueCount := uint64(remaining / int64(h.ParticleSize))

	if trueCount == h.NParticles {
		return h.NParticles, errs.ErrNotBroken
	}

	engine := endian.GetLittleEndianEngine()
	if h.Endianness.Byte() == 'B' {
		engine = endian.GetBigEndianEngine()
	}
	patch := make([]byte, 8)
	engine.PutUint64(patch, trueCount)
	if err := transport.PatchBytes(path, section.NParticlesOffset, patch); err != nil {
		return 0, err
	}

	return trueCount, nil
}
