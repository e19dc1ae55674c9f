// Package particle implements the per-particle wire record: a layout
// derived from a file's header flags, and encode/decode over that layout.
package particle

import (
	"github.com/mctools/mcpl/endian"
	"github.com/mctools/mcpl/errs"
	"github.com/mctools/mcpl/format"
	"github.com/mctools/mcpl/section"
	"github.com/mctools/mcpl/unitvec"
)

// Particle is a single decoded MCPL particle. PolX/PolY/PolZ are only
// meaningful when the file carries polarisation; Weight and PDGCode are
// always populated on decode, whether they came from the record itself or
// from the header's universal value.
type Particle struct {
	PolX, PolY, PolZ float64

	X, Y, Z float64

	Ux, Uy, Uz float64
	Ekin       float64

	Time float64

	Weight  float64
	PDGCode int32

	UserFlags uint32
}

// Layout describes how a particle record is laid out on disk for a
// specific file, as determined by its header flags. It has no mutable
// state and is safe to share across goroutines.
type Layout struct {
	Version      format.Version
	SinglePrec   bool
	Polarisation bool

	// HasWeightField is true when weight is stored per-particle. When
	// false, every particle's weight is the header's universal value.
	HasWeightField bool
	// HasPDGField is true when pdgcode is stored per-particle.
	HasPDGField bool
	UserFlags   bool

	// RecordSize is the number of bytes one particle occupies.
	RecordSize int
}

// floatSize returns 4 for single precision, 8 for double.
func (l *Layout) floatSize() int {
	if l.SinglePrec {
		return 4
	}
	return 8
}

// NewLayout derives a Layout from a parsed header.
func NewLayout(h *section.Header) *Layout {
	l := &Layout{
		Version:        h.Version,
		SinglePrec:     h.SinglePrec,
		Polarisation:   h.Polarisation,
		HasWeightField: !h.HasUniversalWeight,
		HasPDGField:    h.UniversalPDG == 0,
		UserFlags:      h.UserFlags,
	}
	l.RecordSize = l.computeRecordSize()
	return l
}

// computeRecordSize returns the byte size of one record given the fields
// this layout carries: [polx,poly,polz]? + x,y,z,uve1,uve2,uve3,t +
// [w]? + [pdg]? + [uf]?, mirroring the original dtype field order.
func (l *Layout) computeRecordSize() int {
	fp := l.floatSize()
	n := 0
	if l.Polarisation {
		n += 3 * fp
	}
	n += 7 * fp // x,y,z,uve1,uve2,uve3,t
	if l.HasWeightField {
		n += fp
	}
	if l.HasPDGField {
		n += 4 // i4
	}
	if l.UserFlags {
		n += 4 // u4
	}
	return n
}

// Encode writes p into buf (which must be at least l.RecordSize bytes)
// using engine as the byte order, omitting fields that this layout treats
// as universal.
func (l *Layout) Encode(p *Particle, buf []byte, engine endian.EndianEngine) {
	fp := l.floatSize()
	off := 0

	putFloat := func(v float64) {
		if l.SinglePrec {
			engine.PutUint32(buf[off:off+4], float32bits(float32(v)))
		} else {
			engine.PutUint64(buf[off:off+8], float64bits(v))
		}
		off += fp
	}

	if l.Polarisation {
		putFloat(p.PolX)
		putFloat(p.PolY)
		putFloat(p.PolZ)
	}

	uve1, uve2, uve3 := unitvec.Pack(p.Ux, p.Uy, p.Uz, p.Ekin)
	putFloat(p.X)
	putFloat(p.Y)
	putFloat(p.Z)
	putFloat(uve1)
	putFloat(uve2)
	putFloat(uve3)
	putFloat(p.Time)

	if l.HasWeightField {
		putFloat(p.Weight)
	}
	if l.HasPDGField {
		engine.PutUint32(buf[off:off+4], uint32(p.PDGCode))
		off += 4
	}
	if l.UserFlags {
		engine.PutUint32(buf[off:off+4], p.UserFlags)
		off += 4
	}
}

// Decode reads one record from buf, filling in fields this layout treats
// as universal from universalWeight/universalPDG.
func (l *Layout) Decode(buf []byte, engine endian.EndianEngine, universalWeight float64, universalPDG int32) (Particle, error) {
	if len(buf) < l.RecordSize {
		return Particle{}, errs.ErrTruncated
	}

	var p Particle
	fp := l.floatSize()
	off := 0

	getFloat := func() float64 {
		var v float64
		if l.SinglePrec {
			v = float64(float32frombits(engine.Uint32(buf[off : off+4])))
		} else {
			v = float64frombits(engine.Uint64(buf[off : off+8]))
		}
		off += fp
		return v
	}

	if l.Polarisation {
		p.PolX = getFloat()
		p.PolY = getFloat()
		p.PolZ = getFloat()
	}

	p.X = getFloat()
	p.Y = getFloat()
	p.Z = getFloat()
	uve1, uve2, uve3 := getFloat(), getFloat(), getFloat()
	p.Time = getFloat()

	if l.Version == format.Version2 {
		p.Ux, p.Uy, p.Uz, p.Ekin = unitvec.UnpackLegacy(uve1, uve2, uve3)
	} else {
		p.Ux, p.Uy, p.Uz, p.Ekin = unitvec.Unpack(uve1, uve2, uve3)
	}

	if l.HasWeightField {
		p.Weight = getFloat()
	} else {
		p.Weight = universalWeight
	}

	if l.HasPDGField {
		p.PDGCode = int32(engine.Uint32(buf[off : off+4]))
		off += 4
	} else {
		p.PDGCode = universalPDG
	}

	if l.UserFlags {
		p.UserFlags = engine.Uint32(buf[off : off+4])
		off += 4
	}

	return p, nil
}
