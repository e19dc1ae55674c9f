// Package section implements the MCPL file header: the fixed-layout prefix
// plus its variable-length trailer of sourcename, comments and blobs.
package section

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/mctools/mcpl/endian"
	"github.com/mctools/mcpl/errs"
	"github.com/mctools/mcpl/format"
)

// Fixed byte offsets of the header's scalar fields, per the MCPL-3 wire
// layout. Everything from SourceNameOffset onward is variable length.
const (
	MagicOffset       = 0
	VersionOffset     = 4
	EndiannessOffset  = 7
	NParticlesOffset  = 8
	NCommentsOffset   = 16
	NBlobsOffset      = 20
	UserFlagsOffset   = 24
	PolarisationOffset = 28
	SinglePrecOffset  = 32
	UniversalPDGOffset = 36
	ParticleSizeOffset = 40
	HasUniversalWeightOffset = 44
	SourceNameOffset  = 48 // plus 8 more if a universal weight is present

	// FixedPrefixSize is the size of the fixed portion before the
	// universal-weight float (which is itself conditional).
	FixedPrefixSize = 48

	Magic = "MCPL"
)

// Header holds every field carried in an MCPL file's header block.
type Header struct {
	Version    format.Version
	Endianness format.Endianness

	NParticles uint64
	NComments  uint32
	NBlobs     uint32

	UserFlags     bool
	Polarisation  bool
	SinglePrec    bool
	UniversalPDG  int32 // 0 means "no universal pdgcode"

	ParticleSize uint32

	HasUniversalWeight bool
	UniversalWeight    float64

	SourceName []byte
	Comments   [][]byte
	BlobKeys   [][]byte
	Blobs      [][]byte
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// headerSize returns the number of bytes Bytes would produce for h, without
// allocating.
func (h *Header) headerSize() int {
	n := FixedPrefixSize
	if h.HasUniversalWeight {
		n += 8
	}
	n += 4 + len(h.SourceName)
	for _, c := range h.Comments {
		n += 4 + len(c)
	}
	for i := range h.BlobKeys {
		n += 4 + len(h.BlobKeys[i])
		n += 4 + len(h.Blobs[i])
	}
	return n
}

// Bytes serialises h into the MCPL header wire format.
func (h *Header) Bytes() []byte {
	b := make([]byte, h.headerSize())
	engine := h.engine()

	copy(b[MagicOffset:MagicOffset+4], Magic)
	copy(b[VersionOffset:VersionOffset+3], fmt.Sprintf("%03d", uint8(h.Version)))
	b[EndiannessOffset] = h.Endianness.Byte()
	engine.PutUint64(b[NParticlesOffset:NParticlesOffset+8], h.NParticles)
	engine.PutUint32(b[NCommentsOffset:NCommentsOffset+4], h.NComments)
	engine.PutUint32(b[NBlobsOffset:NBlobsOffset+4], h.NBlobs)
	engine.PutUint32(b[UserFlagsOffset:UserFlagsOffset+4], boolU32(h.UserFlags))
	engine.PutUint32(b[PolarisationOffset:PolarisationOffset+4], boolU32(h.Polarisation))
	engine.PutUint32(b[SinglePrecOffset:SinglePrecOffset+4], boolU32(h.SinglePrec))
	engine.PutUint32(b[UniversalPDGOffset:UniversalPDGOffset+4], uint32(h.UniversalPDG))
	engine.PutUint32(b[ParticleSizeOffset:ParticleSizeOffset+4], h.ParticleSize)
	engine.PutUint32(b[HasUniversalWeightOffset:HasUniversalWeightOffset+4], boolU32(h.HasUniversalWeight))

	off := FixedPrefixSize
	if h.HasUniversalWeight {
		engine.PutUint64(b[off:off+8], math.Float64bits(h.UniversalWeight))
		off += 8
	}

	off = putLP(b, off, engine, h.SourceName)
	for _, c := range h.Comments {
		off = putLP(b, off, engine, c)
	}
	for i := range h.BlobKeys {
		off = putLP(b, off, engine, h.BlobKeys[i])
		off = putLP(b, off, engine, h.Blobs[i])
	}

	return b
}

func putLP(b []byte, off int, engine endian.EndianEngine, data []byte) int {
	engine.PutUint32(b[off:off+4], uint32(len(data)))
	off += 4
	copy(b[off:], data)
	return off + len(data)
}

func (h *Header) engine() endian.EndianEngine {
	if h.Endianness == format.Big {
		return endian.GetBigEndianEngine()
	}
	return endian.GetLittleEndianEngine()
}

// Parse decodes a Header from a fully buffered byte slice, returning the
// number of bytes consumed. It does not require data to be exactly the
// header size; trailing bytes belong to the particle data area.
func Parse(data []byte) (*Header, int, error) {
	if len(data) < FixedPrefixSize {
		return nil, 0, errs.ErrInvalidHeader
	}
	if !bytes.Equal(data[MagicOffset:MagicOffset+4], []byte(Magic)) {
		return nil, 0, errs.ErrBadMagic
	}

	h := &Header{}

	var verDigits [3]byte
	copy(verDigits[:], data[VersionOffset:VersionOffset+3])
	ver, ok := parseVersionDigits(verDigits)
	if !ok {
		return nil, 0, errs.ErrUnsupportedVersion
	}
	h.Version = ver
	if !h.Version.IsSupported() {
		return nil, 0, errs.ErrUnsupportedVersion
	}

	endi, ok := format.ParseEndianness(data[EndiannessOffset])
	if !ok {
		return nil, 0, errs.ErrBadEndianness
	}
	h.Endianness = endi
	engine := h.engine()

	h.NParticles = engine.Uint64(data[NParticlesOffset : NParticlesOffset+8])
	h.NComments = engine.Uint32(data[NCommentsOffset : NCommentsOffset+4])
	h.NBlobs = engine.Uint32(data[NBlobsOffset : NBlobsOffset+4])
	h.UserFlags = engine.Uint32(data[UserFlagsOffset:UserFlagsOffset+4]) != 0
	h.Polarisation = engine.Uint32(data[PolarisationOffset:PolarisationOffset+4]) != 0
	h.SinglePrec = engine.Uint32(data[SinglePrecOffset:SinglePrecOffset+4]) != 0
	h.UniversalPDG = int32(engine.Uint32(data[UniversalPDGOffset : UniversalPDGOffset+4]))
	h.ParticleSize = engine.Uint32(data[ParticleSizeOffset : ParticleSizeOffset+4])
	h.HasUniversalWeight = engine.Uint32(data[HasUniversalWeightOffset:HasUniversalWeightOffset+4]) != 0

	off := FixedPrefixSize
	if h.HasUniversalWeight {
		if len(data) < off+8 {
			return nil, 0, errs.ErrInvalidHeader
		}
		bits := engine.Uint64(data[off : off+8])
		h.UniversalWeight = math.Float64frombits(bits)
		off += 8
	}

	var err error
	h.SourceName, off, err = getLP(data, off, engine)
	if err != nil {
		return nil, 0, err
	}

	h.Comments = make([][]byte, 0, h.NComments)
	for i := uint32(0); i < h.NComments; i++ {
		var c []byte
		c, off, err = getLP(data, off, engine)
		if err != nil {
			return nil, 0, err
		}
		h.Comments = append(h.Comments, c)
	}

	h.BlobKeys = make([][]byte, 0, h.NBlobs)
	h.Blobs = make([][]byte, 0, h.NBlobs)
	seenKeys := make(map[string]bool, h.NBlobs)
	for i := uint32(0); i < h.NBlobs; i++ {
		var key, blob []byte
		key, off, err = getLP(data, off, engine)
		if err != nil {
			return nil, 0, err
		}
		if seenKeys[string(key)] {
			return nil, 0, errs.ErrDuplicateBlobKey
		}
		seenKeys[string(key)] = true

		blob, off, err = getLP(data, off, engine)
		if err != nil {
			return nil, 0, err
		}
		h.BlobKeys = append(h.BlobKeys, key)
		h.Blobs = append(h.Blobs, blob)
	}

	if err := h.Validate(); err != nil {
		return nil, 0, err
	}

	return h, off, nil
}

func getLP(data []byte, off int, engine endian.EndianEngine) ([]byte, int, error) {
	if len(data) < off+4 {
		return nil, 0, errs.ErrLengthOverflow
	}
	n := engine.Uint32(data[off : off+4])
	off += 4
	end := off + int(n)
	if end < off || end > len(data) {
		return nil, 0, errs.ErrLengthOverflow
	}
	return data[off:end], end, nil
}

func parseVersionDigits(d [3]byte) (format.Version, bool) {
	n := 0
	for _, c := range d {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return format.Version(n), true
}

// Validate reports structural problems that Parse's field-by-field decode
// does not catch on its own: an unsupported version, a comment containing
// a NUL byte, or comment/blob counts that disagree with NComments/NBlobs.
func (h *Header) Validate() error {
	if !h.Version.IsSupported() {
		return errs.ErrUnsupportedVersion
	}
	for _, c := range h.Comments {
		if bytes.IndexByte(c, 0) >= 0 {
			return errs.ErrCommentHasNUL
		}
	}
	if uint32(len(h.BlobKeys)) != h.NBlobs || uint32(len(h.Blobs)) != h.NBlobs {
		return errs.ErrInvalidHeader
	}
	if uint32(len(h.Comments)) != h.NComments {
		return errs.ErrInvalidHeader
	}
	return nil
}

// ReadHeader decodes a Header by reading sequentially from r, the way a
// non-seekable stream (e.g. a gzip reader) must be handled: the total
// header length isn't known up front, so each length-prefixed field is
// read as soon as its own length prefix arrives. It returns the number of
// bytes consumed, which callers need to know where particle data starts.
func ReadHeader(r io.Reader) (*Header, int, error) {
	total := 0

	fixed := make([]byte, FixedPrefixSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, 0, errs.ErrInvalidHeader
	}
	total += len(fixed)

	if !bytes.Equal(fixed[MagicOffset:MagicOffset+4], []byte(Magic)) {
		return nil, 0, errs.ErrBadMagic
	}

	h := &Header{}

	var verDigits [3]byte
	copy(verDigits[:], fixed[VersionOffset:VersionOffset+3])
	ver, ok := parseVersionDigits(verDigits)
	if !ok || !ver.IsSupported() {
		return nil, 0, errs.ErrUnsupportedVersion
	}
	h.Version = ver

	endi, ok := format.ParseEndianness(fixed[EndiannessOffset])
	if !ok {
		return nil, 0, errs.ErrBadEndianness
	}
	h.Endianness = endi
	engine := h.engine()

	h.NParticles = engine.Uint64(fixed[NParticlesOffset : NParticlesOffset+8])
	h.NComments = engine.Uint32(fixed[NCommentsOffset : NCommentsOffset+4])
	h.NBlobs = engine.Uint32(fixed[NBlobsOffset : NBlobsOffset+4])
	h.UserFlags = engine.Uint32(fixed[UserFlagsOffset:UserFlagsOffset+4]) != 0
	h.Polarisation = engine.Uint32(fixed[PolarisationOffset:PolarisationOffset+4]) != 0
	h.SinglePrec = engine.Uint32(fixed[SinglePrecOffset:SinglePrecOffset+4]) != 0
	h.UniversalPDG = int32(engine.Uint32(fixed[UniversalPDGOffset : UniversalPDGOffset+4]))
	h.ParticleSize = engine.Uint32(fixed[ParticleSizeOffset : ParticleSizeOffset+4])
	h.HasUniversalWeight = engine.Uint32(fixed[HasUniversalWeightOffset:HasUniversalWeightOffset+4]) != 0

	if h.HasUniversalWeight {
		buf := make([]byte, 8)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, 0, errs.ErrInvalidHeader
		}
		total += 8
		h.UniversalWeight = math.Float64frombits(engine.Uint64(buf))
	}

	var err error
	h.SourceName, err = readLP(r, engine, &total)
	if err != nil {
		return nil, 0, err
	}

	h.Comments = make([][]byte, 0, h.NComments)
	for i := uint32(0); i < h.NComments; i++ {
		var c []byte
		c, err = readLP(r, engine, &total)
		if err != nil {
			return nil, 0, err
		}
		h.Comments = append(h.Comments, c)
	}

	h.BlobKeys = make([][]byte, 0, h.NBlobs)
	h.Blobs = make([][]byte, 0, h.NBlobs)
	seenKeys := make(map[string]bool, h.NBlobs)
	for i := uint32(0); i < h.NBlobs; i++ {
		var key, blob []byte
		key, err = readLP(r, engine, &total)
		if err != nil {
			return nil, 0, err
		}
		if seenKeys[string(key)] {
			return nil, 0, errs.ErrDuplicateBlobKey
		}
		seenKeys[string(key)] = true

		blob, err = readLP(r, engine, &total)
		if err != nil {
			return nil, 0, err
		}
		h.BlobKeys = append(h.BlobKeys, key)
		h.Blobs = append(h.Blobs, blob)
	}

	if err := h.Validate(); err != nil {
		return nil, 0, err
	}

	return h, total, nil
}

// readLP reads one u32-length-prefixed byte field from r, advancing *total
// by the number of bytes consumed including the prefix itself.
func readLP(r io.Reader, engine endian.EndianEngine, total *int) ([]byte, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return nil, errs.ErrInvalidHeader
	}
	*total += 4

	n := engine.Uint32(lenBuf)
	if n > 1<<28 {
		return nil, errs.ErrLengthOverflow
	}

	data := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, errs.ErrLengthOverflow
		}
	}
	*total += int(n)

	return data, nil
}
