// Package reader implements the forward-only MCPL particle stream reader:
// header parsing, block iteration, and single-particle convenience reads.
package reader

import (
	"fmt"
	"io"

	"github.com/mctools/mcpl/endian"
	"github.com/mctools/mcpl/errs"
	"github.com/mctools/mcpl/internal/pool"
	"github.com/mctools/mcpl/particle"
	"github.com/mctools/mcpl/section"
	"github.com/mctools/mcpl/transport"
)

// State is the reader cursor's position in its lifecycle.
type State int

const (
	StateHeader State = iota
	StateReady
	StateBlockLoaded
	StateEOF
	StateError
)

func (s State) String() string {
	switch s {
	case StateHeader:
		return "HEADER"
	case StateReady:
		return "READY"
	case StateBlockLoaded:
		return "BLOCK_LOADED"
	case StateEOF:
		return "EOF"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// DefaultBlockLength is the number of records read_block reads when the
// caller doesn't request a specific size.
const DefaultBlockLength = 10000

// Block is a columnar view over one run of particles. The reader reuses a
// single Block across ReadBlock calls: callers must not retain a Block's
// slices past the next ReadBlock or Read call.
type Block struct {
	Count int

	PolX, PolY, PolZ []float64
	X, Y, Z          []float64
	Ux, Uy, Uz       []float64
	Ekin             []float64
	Time             []float64
	Weight           []float64
	PDGCode          []int32
	UserFlags        []uint32
}

// Reader reads particles from an MCPL source, one block or particle at a
// time, in the forward-only order they are stored on disk.
type Reader struct {
	src    transport.Source
	engine endian.EndianEngine

	header     *section.Header
	layout     *particle.Layout
	headerSize int

	statSum  section.StatSum
	warnings []string

	state State
	err   error

	blockLen int
	block    Block

	recordBuf *pool.ByteBuffer

	particlesReadTotal uint64 // particles consumed so far across the whole stream
	cursorInBlock      int    // index of next unread record inside block

	path string
}

// Option configures a Reader at Open time.
type Option func(*Reader)

// WithBlockLength overrides DefaultBlockLength.
func WithBlockLength(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.blockLen = n
		}
	}
}

// Open opens path, reads its header, and positions the cursor at the
// first particle record.
func Open(path string, opts ...Option) (*Reader, error) {
	src, err := transport.Open(path)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		src:      src,
		blockLen: DefaultBlockLength,
		state:    StateHeader,
		path:     path,
	}
	for _, opt := range opts {
		opt(r)
	}

	h, n, err := section.ReadHeader(src)
	if err != nil {
		r.fail(err)
		src.Close()
		return nil, err
	}
	r.header = h
	r.headerSize = n
	r.layout = particle.NewLayout(h)

	if h.Endianness.Byte() == 'B' {
		r.engine = endian.GetBigEndianEngine()
	} else {
		r.engine = endian.GetLittleEndianEngine()
	}

	r.statSum, r.warnings = section.CollectStatSum(h.Comments)

	if err := r.recoverUnclosed(); err != nil {
		r.fail(err)
		src.Close()
		return nil, err
	}

	r.state = StateReady
	return r, nil
}

// recoverUnclosed implements the §4.5 "unclosed file" heuristic: when the
// header reports zero particles but bytes remain in the stream, a
// seekable source's file size is used to recompute the real count; a
// non-seekable (gzip) source can only detect the problem, not fix it.
func (r *Reader) recoverUnclosed() error {
	if r.header.NParticles != 0 {
		return nil
	}

	if sized, ok := r.src.(transport.SizedSource); ok {
		size, err := sized.Size()
		if err != nil {
			return err
		}
		remaining := size - int64(r.headerSize)
		if remaining > 0 && r.header.ParticleSize > 0 {
			np := remaining / int64(r.header.ParticleSize)
			if np > 0 {
				r.header.NParticles = uint64(np)
				r.warnings = append(r.warnings, fmt.Sprintf(
					"mcpl: input file appears to not have been closed properly, recovered %d particles", np))
			}
		}
		return nil
	}

	probe := make([]byte, 1)
	n, _ := r.src.Read(probe)
	if n > 0 {
		return errs.ErrUnclosedUnrecoverable
	}
	return nil
}

func (r *Reader) fail(err error) {
	r.state = StateError
	r.err = err
}

// Header returns the file's parsed header. It must not be mutated.
func (r *Reader) Header() *section.Header { return r.header }

// Layout returns the per-particle record layout derived from the header.
func (r *Reader) Layout() *particle.Layout { return r.layout }

// NParticles returns the (possibly recovered) particle count.
func (r *Reader) NParticles() uint64 { return r.header.NParticles }

// HeaderSize returns the number of bytes the header occupied on disk.
func (r *Reader) HeaderSize() int { return r.headerSize }

// Path returns the path the reader was opened from.
func (r *Reader) Path() string { return r.path }

// StatSum returns the accumulated stat:sum values found in the header's
// comments.
func (r *Reader) StatSum() section.StatSum { return r.statSum }

// Warnings returns non-fatal issues observed while opening or reading,
// such as recovered particle counts or malformed stat:sum comments.
func (r *Reader) Warnings() []string { return r.warnings }

// State returns the reader's current cursor state.
func (r *Reader) State() State { return r.state }

// Close releases the underlying transport and returns the scratch record
// buffer to its pool.
func (r *Reader) Close() error {
	if r.recordBuf != nil {
		pool.PutRecordBuffer(r.recordBuf)
		r.recordBuf = nil
	}
	return r.src.Close()
}

// ReadBlock reads up to n records into the reader's reused Block and
// returns it. A returned Block with Count < n (or 0) indicates EOF was
// reached mid-read. Subsequent calls invalidate the slices previously
// returned by ReadBlock: callers must finish using one block before
// requesting the next.
func (r *Reader) ReadBlock(n int) (*Block, error) {
	if r.state == StateError {
		return nil, r.err
	}
	if n <= 0 {
		n = r.blockLen
	}

	remaining := r.header.NParticles - r.particlesReadTotal
	if remaining == 0 {
		r.state = StateEOF
		r.block.Count = 0
		return &r.block, nil
	}
	if uint64(n) > remaining {
		n = int(remaining)
	}

	r.growBlock(n)
	r.block.Count = 0

	recSize := r.layout.RecordSize
	if r.recordBuf == nil {
		r.recordBuf = pool.GetRecordBuffer()
	}
	r.recordBuf.SetLength(recSize)

	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r.src, r.recordBuf.Bytes()); err != nil {
			r.fail(errs.ErrTruncated)
			return nil, errs.ErrTruncated
		}

		p, err := r.layout.Decode(r.recordBuf.Bytes(), r.engine, r.header.UniversalWeight, r.header.UniversalPDG)
		if err != nil {
			r.fail(err)
			return nil, err
		}

		r.setColumn(i, &p)
		r.block.Count++
		r.particlesReadTotal++
	}

	r.cursorInBlock = 0
	r.state = StateBlockLoaded
	return &r.block, nil
}

func (r *Reader) growBlock(n int) {
	grow := func(s []float64) []float64 {
		if cap(s) < n {
			return make([]float64, n)
		}
		return s[:n]
	}
	if r.layout.Polarisation {
		r.block.PolX = grow(r.block.PolX)
		r.block.PolY = grow(r.block.PolY)
		r.block.PolZ = grow(r.block.PolZ)
	}
	r.block.X = grow(r.block.X)
	r.block.Y = grow(r.block.Y)
	r.block.Z = grow(r.block.Z)
	r.block.Ux = grow(r.block.Ux)
	r.block.Uy = grow(r.block.Uy)
	r.block.Uz = grow(r.block.Uz)
	r.block.Ekin = grow(r.block.Ekin)
	r.block.Time = grow(r.block.Time)
	r.block.Weight = grow(r.block.Weight)
	if cap(r.block.PDGCode) < n {
		r.block.PDGCode = make([]int32, n)
	} else {
		r.block.PDGCode = r.block.PDGCode[:n]
	}
	if r.layout.UserFlags {
		if cap(r.block.UserFlags) < n {
			r.block.UserFlags = make([]uint32, n)
		} else {
			r.block.UserFlags = r.block.UserFlags[:n]
		}
	}
}

func (r *Reader) setColumn(i int, p *particle.Particle) {
	if r.layout.Polarisation {
		r.block.PolX[i] = p.PolX
		r.block.PolY[i] = p.PolY
		r.block.PolZ[i] = p.PolZ
	}
	r.block.X[i] = p.X
	r.block.Y[i] = p.Y
	r.block.Z[i] = p.Z
	r.block.Ux[i] = p.Ux
	r.block.Uy[i] = p.Uy
	r.block.Uz[i] = p.Uz
	r.block.Ekin[i] = p.Ekin
	r.block.Time[i] = p.Time
	r.block.Weight[i] = p.Weight
	r.block.PDGCode[i] = p.PDGCode
	if r.layout.UserFlags {
		r.block.UserFlags[i] = p.UserFlags
	}
}

// Read returns the next particle, internally backed by the block
// iterator: it loads a new block once the current one is exhausted.
func (r *Reader) Read() (*particle.Particle, error) {
	if r.state == StateError {
		return nil, r.err
	}

	if r.state != StateBlockLoaded || r.cursorInBlock >= r.block.Count {
		if _, err := r.ReadBlock(r.blockLen); err != nil {
			return nil, err
		}
		if r.block.Count == 0 {
			return nil, io.EOF
		}
	}

	i := r.cursorInBlock
	p := &particle.Particle{
		X: r.block.X[i], Y: r.block.Y[i], Z: r.block.Z[i],
		Ux: r.block.Ux[i], Uy: r.block.Uy[i], Uz: r.block.Uz[i],
		Ekin: r.block.Ekin[i], Time: r.block.Time[i],
		Weight: r.block.Weight[i], PDGCode: r.block.PDGCode[i],
	}
	if r.layout.Polarisation {
		p.PolX, p.PolY, p.PolZ = r.block.PolX[i], r.block.PolY[i], r.block.PolZ[i]
	}
	if r.layout.UserFlags {
		p.UserFlags = r.block.UserFlags[i]
	}
	r.cursorInBlock++
	return p, nil
}

// SkipForward advances the cursor by k particles without decoding them.
// It is forward-only: a negative or otherwise backward-moving request is
// rejected. When the target lands inside the currently loaded block, only
// the in-memory cursor moves; otherwise the reader seeks ahead on the
// underlying transport (seekable transports only) and reloads.
func (r *Reader) SkipForward(k uint64) error {
	if r.state == StateError {
		return r.err
	}

	if r.state == StateBlockLoaded {
		newCursor := uint64(r.cursorInBlock) + k
		if newCursor <= uint64(r.block.Count) {
			r.cursorInBlock = int(newCursor)
			return nil
		}
	}

	target := r.particlesReadTotal - uint64(r.block.Count-r.cursorInBlock) + k
	if r.state != StateBlockLoaded {
		target = r.particlesReadTotal + k
	}

	seeker, ok := r.src.(io.Seeker)
	if !ok {
		return errs.ErrNotSeekable
	}
	offset := int64(r.headerSize) + int64(target)*int64(r.layout.RecordSize)
	if _, err := seeker.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	r.particlesReadTotal = target
	r.state = StateReady
	r.cursorInBlock = 0
	r.block.Count = 0
	return nil
}

// Rewind returns the cursor to the first particle. Requires a seekable
// transport.
func (r *Reader) Rewind() error {
	if r.state == StateError {
		return r.err
	}
	seeker, ok := r.src.(io.Seeker)
	if !ok {
		return errs.ErrNotSeekable
	}
	if _, err := seeker.Seek(int64(r.headerSize), io.SeekStart); err != nil {
		return err
	}
	r.particlesReadTotal = 0
	r.cursorInBlock = 0
	r.block.Count = 0
	r.state = StateReady
	return nil
}
