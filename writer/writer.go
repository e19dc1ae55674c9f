// Package writer implements the MCPL file writer: a frozen-on-first-write
// header followed by a stream of fixed-layout particle records.
package writer

import (
	"io"

	"github.com/mctools/mcpl/endian"
	"github.com/mctools/mcpl/errs"
	"github.com/mctools/mcpl/format"
	"github.com/mctools/mcpl/internal/options"
	"github.com/mctools/mcpl/internal/pool"
	"github.com/mctools/mcpl/particle"
	"github.com/mctools/mcpl/section"
	"github.com/mctools/mcpl/transport"
)

// Writer accumulates configuration until the first particle is written,
// at which point the header is frozen and flushed to the sink. After
// that, configuration can no longer change.
type Writer struct {
	sink   transport.Sink
	config *Config

	header *section.Header
	layout *particle.Layout
	engine endian.EndianEngine

	frozen    bool
	nWritten  uint64
	recordBuf *pool.ByteBuffer
	closed    bool
}

// New creates a Writer over sink, applying opts to a fresh Config. The
// header is not written yet: it is frozen and flushed on the first call
// to AddParticle.
func New(sink transport.Sink, opts ...Option) (*Writer, error) {
	config := NewConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}
	for _, c := range config.Comments {
		if _, _, ok, err := section.ParseStatSumComment(c); ok && err != nil {
			return nil, err
		}
	}
	return &Writer{sink: sink, config: config}, nil
}

// freeze builds the final header from the accumulated config and writes
// it to the sink. It is called automatically by the first AddParticle.
func (w *Writer) freeze() error {
	h := &section.Header{
		Version:            format.Version3,
		Endianness:         w.config.Endianness,
		Polarisation:       w.config.Polarisation,
		SinglePrec:         w.config.SinglePrec,
		UserFlags:          w.config.UserFlags,
		HasUniversalWeight: w.config.HasUniversalWeight,
		UniversalWeight:    w.config.UniversalWeight,
		SourceName:         w.config.SourceName,
		Comments:           w.config.Comments,
	}
	if w.config.HasUniversalPDG {
		h.UniversalPDG = w.config.UniversalPDG
	}
	h.NComments = uint32(len(h.Comments))
	h.NBlobs = uint32(len(w.config.BlobKeys))
	for i, key := range w.config.BlobKeys {
		h.BlobKeys = append(h.BlobKeys, []byte(key))
		h.Blobs = append(h.Blobs, w.config.Blobs[i])
	}

	w.layout = particle.NewLayout(h)
	h.ParticleSize = uint32(w.layout.RecordSize)

	if h.Endianness == format.Big {
		w.engine = endian.GetBigEndianEngine()
	} else {
		w.engine = endian.GetLittleEndianEngine()
	}

	w.header = h
	w.recordBuf = pool.GetRecordBuffer()
	w.recordBuf.SetLength(w.layout.RecordSize)

	if _, err := w.sink.Write(h.Bytes()); err != nil {
		return err
	}
	w.frozen = true
	return nil
}

// AddParticle writes one particle record using the frozen schema. The
// first call finalises and flushes the header.
func (w *Writer) AddParticle(p *particle.Particle) error {
	if w.closed {
		return errs.ErrWriterClosed
	}
	if !w.frozen {
		if err := w.freeze(); err != nil {
			return err
		}
	}
	w.layout.Encode(p, w.recordBuf.Bytes(), w.engine)
	if _, err := w.sink.Write(w.recordBuf.Bytes()); err != nil {
		return err
	}
	w.nWritten++
	return nil
}

// NParticles returns the number of particles written so far.
func (w *Writer) NParticles() uint64 { return w.nWritten }

// Header returns the frozen header, or nil if no particle has been
// written yet.
func (w *Writer) Header() *section.Header { return w.header }

// Close finalises the file. On a seekable sink, nparticles is patched in
// place to the true count. On a non-seekable sink, the file is left with
// the nparticles value frozen at the first write, which is always 0 —
// such a file needs the repair operation before it can be read back
// correctly.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if !w.frozen {
		// No particle was ever written: freeze an empty header so the
		// file is still well-formed.
		if err := w.freeze(); err != nil {
			return err
		}
	}

	if seeker, ok := w.sink.(transport.SeekableSink); ok {
		if _, err := seeker.Seek(section.NParticlesOffset, io.SeekStart); err != nil {
			return err
		}
		buf := make([]byte, 8)
		w.engine.PutUint64(buf, w.nWritten)
		if _, err := seeker.Write(buf); err != nil {
			return err
		}
		if _, err := seeker.Seek(0, io.SeekEnd); err != nil {
			return err
		}
	}

	if w.recordBuf != nil {
		pool.PutRecordBuffer(w.recordBuf)
		w.recordBuf = nil
	}

	return w.sink.Close()
}
