package tool

import (
	"io"

	"github.com/mctools/mcpl/endian"
	"github.com/mctools/mcpl/errs"
	"github.com/mctools/mcpl/particle"
	"github.com/mctools/mcpl/reader"
	"github.com/mctools/mcpl/section"
	"github.com/mctools/mcpl/transport"
)

// MergeInplace appends the particle streams of extra onto dst, an already
// written seekable file whose layout cannot change: dst's format options
// become the layout every appended particle must fit. It requires a
// strictly compatible dst and patches nparticles in place at the end,
// unlike Merge which always creates a new file with freshly inferred
// options.
func MergeInplace(dstPath string, extra []*reader.Reader, opts MergeOptions) (uint64, []string, error) {
	dstReader, err := reader.Open(dstPath)
	if err != nil {
		return 0, nil, err
	}
	dstHeader := dstReader.Header()

	all := append([]*reader.Reader{dstReader}, extra...)
	if err := checkDistinctFiles(all); err != nil {
		dstReader.Close()
		return 0, nil, err
	}
	allHeaders := make([]*section.Header, len(all))
	for i, r := range all {
		allHeaders[i] = r.Header()
	}
	if !versionsAgree(allHeaders) {
		dstReader.Close()
		return 0, nil, errs.ErrVersionMismatch
	}
	dstReader.Close()

	for _, r := range extra {
		h := r.Header()
		if h.Polarisation != dstHeader.Polarisation || h.SinglePrec != dstHeader.SinglePrec {
			return 0, nil, errs.ErrIncompatibleMerge
		}
		if dstHeader.UserFlags && !h.UserFlags && !opts.KeepUserFlags {
			return 0, nil, errs.ErrMissingUserFlags
		}
	}

	layout := particle.NewLayout(dstHeader)
	engine := endian.GetLittleEndianEngine()
	if dstHeader.Endianness.Byte() == 'B' {
		engine = endian.GetBigEndianEngine()
	}

	sink, err := transport.OpenForAppend(dstPath)
	if err != nil {
		return 0, nil, err
	}

	buf := make([]byte, layout.RecordSize)
	var total uint64
	var warnings []string

	for _, r := range extra {
		if err := r.Rewind(); err != nil {
			sink.Close()
			return total, warnings, err
		}
		for {
			p, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				sink.Close()
				return total, warnings, err
			}
			layout.Encode(p, buf, engine)
			if _, err := sink.Write(buf); err != nil {
				sink.Close()
				return total, warnings, err
			}
			total++
		}
	}
	// stat:sum comments are not folded into dst here: the header's
	// comment list is variable length and already committed to disk,
	// so an in-place merge can only patch the fixed-size nparticles
	// field, not append new comments.

	if err := sink.Close(); err != nil {
		return total, warnings, err
	}

	newCount := dstHeader.NParticles + total
	patch := make([]byte, 8)
	engine.PutUint64(patch, newCount)
	if err := transport.PatchBytes(dstPath, section.NParticlesOffset, patch); err != nil {
		return total, warnings, err
	}

	return total, warnings, nil
}
