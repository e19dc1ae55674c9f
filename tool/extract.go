package tool

import (
	"fmt"
	"io"

	"github.com/mctools/mcpl/reader"
	"github.com/mctools/mcpl/transport"
	"github.com/mctools/mcpl/writer"
)

// Extract copies every particle of src whose pdgcode equals pdg into dst,
// annotating the output with a comment recording the filter. Since every
// written particle shares pdg by construction, the output always carries
// it as a universal pdgcode.
func Extract(dst transport.Sink, src *reader.Reader, pdg int32) (uint64, error) {
	opts := writerOptionsFromHeader(src.Header())
	opts = append(opts,
		writer.WithUniversalPDG(pdg),
		writer.WithComment([]byte(fmt.Sprintf("mcpltool: extracted with pdgcode=%d", pdg))),
	)

	w, err := writer.New(dst, opts...)
	if err != nil {
		return 0, err
	}

	if err := src.Rewind(); err != nil {
		return 0, err
	}

	var n uint64
	for {
		p, err := src.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if p.PDGCode != pdg {
			continue
		}
		if err := w.AddParticle(p); err != nil {
			return n, err
		}
		n++
	}

	if err := w.Close(); err != nil {
		return n, err
	}
	return n, nil
}
