package tool

import (
	"github.com/mctools/mcpl/section"
	"github.com/mctools/mcpl/writer"
)

// writerOptionsFromHeader builds the writer.Option set that reproduces h's
// format choices, used by Extract to carry a source's layout into a
// freshly created output file.
func writerOptionsFromHeader(h *section.Header) []writer.Option {
	var opts []writer.Option
	if h.Polarisation {
		opts = append(opts, writer.WithPolarisation())
	}
	if h.SinglePrec {
		opts = append(opts, writer.WithSinglePrec())
	}
	if h.UserFlags {
		opts = append(opts, writer.WithUserFlags())
	}
	if h.HasUniversalWeight {
		opts = append(opts, writer.WithUniversalWeight(h.UniversalWeight))
	}
	if len(h.SourceName) > 0 {
		opts = append(opts, writer.WithSourceName(h.SourceName))
	}
	return opts
}
