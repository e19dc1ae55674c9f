// Package tool implements the file-level operations a consumer of MCPL
// files wants (dump, extract, merge, repair, blob extraction, ASCII
// round-trip, stat summaries), built entirely on the reader/writer
// library packages. None of it touches os.Stdout or os.Args: every
// entry point writes to a caller-supplied io.Writer.
package tool

import (
	"fmt"
	"io"

	"github.com/mctools/mcpl/reader"
)

// DumpOptions controls what Dump prints.
type DumpOptions struct {
	JustHead bool
	NoHead   bool
	Limit    int
	Skip     int
}

// Dump prints r's header and particle contents to w, in the historical
// mcpltool layout.
func Dump(w io.Writer, r *reader.Reader, opts DumpOptions) error {
	if !opts.NoHead {
		dumpHeader(w, r)
	}
	if !opts.JustHead {
		if err := dumpParticles(w, r, opts.Limit, opts.Skip); err != nil {
			return err
		}
	}
	return nil
}

func dumpHeader(w io.Writer, r *reader.Reader) {
	h := r.Header()

	fmt.Fprintln(w, "\n  Basic info")
	fmt.Fprintf(w, "    Format             : %s\n", h.Version)
	fmt.Fprintf(w, "    No. of particles   : %d\n", h.NParticles)
	fmt.Fprintf(w, "    Header storage     : %d bytes\n", r.HeaderSize())
	fmt.Fprintf(w, "    Data storage       : %d bytes\n", h.NParticles*uint64(h.ParticleSize))

	fmt.Fprintln(w, "\n  Custom meta data")
	fmt.Fprintf(w, "    Source             : %q\n", string(h.SourceName))
	fmt.Fprintf(w, "    Number of comments : %d\n", len(h.Comments))
	for i, c := range h.Comments {
		fmt.Fprintf(w, "          -> comment %d : %q\n", i, string(c))
	}
	fmt.Fprintf(w, "    Number of blobs    : %d\n", len(h.Blobs))
	for i, key := range h.BlobKeys {
		fmt.Fprintf(w, "          -> %d bytes of data with key %q\n", len(h.Blobs[i]), string(key))
	}

	fmt.Fprintln(w, "\n  Particle data format")
	fmt.Fprintf(w, "    User flags         : %s\n", yesno(h.UserFlags))
	fmt.Fprintf(w, "    Polarisation info  : %s\n", yesno(h.Polarisation))
	if h.UniversalPDG != 0 {
		fmt.Fprintf(w, "    Fixed part. type   : yes (pdgcode %d)\n", h.UniversalPDG)
	} else {
		fmt.Fprintln(w, "    Fixed part. type   : no")
	}
	if h.HasUniversalWeight {
		fmt.Fprintf(w, "    Fixed part. weight : yes (weight %g)\n", h.UniversalWeight)
	} else {
		fmt.Fprintln(w, "    Fixed part. weight : no")
	}
	fmt.Fprintf(w, "    FP precision       : %s\n", precisionLabel(h.SinglePrec))
	fmt.Fprintf(w, "    Endianness         : %s\n", h.Endianness)
	fmt.Fprintf(w, "    Storage            : %d bytes/particle\n", h.ParticleSize)
	fmt.Fprintln(w)
}

func dumpParticles(w io.Writer, r *reader.Reader, limit, skip int) error {
	if err := r.Rewind(); err != nil {
		return err
	}
	if skip > 0 {
		if err := r.SkipForward(uint64(skip)); err != nil {
			return err
		}
	}

	l := r.Layout()
	header := "index     pdgcode   ekin[MeV]       x[cm]       y[cm]       z[cm]          ux          uy          uz    time[ms]"
	if l.HasWeightField {
		header += "      weight"
	}
	if l.Polarisation {
		header += "       pol-x       pol-y       pol-z"
	}
	if l.UserFlags {
		header += "  userflags"
	}
	fmt.Fprintln(w, header)

	n := limit
	if n == 0 {
		n = int(r.NParticles())
	}

	for i := 0; i < n; i++ {
		p, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%5d %11d %11.5g %11.5g %11.5g %11.5g %11.5g %11.5g %11.5g %11.5g",
			skip+i, p.PDGCode, p.Ekin, p.X, p.Y, p.Z, p.Ux, p.Uy, p.Uz, p.Time)
		if l.HasWeightField {
			line += fmt.Sprintf(" %11.5g", p.Weight)
		}
		if l.Polarisation {
			line += fmt.Sprintf(" %11.5g %11.5g %11.5g", p.PolX, p.PolY, p.PolZ)
		}
		if l.UserFlags {
			line += fmt.Sprintf(" 0x%08x", p.UserFlags)
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func yesno(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func precisionLabel(single bool) string {
	if single {
		return "single"
	}
	return "double"
}
