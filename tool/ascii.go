package tool

import (
	"fmt"
	"io"

	"github.com/mctools/mcpl/reader"
)

// ToASCII writes r's particle contents to w in the fixed ASCII format a
// companion tool can parse back to compare two files numerically.
func ToASCII(w io.Writer, r *reader.Reader) error {
	if err := r.Rewind(); err != nil {
		return err
	}

	fmt.Fprintf(w, "#MCPL-ASCII\n#ASCII-FORMAT: v1\n#NPARTICLES: %d\n#END-HEADER\n", r.NParticles())
	fmt.Fprint(w, "index     pdgcode               ekin[MeV]                   x[cm]          "+
		"         y[cm]                   z[cm]                      ux                  "+
		"    uy                      uz                time[ms]                  weight  "+
		"                 pol-x                   pol-y                   pol-z  userflags\n")

	idx := 0
	for {
		p, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%5d %11d %23.18g %23.18g %23.18g %23.18g %23.18g %23.18g %23.18g %23.18g %23.18g %23.18g %23.18g %23.18g 0x%08x\n",
			idx, p.PDGCode, p.Ekin, p.X, p.Y, p.Z, p.Ux, p.Uy, p.Uz, p.Time, p.Weight, p.PolX, p.PolY, p.PolZ, p.UserFlags)
		idx++
	}
	return nil
}
