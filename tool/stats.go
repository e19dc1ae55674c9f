package tool

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/mctools/mcpl/reader"
)

// statAccumulator tracks weighted mean/rms/min/max for one column using
// the shifted-sum-of-squares method for numerical stability, the same
// approach the original tool's _StatCollector uses.
type statAccumulator struct {
	sumw, sumwx, rmsState float64
	min, max              float64
	hasData               bool
}

func (s *statAccumulator) add(v, w float64) {
	if w == 0 {
		return
	}
	if !s.hasData {
		s.min, s.max = v, v
		s.hasData = true
	} else {
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	newSumw := s.sumw + w
	newSumwx := s.sumwx + w*v
	if s.sumw == 0 {
		s.rmsState = 0
	} else {
		oldMean := s.sumwx / s.sumw
		mean := newSumwx / newSumw
		s.rmsState += w * (v - oldMean) * (v - mean)
	}
	s.sumw = newSumw
	s.sumwx = newSumwx
}

func (s *statAccumulator) mean() float64 {
	if s.sumw == 0 {
		return 0
	}
	return s.sumwx / s.sumw
}

func (s *statAccumulator) rms() float64 {
	if s.sumw == 0 {
		return 0
	}
	return math.Sqrt(s.rmsState / s.sumw)
}

// Stats holds the per-column statistics collected by CollectStats.
type Stats struct {
	NParticles uint64
	SumWeights float64

	Columns map[string]*statAccumulator

	// PDGFrequency maps pdgcode to its weighted frequency. A file with a
	// universal pdgcode yields a single entry.
	PDGFrequency map[int32]float64
}

var statColumnOrder = []string{"ekin", "x", "y", "z", "time", "weight"}

// CollectStats performs one forward pass over r, accumulating mean/rms/
// min/max for the continuous columns and a weighted frequency table for
// pdgcode.
func CollectStats(r *reader.Reader) (*Stats, error) {
	if r.NParticles() == 0 {
		return nil, fmt.Errorf("mcpl: cannot calculate statistics for an empty file")
	}

	if err := r.Rewind(); err != nil {
		return nil, err
	}

	st := &Stats{
		NParticles:   r.NParticles(),
		Columns:      make(map[string]*statAccumulator, len(statColumnOrder)),
		PDGFrequency: make(map[int32]float64),
	}
	for _, name := range statColumnOrder {
		st.Columns[name] = &statAccumulator{}
	}

	for {
		p, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		w := p.Weight
		st.Columns["ekin"].add(p.Ekin, w)
		st.Columns["x"].add(p.X, w)
		st.Columns["y"].add(p.Y, w)
		st.Columns["z"].add(p.Z, w)
		st.Columns["time"].add(p.Time, w)
		st.Columns["weight"].add(w, 1)
		st.PDGFrequency[p.PDGCode] += w
		st.SumWeights += w
	}

	return st, nil
}

// DumpStats formats st to w in the historical summary layout.
func DumpStats(w io.Writer, st *Stats) {
	fmt.Fprintln(w, "------------------------------------------------------------------------------")
	fmt.Fprintf(w, "nparticles   : %d\n", st.NParticles)
	fmt.Fprintf(w, "sum(weights) : %g\n", st.SumWeights)
	fmt.Fprintln(w, "------------------------------------------------------------------------------")
	fmt.Fprintln(w, "             :            mean             rms             min             max")
	fmt.Fprintln(w, "------------------------------------------------------------------------------")

	units := map[string]string{"ekin": "MeV", "x": "cm", "y": "cm", "z": "cm", "time": "ms"}
	for _, name := range statColumnOrder {
		sc := st.Columns[name]
		label := name
		if u, ok := units[name]; ok {
			label = fmt.Sprintf("%-6s [%s]", name, u)
		}
		fmt.Fprintf(w, "%-12s : %15g %15g %15g %15g\n", label, sc.mean(), sc.rms(), sc.min, sc.max)
	}

	fmt.Fprintln(w, "------------------------------------------------------------------------------")
	fmt.Fprintln(w, "pdgcode frequencies (weighted):")
	pdgs := make([]int32, 0, len(st.PDGFrequency))
	for pdg := range st.PDGFrequency {
		pdgs = append(pdgs, pdg)
	}
	sort.Slice(pdgs, func(i, j int) bool { return st.PDGFrequency[pdgs[i]] > st.PDGFrequency[pdgs[j]] })
	for _, pdg := range pdgs {
		fmt.Fprintf(w, "  %11d : %g\n", pdg, st.PDGFrequency[pdg])
	}
}
