package tool

import (
	"fmt"
	"io"
	"os"

	"github.com/mctools/mcpl/errs"
	"github.com/mctools/mcpl/reader"
	"github.com/mctools/mcpl/section"
	"github.com/mctools/mcpl/transport"
	"github.com/mctools/mcpl/writer"
)

// MergeOptions controls merge-time leniency.
type MergeOptions struct {
	// ForceMerge permits Merge to combine sources with mismatched format
	// versions. MergeInplace rejects mismatched versions regardless.
	ForceMerge bool
	// KeepUserFlags forces userflags into the output (or tolerates an
	// in-place merge with a source lacking them) even though not every
	// source carries them.
	KeepUserFlags bool
}

// checkDistinctFiles rejects a merge where two sources resolve to the same
// underlying file.
func checkDistinctFiles(srcs []*reader.Reader) error {
	seen := make(map[string]bool, len(srcs))
	for _, r := range srcs {
		fi, err := os.Stat(r.Path())
		if err != nil {
			continue
		}
		key := fi.Name()
		if sys := fi.Sys(); sys != nil {
			key = fmt.Sprintf("%v", sys)
		}
		if seen[key] {
			return errs.ErrSameFileTwice
		}
		seen[key] = true
	}
	return nil
}

// Merge concatenates the particle streams of srcs into a fresh dst,
// inferring universal pdgcode/weight and promoting format options per the
// rules each source disagrees or agrees on.
func Merge(dst transport.Sink, srcs []*reader.Reader, opts MergeOptions) (uint64, []string, error) {
	if err := checkDistinctFiles(srcs); err != nil {
		return 0, nil, err
	}

	headers := make([]*section.Header, len(srcs))
	for i, r := range srcs {
		headers[i] = r.Header()
	}

	var warnings []string
	if !versionsAgree(headers) {
		if !opts.ForceMerge {
			return 0, nil, errs.ErrVersionMismatch
		}
		warnings = append(warnings, "mcpl: merging inputs with mismatched format versions")
	}

	promoted := writer.Promote(headers, opts.KeepUserFlags)

	var writerOpts []writer.Option
	if promoted.Polarisation {
		writerOpts = append(writerOpts, writer.WithPolarisation())
	}
	if promoted.SinglePrec {
		writerOpts = append(writerOpts, writer.WithSinglePrec())
	}
	if promoted.UserFlags {
		writerOpts = append(writerOpts, writer.WithUserFlags())
	}
	pdg, pdgUniversal := writer.InferUniversalPDG(headers)
	wgt, wgtUniversal := writer.InferUniversalWeight(headers)
	if !pdgUniversal || !wgtUniversal {
		// Headers disagree (or aren't marked universal at all); fall
		// back to a scan of the actual particle data, since a
		// per-particle column can still happen to hold one value
		// across every source.
		scannedPDG, scannedWeight, err := scanUniformColumns(srcs, !pdgUniversal, !wgtUniversal)
		if err != nil {
			return 0, warnings, err
		}
		if !pdgUniversal {
			pdg, pdgUniversal = scannedPDG.value, scannedPDG.uniform
		}
		if !wgtUniversal {
			wgt, wgtUniversal = scannedWeight.value, scannedWeight.uniform
		}
	}
	if pdgUniversal {
		writerOpts = append(writerOpts, writer.WithUniversalPDG(pdg))
	}
	if wgtUniversal {
		writerOpts = append(writerOpts, writer.WithUniversalWeight(wgt))
	}

	mergedSums := section.StatSum{}
	for _, h := range headers {
		sums, w := section.CollectStatSum(h.Comments)
		warnings = append(warnings, w...)
		mergedSums = mergedSums.Merge(sums)
	}
	for key, value := range mergedSums {
		writerOpts = append(writerOpts, writer.WithComment(section.FormatStatSumComment(key, value)))
	}

	w, err := writer.New(dst, writerOpts...)
	if err != nil {
		return 0, warnings, err
	}

	var total uint64
	for _, src := range srcs {
		if err := src.Rewind(); err != nil {
			return total, warnings, err
		}
		for {
			p, err := src.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return total, warnings, err
			}
			if err := w.AddParticle(p); err != nil {
				return total, warnings, err
			}
			total++
		}
	}

	if err := w.Close(); err != nil {
		return total, warnings, err
	}
	return total, warnings, nil
}

type scannedPDG struct {
	value   int32
	uniform bool
}

type scannedWeight struct {
	value   float64
	uniform bool
}

// scanUniformColumns reads every particle across srcs once (rewinding
// each afterward) to check whether pdgcode and/or weight hold a single
// value across the whole merge, when header-level inference already
// failed to establish that cheaply.
func scanUniformColumns(srcs []*reader.Reader, wantPDG, wantWeight bool) (scannedPDG, scannedWeight, error) {
	var pdgs []int32
	var weights []float64

	for _, r := range srcs {
		if err := r.Rewind(); err != nil {
			return scannedPDG{}, scannedWeight{}, err
		}
		for {
			p, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return scannedPDG{}, scannedWeight{}, err
			}
			if wantPDG {
				pdgs = append(pdgs, p.PDGCode)
			}
			if wantWeight {
				weights = append(weights, p.Weight)
			}
		}
		if err := r.Rewind(); err != nil {
			return scannedPDG{}, scannedWeight{}, err
		}
	}

	var pd scannedPDG
	var wd scannedWeight
	if wantPDG {
		pd.value, pd.uniform = writer.ScanUniquePDG(pdgs)
	}
	if wantWeight {
		wd.value, wd.uniform = writer.ScanUniqueWeight(weights)
	}
	return pd, wd, nil
}

func versionsAgree(headers []*section.Header) bool {
	if len(headers) == 0 {
		return true
	}
	first := headers[0].Version
	for _, h := range headers[1:] {
		if h.Version != first {
			return false
		}
	}
	return true
}
