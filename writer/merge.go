package writer

import "github.com/mctools/mcpl/section"

// InferUniversalPDG reports whether every input in headers agrees on a
// single non-universal-or-not pdgcode: either all inputs already carry
// the same universal pdgcode, or this is left for the caller to decide
// by scanning particles (when some inputs store pdgcode per-particle).
// It answers only the header-level half of §4.6's inference: "do the
// inputs already universally agree, with no particle scan needed".
func InferUniversalPDG(headers []*section.Header) (pdg int32, universal bool) {
	if len(headers) == 0 {
		return 0, false
	}
	first := headers[0]
	if first.UniversalPDG == 0 {
		return 0, false
	}
	for _, h := range headers[1:] {
		if h.UniversalPDG != first.UniversalPDG {
			return 0, false
		}
	}
	return first.UniversalPDG, true
}

// InferUniversalWeight mirrors InferUniversalPDG for the weight column.
func InferUniversalWeight(headers []*section.Header) (weight float64, universal bool) {
	if len(headers) == 0 {
		return 0, false
	}
	first := headers[0]
	if !first.HasUniversalWeight {
		return 0, false
	}
	for _, h := range headers[1:] {
		if !h.HasUniversalWeight || h.UniversalWeight != first.UniversalWeight {
			return 0, false
		}
	}
	return first.UniversalWeight, true
}

// ScanUniquePDG reports whether every value in pdgcodes is identical,
// returning that value when true. It is the particle-scan half of the
// pdgcode universal-mode inference, used when the inputs don't already
// universally agree at the header level (e.g. a per-particle column that
// happens to hold only one distinct value across the whole merge).
func ScanUniquePDG(pdgcodes []int32) (pdg int32, universal bool) {
	if len(pdgcodes) == 0 {
		return 0, false
	}
	first := pdgcodes[0]
	for _, v := range pdgcodes[1:] {
		if v != first {
			return 0, false
		}
	}
	return first, true
}

// ScanUniqueWeight mirrors ScanUniquePDG for weight.
func ScanUniqueWeight(weights []float64) (weight float64, universal bool) {
	if len(weights) == 0 {
		return 0, false
	}
	first := weights[0]
	for _, v := range weights[1:] {
		if v != first {
			return 0, false
		}
	}
	return first, true
}

// PromotedOptions is the set of format options an output file must carry
// to losslessly represent a merge of the given inputs, per §4.6's
// format-option promotion rules.
type PromotedOptions struct {
	Polarisation bool
	SinglePrec   bool
	UserFlags    bool
}

// Promote computes PromotedOptions for headers. keepUserFlags forces
// userflags on in the output even when some inputs lack them (the
// --keepuserflags switch); without it, userflags is only promoted when
// every input already has it.
func Promote(headers []*section.Header, keepUserFlags bool) PromotedOptions {
	if len(headers) == 0 {
		return PromotedOptions{}
	}

	out := PromotedOptions{SinglePrec: true}
	allUserFlags := true
	anyUserFlags := false

	for _, h := range headers {
		if h.Polarisation {
			out.Polarisation = true
		}
		if !h.SinglePrec {
			out.SinglePrec = false
		}
		if h.UserFlags {
			anyUserFlags = true
		} else {
			allUserFlags = false
		}
	}

	out.UserFlags = allUserFlags || (keepUserFlags && anyUserFlags)
	return out
}
