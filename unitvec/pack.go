// Package unitvec implements MCPL's packing of a unit direction vector plus
// a non-negative kinetic energy into three floats, as specified in §4.3 of
// the MCPL format: the adaptive-projection scheme used by format version 3,
// and the legacy octahedral scheme used for reading version-2 files.
package unitvec

import "math"

// Pack encodes a unit vector (ux,uy,uz) and energy ekin>=0 into three floats
// (a,b,c) using the adaptive-projection scheme. The caller is responsible
// for ensuring (ux,uy,uz) is normalised; Pack does not renormalise.
func Pack(ux, uy, uz, ekin float64) (a, b, c float64) {
	sign := 1.0
	if uz < 0 {
		sign = -1.0
	}
	signedEkin := ekin * sign

	absX, absY, absZ := math.Abs(ux), math.Abs(uy), math.Abs(uz)

	switch {
	case absX >= absY && absX >= absZ:
		return reciprocal(ux), uy, signedEkin
	case absY >= absZ:
		return ux, reciprocal(uy), signedEkin
	default:
		return ux, uy, signedEkin
	}
}

// reciprocal returns 1/x, with a zero guard that can only ever be hit for a
// component that isn't the largest-magnitude one at the call site (so this
// branch never actually triggers for valid unit vectors, it just keeps the
// function total).
func reciprocal(x float64) float64 {
	if x == 0 {
		return 0
	}
	return 1 / x
}

// Unpack decodes three floats (a,b,c) produced by Pack back into a unit
// vector and energy. A component stored as a reciprocal (|a|>1 or |b|>1)
// is inverted back, and uz is rebuilt from the unit-sphere constraint
// ux^2+uy^2+uz^2=1 with the sign carried by c.
func Unpack(a, b, c float64) (ux, uy, uz, ekin float64) {
	ekin = math.Abs(c)
	sign := 1.0
	if math.Signbit(c) {
		sign = -1.0
	}

	switch {
	case math.Abs(a) > 1.0:
		ux = reciprocal(a)
		uy = b
		uz = sign * math.Sqrt(clamp01(1.0-(ux*ux+uy*uy)))
		return ux, uy, uz, ekin
	case math.Abs(b) > 1.0:
		ux = a
		uy = reciprocal(b)
		uz = sign * math.Sqrt(clamp01(1.0-(ux*ux+uy*uy)))
		return ux, uy, uz, ekin
	default:
		ux, uy = a, b
		uz = sign * math.Sqrt(clamp01(1.0-(ux*ux+uy*uy)))
		return ux, uy, uz, ekin
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// UnpackLegacy decodes three floats produced by the version-2 octahedral
// packing scheme. It is read-only: version-3 files never produce data this
// function is meant to consume, and new files are never written in this
// format.
func UnpackLegacy(a, b, c float64) (ux, uy, uz, ekin float64) {
	ekin = math.Abs(c)

	absA, absB := math.Abs(a), math.Abs(b)
	z := (1.0 - absA) - absB

	if z < 0 {
		signA, signB := 1.0, 1.0
		if a < 0 {
			signA = -1.0
		}
		if b < 0 {
			signB = -1.0
		}
		ux = (1.0 - absB) * signA
		uy = (1.0 - absA) * signB
	} else {
		ux, uy = a, b
	}

	n := 1.0 / math.Sqrt(ux*ux+uy*uy+z*z)
	ux *= n
	uy *= n
	z *= n

	// The sign bit of c only disambiguates uz==0 from uz==-0; a set sign
	// bit always means the true uz was (signed) zero.
	if math.Signbit(c) {
		z = 0
	}

	return ux, uy, z, ekin
}
