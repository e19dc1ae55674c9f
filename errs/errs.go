// Package errs collects the sentinel errors shared by every mcpl package.
//
// Callers compare with errors.Is; wrapped context (offsets, filenames,
// expected-vs-actual) is attached with fmt.Errorf("...: %w", ...) rather
// than being folded into the sentinel values themselves, so the sentinel
// identity survives wrapping.
package errs

import "errors"

// Header / format errors (§7.1 invalid header).
var (
	ErrBadMagic         = errors.New("mcpl: bad magic bytes, not an MCPL file")
	ErrUnsupportedVersion = errors.New("mcpl: unsupported format version")
	ErrBadEndianness    = errors.New("mcpl: invalid endianness marker")
	ErrLengthOverflow   = errors.New("mcpl: length-prefixed field overflows available data")
	ErrInvalidHeader    = errors.New("mcpl: invalid header")
	ErrDuplicateBlobKey = errors.New("mcpl: duplicate blob key")
	ErrCommentHasNUL    = errors.New("mcpl: comment contains NUL byte")

	// ErrExcessBytes flags a zero-particle file with trailing bytes whose
	// size does not resolve into a recoverable particle count (§4.9).
	ErrExcessBytes = errors.New("mcpl: trailing bytes after header could not be resolved to whole particle records")
)

// Truncation / recovery errors (§7.2, §7.3, §7.4).
var (
	ErrTruncated              = errors.New("mcpl: truncated data, short read mid-record")
	ErrUnclosedRecoverable    = errors.New("mcpl: file was not closed properly, particle count recovered from file size")
	ErrUnclosedUnrecoverable  = errors.New("mcpl: unclosed file, recovery disabled for gzip")
)

// I/O errors (§7.5).
var ErrIO = errors.New("mcpl: underlying transport I/O failure")

// Merge errors (§7.6).
var (
	ErrSameFileTwice       = errors.New("mcpl: same file supplied twice to merge")
	ErrIncompatibleMerge   = errors.New("mcpl: incompatible format options for in-place merge")
	ErrVersionMismatch     = errors.New("mcpl: mismatched format versions")
	ErrMissingUserFlags    = errors.New("mcpl: input lacks userflags, pass --keepuserflags to force")
	ErrNotSeekable         = errors.New("mcpl: transport does not support the requested seek operation")
)

// Configuration / stat:sum errors (§7.7).
var (
	ErrInvalidConfig   = errors.New("mcpl: invalid writer configuration")
	ErrBadStatSumKey   = errors.New("mcpl: malformed stat:sum key")
	ErrBadStatSumValue = errors.New("mcpl: malformed stat:sum value")
	ErrDuplicateStatSumKey = errors.New("mcpl: duplicate stat:sum key in single file")
)

// Repair errors.
var ErrNotBroken = errors.New("mcpl: file is not broken, nothing to repair")

// Reader cursor errors (§4.9, §8).
var (
	ErrBackwardSkip = errors.New("mcpl: skip_forward requested a backward move")
	ErrReaderClosed = errors.New("mcpl: reader is in a terminal error state")
)

// Writer lifecycle errors (§4.6).
var ErrWriterClosed = errors.New("mcpl: writer is already closed")
