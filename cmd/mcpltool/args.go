package main

import (
	"fmt"
	"strconv"
)

// usageError carries a message destined for the usage hint, not a raw Go
// error chain: mirrors the original tool's "bad(errmsg)" helper.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func bad(format string, a ...any) error {
	return &usageError{msg: fmt.Sprintf(format, a...)}
}

// options is the fully parsed command line. Fields left at their zero
// value mean "not specified"; pointer fields distinguish "not specified"
// from "specified as zero".
type options struct {
	justHead, noHead bool
	limit, skip      *int
	blobKey          string

	version bool
	text    bool

	stats bool

	extract    bool
	extractPDG *int32

	merge, inplace, forceMerge, keepUserFlags bool
	repair                                    bool

	help bool

	files []string
}

// parseArgs implements the fused single-dash flag grammar of the original
// tool (-l10, not -l 10) plus the long-form verbs this port adds for
// extract/merge/repair, which the original read-only tool never had.
func parseArgs(args []string) (*options, error) {
	o := &options{}

	for _, a := range args {
		switch {
		case a == "--help":
			o.help = true
			return o, nil
		case a == "--justhead":
			o.justHead = true
		case a == "--nohead":
			o.noHead = true
		case a == "--version":
			o.version = true
		case a == "--stats":
			o.stats = true
		case a == "--text":
			o.text = true
		case a == "--extract":
			o.extract = true
		case a == "--merge":
			o.merge = true
		case a == "--inplace":
			o.inplace = true
		case a == "--forcemerge":
			o.forceMerge = true
		case a == "--keepuserflags":
			o.keepUserFlags = true
		case a == "--repair":
			o.repair = true
		case len(a) > 2 && a[:2] == "--":
			return nil, bad("Unrecognised option : %s", a)
		case len(a) > 1 && a[0] == '-':
			if err := parseFusedFlags(a[1:], o); err != nil {
				return nil, err
			}
			if o.help {
				return o, nil
			}
		default:
			o.files = append(o.files, a)
		}
	}
	return o, nil
}

// parseFusedFlags walks a single-dash token's characters, consuming the
// rest of the token as an argument for -l/-s/-b/-p.
func parseFusedFlags(rest string, o *options) error {
	for rest != "" {
		f := rest[0]
		rest = rest[1:]
		switch f {
		case 'j':
			o.justHead = true
		case 'n':
			o.noHead = true
		case 'v':
			o.version = true
		case 't':
			o.text = true
		case 'e':
			o.extract = true
		case 'm':
			o.merge = true
		case 'r':
			o.repair = true
		case 'h':
			o.help = true
			return nil
		case 'l', 's':
			if rest == "" {
				return bad("Bad option: missing number")
			}
			n, err := strconv.Atoi(rest)
			if err != nil {
				return bad("Bad option: expected number")
			}
			if f == 'l' {
				if o.limit != nil {
					return bad("-l specified more than once")
				}
				o.limit = &n
			} else {
				if o.skip != nil {
					return bad("-s specified more than once")
				}
				o.skip = &n
			}
			rest = ""
		case 'b':
			if o.blobKey != "" {
				return bad("-b specified more than once")
			}
			if rest == "" {
				return bad("Missing argument for -b")
			}
			o.blobKey = rest
			rest = ""
		case 'p':
			if rest == "" {
				return bad("Missing argument for -p")
			}
			n, err := strconv.Atoi(rest)
			if err != nil {
				return bad("Bad pdgcode argument: %s", rest)
			}
			v := int32(n)
			o.extractPDG = &v
			rest = ""
		default:
			return bad("Unrecognised option : -%c", f)
		}
	}
	return nil
}
