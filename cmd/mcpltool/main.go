// Command mcpltool inspects, filters, merges and repairs MCPL files: a Go
// reimplementation of the compiled mcpltool's dump/extract/merge/repair
// surface (the reference Python tool only ever implemented dump).
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mctools/mcpl/reader"
	"github.com/mctools/mcpl/tool"
	"github.com/mctools/mcpl/transport"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	progname := filepath.Base(argv[0])

	o, err := parseArgs(argv[1:])
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %s\n\nRun with -h or --help for usage information\n", err)
		return 1
	}

	if o.help {
		printUsage(stdout, progname)
		return 0
	}

	if o.version {
		fmt.Fprintf(stdout, "MCPL version %s\n", version)
		return 0
	}

	switch {
	case o.text:
		return runText(o, stderr)
	case o.repair:
		return runRepair(o, stdout, stderr)
	case o.extract:
		return runExtract(o, stderr)
	case o.merge:
		return runMerge(o, stderr)
	case o.stats:
		return runStats(o, stdout, stderr)
	case o.blobKey != "":
		return runBlob(o, stdout, stderr)
	default:
		return runDump(o, stdout, stderr)
	}
}

func fail(stderr io.Writer, format string, a ...any) int {
	fmt.Fprintf(stderr, "ERROR: %s\n", fmt.Sprintf(format, a...))
	return 1
}

func runDump(o *options, stdout, stderr io.Writer) int {
	if len(o.files) != 1 {
		return fail(stderr, "Expected exactly one input file")
	}
	if o.justHead && o.noHead {
		return fail(stderr, "Do not supply both --justhead and --nohead")
	}

	r, err := reader.Open(o.files[0])
	if err != nil {
		return fail(stderr, "%s", err)
	}
	defer r.Close()

	limit, skip := 10, 0
	if o.limit != nil {
		limit = *o.limit
	}
	if o.skip != nil {
		skip = *o.skip
	}

	fmt.Fprintf(stdout, "Opened MCPL file %s:\n", filepath.Base(o.files[0]))
	if err := tool.Dump(stdout, r, tool.DumpOptions{
		JustHead: o.justHead,
		NoHead:   o.noHead,
		Limit:    limit,
		Skip:     skip,
	}); err != nil {
		return fail(stderr, "%s", err)
	}
	return 0
}

func runBlob(o *options, stdout, stderr io.Writer) int {
	if len(o.files) != 1 {
		return fail(stderr, "Expected exactly one input file")
	}
	r, err := reader.Open(o.files[0])
	if err != nil {
		return fail(stderr, "%s", err)
	}
	defer r.Close()

	found, err := tool.ExtractBlob(stdout, r.Header(), o.blobKey)
	if err != nil {
		return fail(stderr, "%s", err)
	}
	if !found {
		return 1
	}
	return 0
}

func runText(o *options, stderr io.Writer) int {
	if len(o.files) != 2 {
		return fail(stderr, "Must specify both input and output files with --text")
	}
	if _, err := os.Stat(o.files[1]); err == nil {
		return fail(stderr, "Requested output file already exists")
	}

	r, err := reader.Open(o.files[0])
	if err != nil {
		return fail(stderr, "%s", err)
	}
	defer r.Close()

	out, err := os.Create(o.files[1])
	if err != nil {
		return fail(stderr, "Could not open output file")
	}
	defer out.Close()

	if err := tool.ToASCII(out, r); err != nil {
		return fail(stderr, "%s", err)
	}
	return 0
}

func runRepair(o *options, stdout, stderr io.Writer) int {
	if len(o.files) != 1 {
		return fail(stderr, "Expected exactly one input file")
	}
	n, err := tool.Repair(o.files[0])
	if err != nil {
		return fail(stderr, "%s", err)
	}
	fmt.Fprintf(stdout, "Repaired file, nparticles now %d\n", n)
	return 0
}

func runExtract(o *options, stderr io.Writer) int {
	if o.extractPDG == nil {
		return fail(stderr, "--extract requires -pPDG")
	}
	if len(o.files) != 2 {
		return fail(stderr, "--extract requires SRC and DST arguments")
	}

	r, err := reader.Open(o.files[0])
	if err != nil {
		return fail(stderr, "%s", err)
	}
	defer r.Close()

	sink, err := transport.Create(o.files[1])
	if err != nil {
		return fail(stderr, "%s", err)
	}

	if _, err := tool.Extract(sink, r, *o.extractPDG); err != nil {
		return fail(stderr, "%s", err)
	}
	return 0
}

func runMerge(o *options, stderr io.Writer) int {
	if len(o.files) < 2 {
		return fail(stderr, "--merge requires a destination and at least one source")
	}

	mergeOpts := tool.MergeOptions{ForceMerge: o.forceMerge, KeepUserFlags: o.keepUserFlags}

	if o.inplace {
		dst := o.files[0]
		var extras []*reader.Reader
		for _, f := range o.files[1:] {
			r, err := reader.Open(f)
			if err != nil {
				return fail(stderr, "%s", err)
			}
			defer r.Close()
			extras = append(extras, r)
		}
		if _, _, err := tool.MergeInplace(dst, extras, mergeOpts); err != nil {
			return fail(stderr, "%s", err)
		}
		return 0
	}

	var srcs []*reader.Reader
	for _, f := range o.files[1:] {
		r, err := reader.Open(f)
		if err != nil {
			return fail(stderr, "%s", err)
		}
		defer r.Close()
		srcs = append(srcs, r)
	}

	sink, err := transport.Create(o.files[0])
	if err != nil {
		return fail(stderr, "%s", err)
	}
	if _, _, err := tool.Merge(sink, srcs, mergeOpts); err != nil {
		return fail(stderr, "%s", err)
	}
	return 0
}

func runStats(o *options, stdout, stderr io.Writer) int {
	if len(o.files) != 1 {
		return fail(stderr, "Expected exactly one input file")
	}
	r, err := reader.Open(o.files[0])
	if err != nil {
		return fail(stderr, "%s", err)
	}
	defer r.Close()

	st, err := tool.CollectStats(r)
	if err != nil {
		return fail(stderr, "%s", err)
	}
	tool.DumpStats(stdout, st)
	return 0
}

func printUsage(w io.Writer, progname string) {
	fmt.Fprintf(w, `Tool for inspecting Monte Carlo Particle List (.mcpl) files.

The default behaviour is to display the contents of the FILE in human readable
format (see Dump Options below for how to modify what is displayed).

This installation supports direct reading of gzipped files (.mcpl.gz).

Usage:
  %[1]s [dump-options] FILE
  %[1]s --stats FILE
  %[1]s --extract -pPDG SRC DST
  %[1]s --merge DST SRC1 SRC2 ...
  %[1]s --merge --inplace DST SRC1 ...
  %[1]s --repair FILE
  %[1]s --text SRC DST
  %[1]s --version
  %[1]s --help

Dump options:
  By default include the info in the FILE header plus the first ten contained
  particles. Modify with the following options:
  -j, --justhead  : Dump just header info and no particle info.
  -n, --nohead    : Dump just particle info and no header info.
  -lN             : Dump up to N particles from the file (default 10). You
                    can specify -l0 to disable this limit.
  -sN             : Skip past the first N particles in the file (default 0).
  -bKEY           : Dump binary blob stored under KEY to standard output.

Other options:
  -e, --extract -pPDG SRC DST
                    Copy particles matching pdgcode PDG from SRC to DST.
  -m, --merge DST SRC1 SRC2 ...
                    Merge SRC1, SRC2, ... into a freshly created DST.
  -m --inplace DST SRC1 ...
                    Merge SRC1, ... onto the end of existing file DST.
  --forcemerge    : Permit merges into a fresh DST across incompatible format
                    versions (never allowed with --inplace).
  --keepuserflags : Preserve userflags during merge even if some inputs lack them.
  -r, --repair FILE
                    Recover a truncated uncompressed file's particle count.
  -t, --text MCPLFILE OUTFILE
                    Read particle contents of MCPLFILE and write into OUTFILE
                    using a simple ASCII-based format.
  --stats         : Print statistics summary of particle state data from FILE.
  -v, --version   : Display version of MCPL installation.
  -h, --help      : Display this usage information (ignores all other options).
`, progname)
}
