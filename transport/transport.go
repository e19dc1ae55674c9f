// Package transport wraps the byte-level I/O MCPL files are read from and
// written to: plain files, gzip-compressed files (transparently, including
// the historical gzopen quirk of also accepting a plain file misnamed with
// a .gz extension), and standard output for blob extraction.
package transport

import (
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// mcplMagic is checked against the first bytes of a ".gz"-named file to
// detect the case where it is actually an uncompressed MCPL file.
var mcplMagic = []byte("MCPL")

// Source is anything a Reader can pull header and particle bytes from.
type Source interface {
	io.ReadCloser
}

// SizedSource is a Source that can also report its total byte size, used
// by the reader to recover a truncated file's particle count.
type SizedSource interface {
	Source
	Size() (int64, error)
}

// Sink is anything a Writer can push header and particle bytes to.
type Sink interface {
	io.WriteCloser
}

// SeekableSink is a Sink that additionally supports seeking, which the
// writer needs in order to patch nparticles into the header at Close.
type SeekableSink interface {
	Sink
	io.Seeker
}

// fileSource reads an uncompressed file.
type fileSource struct {
	f *os.File
}

func (s *fileSource) Read(p []byte) (int, error) { return s.f.Read(p) }
func (s *fileSource) Close() error               { return s.f.Close() }

func (s *fileSource) Size() (int64, error) {
	fi, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// gzipSource reads a gzip-compressed file. It does not implement
// SizedSource: a compressed stream's size bears no fixed relationship to
// the decompressed byte count, so the reader's "unclosed file" recovery
// heuristic cannot be applied here.
type gzipSource struct {
	f  *os.File
	gz *gzip.Reader
}

func (s *gzipSource) Read(p []byte) (int, error) { return s.gz.Read(p) }

func (s *gzipSource) Close() error {
	gzErr := s.gz.Close()
	fErr := s.f.Close()
	if gzErr != nil {
		return gzErr
	}
	return fErr
}

// Open opens path for reading, transparently handling gzip compression.
// A ".gz" suffix is treated as a hint, not a guarantee: if the first bytes
// of the file are the plain MCPL magic, it is opened as an uncompressed
// file regardless of name, mirroring the historical gzopen behaviour of
// the reference implementation.
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	wantsGzip := hasGzipSuffix(path)
	if wantsGzip {
		head := make([]byte, 4)
		n, _ := io.ReadFull(f, head)
		if n == 4 && bytes.Equal(head, mcplMagic) {
			wantsGzip = false
		}
		if _, seekErr := f.Seek(0, io.SeekStart); seekErr != nil {
			f.Close()
			return nil, seekErr
		}
	}

	if !wantsGzip {
		return &fileSource{f: f}, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipSource{f: f, gz: gz}, nil
}

func hasGzipSuffix(path string) bool {
	return len(path) > 3 && path[len(path)-3:] == ".gz"
}

// fileSink writes an uncompressed, seekable file.
type fileSink struct {
	f *os.File
}

// Create opens path for writing as a fresh, seekable, uncompressed file.
func Create(path string) (SeekableSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &fileSink{f: f}, nil
}

func (s *fileSink) Write(p []byte) (int, error)            { return s.f.Write(p) }
func (s *fileSink) Close() error                            { return s.f.Close() }
func (s *fileSink) Seek(off int64, whence int) (int64, error) { return s.f.Seek(off, whence) }

// OpenForAppend reopens path for writing at its current end-of-file,
// seekable so the writer can later patch bytes earlier in the file (used
// by in-place merge to append particles after an existing file's data).
func OpenForAppend(path string) (SeekableSink, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return nil, err
	}
	return &fileSink{f: f}, nil
}

// PatchBytes overwrites path at byte offset off with data, leaving the
// rest of the file untouched. It is used to rewrite header scalar fields
// (such as nparticles) in place without rewriting the whole file.
func PatchBytes(path string, off int64, data []byte) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteAt(data, off)
	return err
}

// gzipSink writes a gzip-compressed, non-seekable file. Because nparticles
// cannot be patched after the fact on a compressed stream, a Writer
// backed by this sink leaves nparticles at 0 in the header, and repair
// cannot fix such a file (repair requires an uncompressed transport).
type gzipSink struct {
	f  *os.File
	gz *gzip.Writer
}

// CreateGzip opens path for writing a gzip-compressed file.
func CreateGzip(path string) (Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &gzipSink{f: f, gz: gzip.NewWriter(f)}, nil
}

func (s *gzipSink) Write(p []byte) (int, error) { return s.gz.Write(p) }

func (s *gzipSink) Close() error {
	gzErr := s.gz.Close()
	fErr := s.f.Close()
	if gzErr != nil {
		return gzErr
	}
	return fErr
}

// StdoutSink wraps os.Stdout as a Sink, used for blob extraction
// (mcpltool -bKEY writes the raw blob bytes to standard output).
type StdoutSink struct{}

func (StdoutSink) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (StdoutSink) Close() error                { return nil }
