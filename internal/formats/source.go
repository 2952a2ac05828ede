package formats

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	verrors "github.com/FocuswithJustin/versetag/core/errors"
)

// Source is an open verse source file with transparent decompression for
// .xz and .gz suffixes, as Bible XML is commonly distributed compressed.
type Source struct {
	Path string

	file         *os.File
	buf          *bufio.Reader
	decompressor io.Closer
}

// Open opens a source file for a single extraction pass. A missing or
// unreadable file is fatal to the pipeline, before any processing begins.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, verrors.NewIO("open", path, err)
	}

	var reader io.Reader = f
	var decompressor io.Closer

	switch {
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, verrors.NewIO("decompress", path, err)
		}
		reader = xzr
		decompressor = nil // xz reader doesn't need closing
	case strings.HasSuffix(path, ".gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, verrors.NewIO("decompress", path, err)
		}
		reader = gzr
		decompressor = gzr
	}

	return &Source{
		Path:         path,
		file:         f,
		buf:          bufio.NewReaderSize(reader, detectWindow),
		decompressor: decompressor,
	}, nil
}

// Read implements io.Reader over the decompressed content.
func (s *Source) Read(p []byte) (int, error) {
	return s.buf.Read(p)
}

// DetectDialect sniffs the dialect from the head of the content without
// consuming it.
func (s *Source) DetectDialect() (string, error) {
	head, err := s.buf.Peek(detectWindow)
	if err != nil && err != io.EOF {
		return "", verrors.NewIO("read", s.Path, err)
	}
	return Detect(head)
}

// Close closes the source and any underlying decompressor.
func (s *Source) Close() error {
	var errs []error
	if s.decompressor != nil {
		if err := s.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
