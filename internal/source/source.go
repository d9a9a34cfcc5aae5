// Package source provides inputs that can be opened more than once, as the
// compressor's two passes need. Files probed as packed with gzip, xz or zstd
// are unpacked on every open.
package source

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atiedebee/huff/huffman"
	"github.com/klauspost/compress/zstd"
	"github.com/therootcompany/xz"
)

type Format int

const (
	Plain Format = iota
	Gzip
	XZ
	Zstd
)

func (f Format) String() string {
	switch f {
	case Plain:
		return "plain"
	case Gzip:
		return "gzip"
	case XZ:
		return "xz"
	case Zstd:
		return "zstd"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

var magics = []struct {
	magic  string
	format Format
}{
	{"\x1f\x8b", Gzip},
	{"\xfd7zXZ\x00", XZ},
	{"\x28\xb5\x2f\xfd", Zstd},
}

const sniffLen = 6

// Sniff reports the packing format whose magic starts header.
func Sniff(header []byte) Format {
	for _, m := range magics {
		if bytes.HasPrefix(header, []byte(m.magic)) {
			return m.format
		}
	}
	return Plain
}

// File is a named file on disk.
type File struct {
	Path   string
	Format Format
}

// Probe reads the start of the file at path to learn its format.
func Probe(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return &File{Path: path, Format: Sniff(header[:n])}, nil
}

func (f *File) Open() (io.ReadCloser, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	r, err := unwrap(fh, f.Format)
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return r, nil
}

// Buffer reads all of r into memory so that a one-shot stream such as stdin
// can be read twice. With unpack set, packed data is unpacked first.
func Buffer(r io.Reader, unpack bool) (huffman.BytesSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !unpack {
		return huffman.BytesSource(data), nil
	}

	format := Sniff(data)
	if format == Plain {
		return huffman.BytesSource(data), nil
	}
	rc, err := unwrap(io.NopCloser(bytes.NewReader(data)), format)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("unpacking %v input: %w", format, err)
	}
	return huffman.BytesSource(data), nil
}

var suffixes = map[Format][]string{
	Gzip: {".gz", ".gzip", ".tgz=.tar"},
	XZ:   {".xz", ".txz=.tar"},
	Zstd: {".zst", ".zstd", ".tzst=.tar"},
}

// UnpackedName is the name a file packed as format has once unpacked:
// "a.txt.gz" becomes "a.txt" and "a.tgz" becomes "a.tar".
func UnpackedName(name string, format Format) string {
	for _, s := range suffixes[format] {
		from, to, _ := strings.Cut(s, "=")
		if strings.HasSuffix(name, from) {
			return strings.TrimSuffix(name, from) + to
		}
	}
	return name
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func unwrap(rc io.ReadCloser, format Format) (io.ReadCloser, error) {
	switch format {
	case Gzip:
		zr, err := gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
		return &readCloser{zr, []io.Closer{zr, rc}}, nil
	case XZ:
		xr, err := xz.NewReader(rc, xz.DefaultDictMax)
		if err != nil {
			return nil, err
		}
		return &readCloser{xr, []io.Closer{rc}}, nil
	case Zstd:
		d, err := zstd.NewReader(rc)
		if err != nil {
			return nil, err
		}
		return &readCloser{d, []io.Closer{d.IOReadCloser(), rc}}, nil
	}
	return rc, nil
}
