package huffman

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/icza/bitio"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("huffman")

// Debug output stays off until the program installs its own backend.
func init() {
	logging.SetLevel(logging.INFO, "huffman")
}

// Source is an input that can be read from the start more than once.
// Encoding opens it twice: once to count, once to encode.
type Source interface {
	Open() (io.ReadCloser, error)
}

// BytesSource is a Source over an in-memory buffer.
type BytesSource []byte

func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// Summary reports what an Encode or Decode did.
type Summary struct {
	InputBytes  int64
	OutputBytes int64
	Symbols     int
	TotalBits   uint32
	Tree        *Tree
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// Encode compresses src into w: header first, then the packed codes.
func Encode(w io.Writer, src Source) (*Summary, error) {
	r, err := src.Open()
	if err != nil {
		return nil, err
	}
	freq, err := CountFrequencies(r)
	r.Close()
	if err != nil {
		return nil, err
	}

	tree, err := BuildTree(freq)
	if err != nil {
		return nil, err
	}
	codes, err := tree.Codes()
	if err != nil {
		return nil, err
	}
	total, err := codes.TotalBits(freq)
	if err != nil {
		return nil, err
	}

	if log.IsEnabledFor(logging.DEBUG) {
		st := tree.Stats()
		log.Debugf("encode: %d bytes, %d symbols, tree height %d, %d bits",
			freq.Total(), st.Leaves, st.Height, total)
	}

	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	if err := WriteHeader(bw, &Header{Codes: *codes, TotalBits: total}); err != nil {
		return nil, err
	}

	r, err = src.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	in, bits, err := EncodeStream(bw, r, codes)
	if err != nil {
		return nil, err
	}
	if bits != uint64(total) {
		return nil, fmt.Errorf("%w: header declares %d bits, encoded %d", ErrSourceChanged, total, bits)
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}

	return &Summary{
		InputBytes:  in,
		OutputBytes: cw.n,
		Symbols:     codes.Used(),
		TotalBits:   total,
		Tree:        tree,
	}, nil
}

// EncodeStream writes the code of every byte of r, then pads the last byte.
// It returns the number of bytes read and bits written.
func EncodeStream(w io.ByteWriter, r io.Reader, codes *CodeTable) (int64, uint64, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	bw := NewBitWriter(w)

	var in int64
	var bits uint64
	for {
		ch, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return in, bits, fmt.Errorf("encoding: %w", err)
		}

		c := codes[ch]
		if c.Len == 0 {
			return in, bits, fmt.Errorf("%w: byte %#02x has no code", ErrSourceChanged, ch)
		}
		if err := bw.WriteCode(c); err != nil {
			return in, bits, err
		}
		in++
		bits += uint64(c.Len)
	}

	return in, bits, bw.Flush()
}

// Decode reads a compressed stream from r and writes the original bytes to w.
func Decode(w io.Writer, r io.Reader) (*Summary, error) {
	cr := &countingReader{r: r}
	br := bufio.NewReader(cr)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	tree, err := h.Codes.Tree()
	if err != nil {
		return nil, err
	}

	if log.IsEnabledFor(logging.DEBUG) {
		log.Debugf("decode: %d symbols, %d bits", h.Codes.Used(), h.TotalBits)
	}

	bw := bufio.NewWriter(w)
	n, err := DecodeStream(bw, br, tree, h.TotalBits)
	if err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}

	return &Summary{
		InputBytes:  cr.n,
		OutputBytes: n,
		Symbols:     h.Codes.Used(),
		TotalBits:   h.TotalBits,
		Tree:        tree,
	}, nil
}

// DecodeStream walks t one bit at a time, emitting a symbol at each leaf,
// and stops after exactly totalBits bits. Padding past that is never read.
func DecodeStream(w io.ByteWriter, r io.Reader, t *Tree, totalBits uint32) (int64, error) {
	if totalBits == 0 {
		return 0, nil
	}
	if t.Root == nil {
		return 0, fmt.Errorf("%w: %d bits but no symbols", ErrCorrupt, totalBits)
	}

	br := bitio.NewReader(r)
	n := t.Root
	var out int64
	for i := uint32(0); i < totalBits; i++ {
		bit, err := br.ReadBool()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return out, fmt.Errorf("%w: data ends after %d of %d bits", ErrTruncated, i, totalBits)
			}
			return out, fmt.Errorf("decoding: %w", err)
		}

		next := n.Left
		if bit {
			next = n.Right
		}
		if next == nil {
			return out, fmt.Errorf("%w: no code matches at bit %d", ErrCorrupt, i)
		}
		if !next.Leaf {
			n = next
			continue
		}

		if err := w.WriteByte(next.Symbol); err != nil {
			return out, err
		}
		out++
		n = t.Root
	}

	if n != t.Root {
		return out, fmt.Errorf("%w: last code cut short", ErrCorrupt)
	}
	return out, nil
}

func EncodeBytes(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, BytesSource(p)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeBytes(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Decode(&buf, bytes.NewReader(p)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
