package huffman_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math/rand"
	"testing"
	"testing/iotest"

	"github.com/atiedebee/huff/huffman"
	"github.com/op/go-logging"
)

func roundTrip(t *testing.T, in []byte) []byte {
	t.Helper()
	packed, err := huffman.EncodeBytes(in)
	if err != nil {
		t.Fatalf("encoding %d bytes: %v", len(in), err)
	}
	out, err := huffman.DecodeBytes(packed)
	if err != nil {
		t.Fatalf("decoding %d bytes: %v", len(in), err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("round trip of %d bytes came back as %d different bytes", len(in), len(out))
	}
	return packed
}

func TestEncodeExact(t *testing.T) {
	packed := roundTrip(t, []byte("aaab"))
	want := []byte{
		2,
		'a', 1, 1, 0, 0, 0,
		'b', 1, 0, 0, 0, 0,
		4, 0, 0, 0,
		0xe0,
	}
	if !bytes.Equal(packed, want) {
		t.Fatalf("got % x, want % x", packed, want)
	}
}

func TestRoundTripEdgeCases(t *testing.T) {
	allBytes := make([]byte, 256)
	for i := range allBytes {
		allBytes[i] = byte(i)
	}

	cases := map[string][]byte{
		"one byte":    []byte("a"),
		"single run":  []byte("zzzz"),
		"two symbols": []byte("aaab"),
		"all bytes":   allBytes,
		"text":        []byte("she sells sea shells by the sea shore\n"),
		"zeros":       make([]byte, 1000),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			roundTrip(t, in)
		})
	}
}

func TestRoundTripEmpty(t *testing.T) {
	packed, err := huffman.EncodeBytes(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(packed, []byte{0, 0, 0, 0, 0}) {
		t.Fatalf("empty input packed as % x", packed)
	}
	out, err := huffman.DecodeBytes(packed)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("empty input decoded to %d bytes", len(out))
	}
}

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(randSeed))

	for iteration := 0; iteration < iterations; iteration++ {
		alphabet := 1 + rng.Intn(256)
		in := make([]byte, rng.Intn(5000))
		for i := range in {
			// Skew towards low symbols so code lengths vary.
			in[i] = byte(rng.Intn(1 + rng.Intn(alphabet)))
		}
		roundTrip(t, in)
	}
}

func TestSummaryBitCount(t *testing.T) {
	in := []byte("abracadabra")
	var buf bytes.Buffer
	sum, err := huffman.Encode(&buf, huffman.BytesSource(in))
	if err != nil {
		t.Fatal(err)
	}

	codes := codesOf(t, freqOf(string(in)))
	var want uint32
	for _, b := range in {
		want += uint32(codes[b].Len)
	}
	if sum.TotalBits != want {
		t.Errorf("TotalBits %d, want %d", sum.TotalBits, want)
	}
	if sum.InputBytes != int64(len(in)) || sum.OutputBytes != int64(buf.Len()) || sum.Symbols != 5 {
		t.Errorf("summary %+v", *sum)
	}
	if payload := buf.Len() - (1 + 5*6 + 4); payload != int(want+7)/8 {
		t.Errorf("payload %d bytes for %d bits", payload, want)
	}

	dsum, err := huffman.Decode(io.Discard, iotest.OneByteReader(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if dsum.OutputBytes != int64(len(in)) || dsum.TotalBits != want {
		t.Errorf("decode summary %+v", *dsum)
	}
}

func TestDecodeTruncated(t *testing.T) {
	packed := roundTrip(t, []byte("she sells sea shells by the sea shore"))

	_, err := huffman.DecodeBytes(packed[:len(packed)-1])
	if !errors.Is(err, huffman.ErrTruncated) {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}

func TestDecodeNoMatchingCode(t *testing.T) {
	packed := roundTrip(t, []byte("zzzz"))

	// z is the only symbol and its code is 0, so a 1 bit leads nowhere.
	packed[len(packed)-1] = 0x80
	if _, err := huffman.DecodeBytes(packed); !errors.Is(err, huffman.ErrCorrupt) {
		t.Fatalf("got %v, want ErrCorrupt", err)
	}
}

func TestDecodeCodeCutShort(t *testing.T) {
	packed := roundTrip(t, []byte("abcd"))

	// Four symbols with two-bit codes; drop the last bit of the total.
	off := 1 + 4*6
	if got := binary.LittleEndian.Uint32(packed[off:]); got != 8 {
		t.Fatalf("total bits %d, want 8", got)
	}
	binary.LittleEndian.PutUint32(packed[off:], 7)
	if _, err := huffman.DecodeBytes(packed); !errors.Is(err, huffman.ErrCorrupt) {
		t.Fatalf("got %v, want ErrCorrupt", err)
	}
}

func TestDecodeIgnoresTrailingData(t *testing.T) {
	in := []byte("aaab")
	packed := roundTrip(t, in)
	packed = append(packed, 0xff, 0xff)

	out, err := huffman.DecodeBytes(packed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("got %q, want %q", out, in)
	}
}

type changingSource struct {
	opens int
	first []byte
	later []byte
}

func (s *changingSource) Open() (io.ReadCloser, error) {
	s.opens++
	if s.opens == 1 {
		return io.NopCloser(bytes.NewReader(s.first)), nil
	}
	return io.NopCloser(bytes.NewReader(s.later)), nil
}

func TestEncodeSourceChanged(t *testing.T) {
	cases := []*changingSource{
		{first: []byte("aaab"), later: []byte("aaabb")},
		{first: []byte("aaab"), later: []byte("aaac")},
	}
	for _, src := range cases {
		_, err := huffman.Encode(io.Discard, src)
		if !errors.Is(err, huffman.ErrSourceChanged) {
			t.Errorf("%q then %q: got %v, want ErrSourceChanged", src.first, src.later, err)
		}
		if src.opens != 2 {
			t.Errorf("source opened %d times", src.opens)
		}
	}
}

func TestQuietByDefault(t *testing.T) {
	if level := logging.GetLevel("huffman"); level >= logging.DEBUG {
		t.Fatalf("library logs at %v without a configured backend", level)
	}
	if logging.MustGetLogger("huffman").IsEnabledFor(logging.DEBUG) {
		t.Fatal("debug output enabled by default")
	}
}
