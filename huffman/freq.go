/*
Package huffman implements a static Huffman compressor for byte streams.

Frequencies are counted over the whole input first, so encoding needs an
input that can be read twice (see Source). The compressed stream starts with
a header carrying every used symbol's code, which is enough to rebuild the
tree without the original statistics.
*/
package huffman

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
)

// FreqTable holds the number of occurrences of each byte value.
type FreqTable [256]uint32

// CountFrequencies reads r to exhaustion and counts every byte.
func CountFrequencies(r io.Reader) (*FreqTable, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var freq FreqTable
	for {
		ch, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return &freq, nil
			}
			return nil, fmt.Errorf("counting frequencies: %w", err)
		}

		if freq[ch] == math.MaxUint32 {
			return nil, ErrTooLarge
		}
		freq[ch]++
	}
}

// Symbols returns the number of distinct byte values with a nonzero count.
func (f *FreqTable) Symbols() int {
	n := 0
	for _, c := range f {
		if c != 0 {
			n++
		}
	}
	return n
}

// Total returns the number of bytes counted.
func (f *FreqTable) Total() uint64 {
	var n uint64
	for _, c := range f {
		n += uint64(c)
	}
	return n
}
