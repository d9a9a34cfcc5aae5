package huffman

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Header is everything a decoder needs ahead of the packed bits: the code of
// every used symbol and the number of meaningful bits that follow.
//
// On disk:
//
//	u8   symbol count (256 is stored as 0)
//	     per used symbol, ascending: u8 symbol, u8 code length, u32 code
//	u32  total bits
//
// Integers are little-endian. An empty input is a zero count followed by a
// zero bit total.
type Header struct {
	Codes     CodeTable
	TotalBits uint32
}

const recordSize = 6

func WriteHeader(w io.Writer, h *Header) error {
	used := h.Codes.Used()

	buf := make([]byte, 0, 1+used*recordSize+4)
	buf = append(buf, byte(used))
	for i, c := range h.Codes {
		if c.Len == 0 {
			continue
		}
		if c.Len > MaxCodeLen {
			return fmt.Errorf("%w: symbol %#02x has length %d", ErrCodeTooLong, i, c.Len)
		}
		buf = append(buf, byte(i), c.Len)
		buf = binary.LittleEndian.AppendUint32(buf, c.Bits)
	}
	buf = binary.LittleEndian.AppendUint32(buf, h.TotalBits)

	_, err := w.Write(buf)
	return err
}

// ReadHeader reads a header and checks each record for sanity. It does not
// check that the codes are prefix-free; CodeTable.Tree does that.
func ReadHeader(r io.Reader) (*Header, error) {
	var count [1]byte
	if _, err := io.ReadFull(r, count[:]); err != nil {
		return nil, headerErr(err)
	}

	h := &Header{}
	n := int(count[0])
	var rec [recordSize]byte

	if n == 0 {
		// Either an empty input's zero bit total, or the start of the first
		// of 256 records, whose length byte cannot be zero.
		if _, err := io.ReadFull(r, rec[:4]); err != nil {
			return nil, headerErr(err)
		}
		if binary.LittleEndian.Uint32(rec[:4]) == 0 {
			return h, nil
		}
		if _, err := io.ReadFull(r, rec[4:]); err != nil {
			return nil, headerErr(err)
		}
		if err := h.addRecord(rec); err != nil {
			return nil, err
		}
		n = 255
	}

	for range n {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, headerErr(err)
		}
		if err := h.addRecord(rec); err != nil {
			return nil, err
		}
	}

	var total [4]byte
	if _, err := io.ReadFull(r, total[:]); err != nil {
		return nil, headerErr(err)
	}
	h.TotalBits = binary.LittleEndian.Uint32(total[:])
	return h, nil
}

func (h *Header) addRecord(rec [recordSize]byte) error {
	sym, length := rec[0], rec[1]
	code := binary.LittleEndian.Uint32(rec[2:])

	switch {
	case length == 0 || length > MaxCodeLen:
		return fmt.Errorf("%w: symbol %#02x has length %d", ErrCorrupt, sym, length)
	case length < 32 && code>>length != 0:
		return fmt.Errorf("%w: symbol %#02x code %#x wider than %d bits", ErrCorrupt, sym, code, length)
	case h.Codes[sym].Len != 0:
		return fmt.Errorf("%w: symbol %#02x listed twice", ErrCorrupt, sym)
	}

	h.Codes[sym] = Code{Bits: code, Len: length}
	return nil
}

func headerErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: short header", ErrTruncated)
	}
	return fmt.Errorf("reading header: %w", err)
}

// Tree rebuilds the decoding tree from the code table. Each code is walked
// from a synthetic root, creating internal nodes as needed, and its last node
// becomes the symbol's leaf. Codes that are not prefix-free are rejected.
func (ct *CodeTable) Tree() (*Tree, error) {
	if ct.Used() == 0 {
		return &Tree{}, nil
	}

	root := &Node{}
	for i, c := range ct {
		if c.Len == 0 {
			continue
		}

		n := root
		fresh := false
		for j := int(c.Len) - 1; j >= 0; j-- {
			if n.Leaf {
				return nil, fmt.Errorf("%w: code of %#02x extends another symbol's code", ErrCorrupt, i)
			}

			child := &n.Left
			if (c.Bits>>uint(j))&1 == 1 {
				child = &n.Right
			}
			fresh = *child == nil
			if fresh {
				*child = &Node{}
			}
			n = *child
		}

		if !fresh {
			return nil, fmt.Errorf("%w: code of %#02x is a prefix of another code", ErrCorrupt, i)
		}
		n.Leaf = true
		n.Symbol = byte(i)
	}

	return &Tree{Root: root}, nil
}
