package huffman

import "io"

// BitWriter packs single bits into bytes, most significant bit first.
type BitWriter struct {
	w     io.ByteWriter
	acc   byte
	count uint8
}

func NewBitWriter(w io.ByteWriter) *BitWriter {
	return &BitWriter{w: w}
}

// WriteBit appends the low bit of bit, emitting a byte once eight are held.
func (b *BitWriter) WriteBit(bit uint8) error {
	b.acc = b.acc<<1 | bit&1
	b.count++
	if b.count < 8 {
		return nil
	}

	err := b.w.WriteByte(b.acc)
	b.acc, b.count = 0, 0
	return err
}

// WriteCode appends the bits of c, most significant first.
func (b *BitWriter) WriteCode(c Code) error {
	for i := int(c.Len) - 1; i >= 0; i-- {
		if err := b.WriteBit(uint8(c.Bits >> uint(i))); err != nil {
			return err
		}
	}
	return nil
}

// Flush emits any held bits, padding the low end of the byte with zeros.
// The padding is not marked; readers rely on the header's bit count.
func (b *BitWriter) Flush() error {
	if b.count == 0 {
		return nil
	}

	err := b.w.WriteByte(b.acc << (8 - b.count))
	b.acc, b.count = 0, 0
	return err
}

// Pending returns the number of bits held but not yet emitted.
func (b *BitWriter) Pending() int { return int(b.count) }
