package huffman

import (
	"fmt"
	"math"
)

// MaxCodeLen is the longest code the header can carry.
const MaxCodeLen = 32

// Code is a symbol's path from the root: Len bits, right-aligned in Bits,
// most significant first. Left is 0, right is 1.
type Code struct {
	Bits uint32
	Len  uint8
}

func (c Code) String() string {
	if c.Len == 0 {
		return ""
	}
	return fmt.Sprintf("%0*b", int(c.Len), c.Bits)
}

// CodeTable maps each byte value to its code. Entries with Len 0 are unused.
type CodeTable [256]Code

// Codes walks the tree depth first, left before right, and records the path
// to every leaf.
func (t *Tree) Codes() (*CodeTable, error) {
	var table CodeTable
	if t.Root == nil {
		return &table, nil
	}

	type frame struct {
		n     *Node
		bits  uint64
		depth int
	}
	stack := []frame{{t.Root, 0, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > MaxCodeLen {
			return nil, fmt.Errorf("%w: symbol path reaches depth %d", ErrCodeTooLong, f.depth)
		}
		if f.n.Leaf {
			table[f.n.Symbol] = Code{Bits: uint32(f.bits), Len: uint8(f.depth)}
			continue
		}

		if f.n.Right != nil {
			stack = append(stack, frame{f.n.Right, f.bits<<1 | 1, f.depth + 1})
		}
		if f.n.Left != nil {
			stack = append(stack, frame{f.n.Left, f.bits << 1, f.depth + 1})
		}
	}
	return &table, nil
}

// Used returns the number of symbols with a code.
func (ct *CodeTable) Used() int {
	n := 0
	for _, c := range ct {
		if c.Len > 0 {
			n++
		}
	}
	return n
}

// TotalBits returns the number of bits needed to encode an input with the
// given frequencies.
func (ct *CodeTable) TotalBits(freq *FreqTable) (uint32, error) {
	var total uint64
	for i, c := range freq {
		total += uint64(c) * uint64(ct[i].Len)
	}
	if total > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d bits", ErrTooLarge, total)
	}
	return uint32(total), nil
}
