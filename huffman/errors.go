package huffman

import "errors"

var (
	ErrCorrupt       = errors.New("huffman: corrupt compressed stream")
	ErrTruncated     = errors.New("huffman: truncated compressed stream")
	ErrCodeTooLong   = errors.New("huffman: code longer than 32 bits")
	ErrTooLarge      = errors.New("huffman: input too large for a 32-bit bit count")
	ErrSourceChanged = errors.New("huffman: input changed between passes")
)
