// Package record locates and decodes `<station>;<temperature>` records.
package record

import (
	"encoding/binary"
	"math/bits"
)

const (
	// Delimiter separates the station name from the temperature.
	Delimiter = ';'
	// Terminator ends a record.
	Terminator = '\n'
)

// blockSize is how many bytes the word-wise scan compares per iteration.
const blockSize = 32

const (
	lsb            = 0x0101010101010101
	msb            = 0x8080808080808080
	delimiterBytes = lsb * Delimiter
)

// FindDelimiter returns the offset of the first ';' in b, or -1 if b has none.
// Inputs shorter than one block are scanned bytewise.
func FindDelimiter(b []byte) int {
	if len(b) < blockSize {
		return FindDelimiterLinear(b)
	}
	return FindDelimiterSWAR(b)
}

// FindDelimiterLinear is the bytewise strategy.
func FindDelimiterLinear(b []byte) int {
	for i, c := range b {
		if c == Delimiter {
			return i
		}
	}
	return -1
}

// FindDelimiterSWAR compares eight bytes per 64-bit word, a block of four
// words at a time, and finishes the remainder bytewise.
func FindDelimiterSWAR(b []byte) int {
	i := 0
	for ; i+blockSize <= len(b); i += blockSize {
		for w := i; w < i+blockSize; w += 8 {
			if m := delimiterMask(binary.LittleEndian.Uint64(b[w:])); m != 0 {
				return w + bits.TrailingZeros64(m)>>3
			}
		}
	}
	for ; i+8 <= len(b); i += 8 {
		if m := delimiterMask(binary.LittleEndian.Uint64(b[i:])); m != 0 {
			return i + bits.TrailingZeros64(m)>>3
		}
	}
	if j := FindDelimiterLinear(b[i:]); j >= 0 {
		return i + j
	}
	return -1
}

// delimiterMask sets the high bit of every byte of w equal to ';'. Bits above
// the lowest set one may be false positives; the lowest one is always exact.
func delimiterMask(w uint64) uint64 {
	x := w ^ delimiterBytes
	return (x - lsb) &^ x & msb
}
