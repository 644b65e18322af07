// Package chunk splits an input file into record-aligned byte ranges.
package chunk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// LookaheadSize is how far past an approximate boundary the planner looks for
// a line terminator. A 100-byte name, the delimiter and the longest
// temperature fit well inside it.
const LookaheadSize = 128

var (
	ErrNoTerminator = errors.New("no line terminator within lookahead window")
	ErrShortRead    = errors.New("short read")
)

// Range is the half-open byte interval [Start, End) of the input.
type Range struct {
	Start, End int64
}

func (r Range) Len() int64 { return r.End - r.Start }

// Plan partitions [0, size) into at most n contiguous ranges. Every range but
// the last ends just after a '\n'. n is clamped so that no range is shorter
// than the lookahead window, and ranges whose probe runs past the end of the
// input fold into the last one. An empty input has no ranges.
func Plan(r io.ReaderAt, size int64, n int) ([]Range, error) {
	if size <= 0 {
		return nil, nil
	}
	n = max(n, 1)
	if limit := size / LookaheadSize; int64(n) > limit {
		n = int(max(limit, 1))
	}

	target := size / int64(n)
	ranges := make([]Range, 0, n)
	var buf [LookaheadSize]byte
	var start int64

	for i := 1; i < n && start < size; i++ {
		probe := start + target
		if probe >= size {
			break
		}

		window := buf[:min(LookaheadSize, size-probe)]
		read, err := r.ReadAt(window, probe)
		if read < len(window) {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("probe boundary at byte %d: %w: %w", probe, ErrShortRead, err)
		}

		nl := bytes.IndexByte(window, '\n')
		if nl < 0 {
			if probe+int64(len(window)) == size {
				break
			}
			return nil, fmt.Errorf("probe boundary at byte %d: %w", probe, ErrNoTerminator)
		}

		end := probe + int64(nl) + 1
		ranges = append(ranges, Range{Start: start, End: end})
		start = end
	}

	if start < size {
		ranges = append(ranges, Range{Start: start, End: size})
	}
	return ranges, nil
}
