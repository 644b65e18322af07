package record

import (
	"bytes"
	"errors"
	"fmt"
	"math"
)

var (
	ErrMissingDelimiter     = errors.New("missing ';' delimiter")
	ErrEmptyName            = errors.New("empty station name")
	ErrMalformedTemperature = errors.New("malformed temperature")
	ErrTemperatureRange     = errors.New("temperature out of range")
)

// FormatError reports a malformed record and the file offset it starts at.
type FormatError struct {
	Offset int64
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed record at byte %d: %v", e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Parse decodes the record starting at data[pos]. name aliases data. next is
// the offset just past the record's terminator, or len(data) for a final
// record without one.
func Parse(data []byte, pos int) (name []byte, temp int16, next int, err error) {
	semi := FindDelimiter(data[pos:])
	if semi < 0 {
		return nil, 0, 0, ErrMissingDelimiter
	}
	name = data[pos : pos+semi]
	if len(name) == 0 {
		return nil, 0, 0, ErrEmptyName
	}
	if bytes.IndexByte(name, Terminator) >= 0 {
		return nil, 0, 0, ErrMissingDelimiter
	}

	start := pos + semi + 1
	end := start
	for end < len(data) && data[end] != Terminator {
		end++
	}
	temp, err = ParseTemperature(data[start:end])
	if err != nil {
		return nil, 0, 0, err
	}
	if end < len(data) {
		end++
	}
	return name, temp, end, nil
}

// ParseTemperature decodes `-?[0-9]+\.[0-9]` into tenths of a degree. The
// decimal point is skipped and digits accumulate as value*10 + digit.
func ParseTemperature(b []byte) (int16, error) {
	negative := len(b) > 0 && b[0] == '-'
	if negative {
		b = b[1:]
	}
	if len(b) < 3 || b[len(b)-2] != '.' {
		return 0, ErrMalformedTemperature
	}

	var v int32
	for _, c := range b[:len(b)-2] {
		d := c - '0'
		if d > 9 {
			return 0, ErrMalformedTemperature
		}
		v = v*10 + int32(d)
		if v > math.MaxInt16 {
			return 0, ErrTemperatureRange
		}
	}
	d := b[len(b)-1] - '0'
	if d > 9 {
		return 0, ErrMalformedTemperature
	}
	v = v*10 + int32(d)
	if v > math.MaxInt16 {
		return 0, ErrTemperatureRange
	}

	if negative {
		v = -v
	}
	return int16(v), nil
}
