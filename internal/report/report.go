// Package report renders merged station statistics. It is the only place
// temperatures become floating point.
package report

import (
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"

	"xpug.it/1brc/internal/station"
)

// Names returns the station names of g in ascending byte order.
func Names(g station.Global) []string {
	names := maps.Keys(g)
	slices.Sort(names)
	return names
}

// String renders g as `{name=min/mean/max, ...}` sorted by name.
func String(g station.Global) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range Names(g) {
		if i > 0 {
			b.WriteString(", ")
		}
		s := g[name]
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(FormatTemperature(int64(s.Min)))
		b.WriteByte('/')
		b.WriteString(FormatTemperature(MeanTenths(*s)))
		b.WriteByte('/')
		b.WriteString(FormatTemperature(int64(s.Max)))
	}
	b.WriteByte('}')
	return b.String()
}

// Write writes String(g) and a newline to w.
func Write(w io.Writer, g station.Global) error {
	_, err := io.WriteString(w, String(g)+"\n")
	return err
}

// MeanTenths returns sum / (10 * count) rounded to the nearest tenth, ties
// toward positive infinity, expressed in tenths.
func MeanTenths(s station.Stats) int64 {
	if s.Count == 0 {
		return 0
	}
	mean := float64(s.Sum) / (10.0 * float64(s.Count))
	return int64(math.Floor(mean*10 + 0.5))
}

// FormatTemperature renders tenths of a degree with exactly one decimal digit.
func FormatTemperature(tenths int64) string {
	b := make([]byte, 0, 8)
	if tenths < 0 {
		b = append(b, '-')
		tenths = -tenths
	}
	b = strconv.AppendInt(b, tenths/10, 10)
	b = append(b, '.', byte('0'+tenths%10))
	return string(b)
}
