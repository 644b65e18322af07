// Package station holds per-station running aggregates and the tables that
// collect them.
package station

// Stats is the running aggregate of one station's temperatures, in tenths of
// a degree.
type Stats struct {
	Min   int16
	Max   int16
	Sum   int64
	Count uint64
}

// NewStats seeds an aggregate with its first observation.
func NewStats(temp int16) Stats {
	return Stats{Min: temp, Max: temp, Sum: int64(temp), Count: 1}
}

// Observe folds one temperature into s.
func (s *Stats) Observe(temp int16) {
	s.Min = min(s.Min, temp)
	s.Max = max(s.Max, temp)
	s.Sum += int64(temp)
	s.Count++
}

// Merge folds another aggregate into s.
func (s *Stats) Merge(o Stats) {
	s.Min = min(s.Min, o.Min)
	s.Max = max(s.Max, o.Max)
	s.Sum += o.Sum
	s.Count += o.Count
}

// Global maps decoded station names to their aggregate across all chunks.
type Global map[string]*Stats

// Absorb folds every entry of t into g. Names are copied into strings here,
// once per station per table.
func (g Global) Absorb(t *Table) {
	t.Each(func(name []byte, s Stats) {
		if cur, ok := g[string(name)]; ok {
			cur.Merge(s)
			return
		}
		g[string(name)] = &s
	})
}

// Combine folds every entry of o into g. o is left untouched.
func (g Global) Combine(o Global) {
	for name, s := range o {
		if cur, ok := g[name]; ok {
			cur.Merge(*s)
			continue
		}
		c := *s
		g[name] = &c
	}
}
