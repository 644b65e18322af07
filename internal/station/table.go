package station

import "bytes"

// DefaultCapacity is the number of distinct stations a Table is sized for
// before it has to grow.
const DefaultCapacity = 1 << 15

const (
	fnv1aOffset64 = 14695981039346656037
	fnv1aPrime64  = 1099511628211
)

type entry struct {
	name  []byte
	hash  uint64
	stats Stats
}

// Table is a chunk-local open addressing hash table keyed by raw station name
// bytes. It is not safe for concurrent use. Names are retained, not copied,
// so the bytes they alias must outlive the table.
type Table struct {
	// slots hold an index into entries plus one; zero marks an empty slot.
	slots   []int32
	mask    uint64
	entries []entry
}

// NewTable returns a table with room for capacity stations.
func NewTable(capacity int) *Table {
	n := 16
	for n < 2*capacity {
		n <<= 1
	}
	return &Table{
		slots:   make([]int32, n),
		mask:    uint64(n - 1),
		entries: make([]entry, 0, capacity),
	}
}

// Add folds one observation of name into the table.
func (t *Table) Add(name []byte, temp int16) {
	h := hash(name)
	for i := h & t.mask; ; i = (i + 1) & t.mask {
		idx := t.slots[i]
		if idx == 0 {
			t.entries = append(t.entries, entry{name: name, hash: h, stats: NewStats(temp)})
			t.slots[i] = int32(len(t.entries))
			if 2*len(t.entries) > len(t.slots) {
				t.grow()
			}
			return
		}
		e := &t.entries[idx-1]
		if e.hash == h && bytes.Equal(e.name, name) {
			e.stats.Observe(temp)
			return
		}
	}
}

// Lookup returns the aggregate for name.
func (t *Table) Lookup(name []byte) (Stats, bool) {
	h := hash(name)
	for i := h & t.mask; ; i = (i + 1) & t.mask {
		idx := t.slots[i]
		if idx == 0 {
			return Stats{}, false
		}
		if e := &t.entries[idx-1]; e.hash == h && bytes.Equal(e.name, name) {
			return e.stats, true
		}
	}
}

// Len returns the number of distinct stations.
func (t *Table) Len() int { return len(t.entries) }

// Rows returns the number of observations folded in.
func (t *Table) Rows() uint64 {
	var n uint64
	for i := range t.entries {
		n += t.entries[i].stats.Count
	}
	return n
}

// Each calls fn for every station in insertion order.
func (t *Table) Each(fn func(name []byte, s Stats)) {
	for i := range t.entries {
		fn(t.entries[i].name, t.entries[i].stats)
	}
}

func (t *Table) grow() {
	n := 2 * len(t.slots)
	t.slots = make([]int32, n)
	t.mask = uint64(n - 1)
	for j := range t.entries {
		i := t.entries[j].hash & t.mask
		for t.slots[i] != 0 {
			i = (i + 1) & t.mask
		}
		t.slots[i] = int32(j + 1)
	}
}

// hash is FNV-1a, inlined so the hot loop does not allocate a hash.Hash64.
func hash(b []byte) uint64 {
	h := uint64(fnv1aOffset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= fnv1aPrime64
	}
	return h
}
