package source

import (
	"errors"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"xpug.it/1brc/internal/chunk"
)

// mapped is the whole file mapped read-only. Boundary probes go through the
// file descriptor, not the mapping.
type mapped struct {
	f    *os.File
	data mmap.MMap
	size int64
}

func openMapped(path string) (*mapped, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := fi.Size()
	if size != int64(int(size)) {
		f.Close()
		return nil, fmt.Errorf("file size %d exceeds address space", size)
	}
	if size == 0 {
		// Zero-length mappings are rejected by mmap(2).
		return &mapped{f: f}, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap: %w", err)
	}
	_ = adviseSequential(data) // advisory only
	return &mapped{f: f, data: data, size: size}, nil
}

func (m *mapped) Size() int64 { return m.size }

func (m *mapped) ReadAt(p []byte, off int64) (int, error) { return m.f.ReadAt(p, off) }

func (m *mapped) Bytes(r chunk.Range) ([]byte, error) {
	if r.Start < 0 || r.End > m.size || r.Start > r.End {
		return nil, fmt.Errorf("range [%d,%d) outside file of %d bytes", r.Start, r.End, m.size)
	}
	return m.data[r.Start:r.End:r.End], nil
}

func (m *mapped) Close() error {
	var err error
	if m.data != nil {
		err = m.data.Unmap()
	}
	return errors.Join(err, m.f.Close())
}
