// Package source gives the planner and the chunk aggregators access to the
// input file.
package source

import (
	"errors"
	"fmt"
	"io"

	"xpug.it/1brc/internal/chunk"
)

// Kinds of input source.
const (
	// Mmap maps the whole file once; ranges are zero-copy views of the mapping.
	Mmap = "mmap"
	// MmapReader maps the file but copies each range out through ReadAt.
	MmapReader = "mmap-reader"
	// Pread reads each range with pread(2) into its own buffer.
	Pread = "pread"
)

var ErrUnknownKind = errors.New("unknown source kind")

// Source is a read-only input file. ReadAt serves the planner's boundary
// probes. Bytes returns the contents of one range; the result stays valid
// until Close and must not be modified. Bytes is safe for concurrent use.
type Source interface {
	io.ReaderAt
	Size() int64
	Bytes(r chunk.Range) ([]byte, error)
	Close() error
}

// Open opens path as the given kind of source.
func Open(path, kind string) (Source, error) {
	var (
		src Source
		err error
	)
	switch kind {
	case Mmap:
		src, err = openMapped(path)
	case MmapReader:
		src, err = openMappedReader(path)
	case Pread:
		src, err = openFile(path)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return src, nil
}
