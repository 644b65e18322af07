package source

import (
	"fmt"
	"io"
	"os"

	gommap "github.com/go-mmap/mmap"

	"xpug.it/1brc/internal/chunk"
)

type readerAtCloser interface {
	io.ReaderAt
	io.Closer
}

// copying serves each range as a fresh buffer filled by ReadAt, so workers
// never share memory with each other or with the underlying file.
type copying struct {
	r    readerAtCloser
	size int64
}

func openFile(path string) (*copying, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &copying{r: f, size: fi.Size()}, nil
}

func openMappedReader(path string) (*copying, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return openFile(path)
	}
	f, err := gommap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return &copying{r: f, size: int64(f.Len())}, nil
}

func (c *copying) Size() int64 { return c.size }

func (c *copying) ReadAt(p []byte, off int64) (int, error) { return c.r.ReadAt(p, off) }

func (c *copying) Bytes(r chunk.Range) ([]byte, error) {
	if r.Start < 0 || r.End > c.size || r.Start > r.End {
		return nil, fmt.Errorf("range [%d,%d) outside file of %d bytes", r.Start, r.End, c.size)
	}
	buf := make([]byte, r.Len())
	n, err := c.r.ReadAt(buf, r.Start)
	if n < len(buf) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read range [%d,%d): %w", r.Start, r.End, err)
	}
	return buf, nil
}

func (c *copying) Close() error { return c.r.Close() }
