package seqindex

import (
	"os"
	"path/filepath"
)

// openParentDir opens the directory containing path, for callers that need
// to fsync it after a rename lands there.
func openParentDir(path string) (*os.File, error) {
	return os.Open(filepath.Dir(path))
}

// mappedFile pairs an open file descriptor with its mmap'd region. The
// platform-specific mmap/munmap/sync calls live in mappedfile_unix.go and
// mappedfile_windows.go; this file holds the shared open/create/close
// bookkeeping.
type mappedFile struct {
	f        *os.File
	data     []byte
	path     string
	capacity int64
	mapAddr  uintptr // Windows only: the MapViewOfFile base address
}

// openOrCreateScratch opens path, creating and sizing it to capacity if
// necessary, and always truncating an existing file to capacity: the
// writable scratch file is fully overwritten on every flush, so its prior
// contents never need preserving across an open.
func openOrCreateScratch(path string, capacity int64) (*mappedFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(capacity); err != nil {
		f.Close()
		return nil, err
	}
	mf := &mappedFile{f: f, path: path, capacity: capacity}
	if err := mf.mmap(); err != nil {
		f.Close()
		return nil, err
	}
	return mf, nil
}

// openMapped mmaps an existing, already correctly-sized file in place.
func openMapped(path string, capacity int64) (*mappedFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	mf := &mappedFile{f: f, path: path, capacity: capacity}
	if err := mf.mmap(); err != nil {
		f.Close()
		return nil, err
	}
	return mf, nil
}

// reopenMapped opens path fresh (used by the Windows flip path, where the
// previous handle was closed before the rename so a new path->inode
// binding must be established after it).
func reopenMapped(path string, capacity int64) (*mappedFile, error) {
	return openMapped(path, capacity)
}

func (m *mappedFile) Data() []byte { return m.data }

// Force flushes the mapped region to stable storage.
func (m *mappedFile) Force() error {
	return m.msync()
}

// Close unmaps the region and closes the file descriptor.
func (m *mappedFile) Close() error {
	if m == nil {
		return nil
	}
	err := m.munmap()
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
