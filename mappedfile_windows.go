//go:build windows

package seqindex

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// runningOnWindows mirrors the RUNNING_ON_WINDOWS check the original writer
// makes before deciding whether a flip needs to unmap/remap its handles:
// Windows refuses to rename a file that still has an active mapping.
const runningOnWindows = true

func (m *mappedFile) mmap() error {
	h, err := windows.CreateFileMapping(windows.Handle(m.f.Fd()), nil, windows.PAGE_READWRITE, 0, 0, nil)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(m.capacity))
	if err != nil {
		return err
	}
	m.mapAddr = addr
	m.data = unsafeSliceFromPtr(addr, int(m.capacity))
	return nil
}

func (m *mappedFile) munmap() error {
	if m.data == nil {
		return nil
	}
	err := windows.UnmapViewOfFile(m.mapAddr)
	m.data = nil
	m.mapAddr = 0
	return err
}

func (m *mappedFile) msync() error {
	if m.data == nil {
		return nil
	}
	return windows.FlushViewOfFile(m.mapAddr, uintptr(m.capacity))
}

// fsyncParentDir is a no-op on Windows: directory handles don't support
// fsync the way POSIX does, and NTFS's own metadata journal already
// serializes the rename ahead of any data it protects here.
func fsyncParentDir(path string) error {
	_ = path
	return nil
}

func unsafeSliceFromPtr(addr uintptr, length int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)
}
