//go:build unix

package seqindex

import "golang.org/x/sys/unix"

// runningOnWindows mirrors the RUNNING_ON_WINDOWS check the original writer
// makes before deciding whether a flip needs to unmap/remap its handles.
const runningOnWindows = false

func (m *mappedFile) mmap() error {
	data, err := unix.Mmap(int(m.f.Fd()), 0, int(m.capacity), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

func (m *mappedFile) munmap() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}

func (m *mappedFile) msync() error {
	if m.data == nil {
		return nil
	}
	return unix.Msync(m.data, unix.MS_SYNC)
}

// fsyncParentDir fsyncs the directory containing path, so the rename that
// just landed there survives a crash. Best effort: the callers in
// filemanager.go ignore the returned error rather than propagate it.
func fsyncParentDir(path string) error {
	dir, err := openParentDir(path)
	if err != nil {
		return err
	}
	defer dir.Close()
	return dir.Sync()
}
