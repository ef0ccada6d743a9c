package seqindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenFileManagerCreatesBlankIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index")

	fm, mem, err := openFileManager(path, 4096, 1024, NewDiscardErrorHandler())
	require.NoError(t, err)
	defer fm.Close()

	require.True(t, fileInitialized(mem, 1024))
	_, err = os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(fm.writablePath)
	require.NoError(t, err)
}

func TestFileManagerFlipSwapsRoles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index")

	fm, mem, err := openFileManager(path, 4096, 1024, NewDiscardErrorHandler())
	require.NoError(t, err)
	defer fm.Close()

	mem[HeaderSize] = 0x42
	require.NoError(t, fm.saveFile(mem))
	require.NoError(t, fm.Flip())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, byte(0x42), raw[HeaderSize])

	_, err = os.Stat(fm.passingPath)
	require.True(t, os.IsNotExist(err), "passing place should not persist after a clean flip")
}

func TestFileManagerSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	_, _, err := openFileManager(path, 4096, 1024, NewDiscardErrorHandler())
	require.Error(t, err)

	ie, ok := err.(*IndexError)
	require.True(t, ok)
	require.Equal(t, SizeMismatch, ie.Kind)
}

func TestOpenFileManagerRecoversFromPassingPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index")

	fm, mem, err := openFileManager(path, 4096, 1024, NewDiscardErrorHandler())
	require.NoError(t, err)
	mem[HeaderSize+4] = 0x99
	// Stamp checksums as a real flush does before copying out; a sector with
	// a stale trailer is zeroed on load.
	NewSectorFramer(mem, 1024, NewDiscardErrorHandler(), 0, "test").UpdateChecksums()
	require.NoError(t, fm.saveFile(mem))
	require.NoError(t, fm.Flip())
	require.NoError(t, fm.Close())

	require.NoError(t, os.Rename(path, path+".passing"))

	fm2, mem2, err := openFileManager(path, 4096, 1024, NewDiscardErrorHandler())
	require.NoError(t, err)
	defer fm2.Close()

	require.Equal(t, byte(0x99), mem2[HeaderSize+4])
	_, err = os.Stat(path + ".passing")
	require.True(t, os.IsNotExist(err))
}
