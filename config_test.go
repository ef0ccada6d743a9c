package seqindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyOrWriteLayoutPersistsOnFirstOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index")
	opts := IndexOptions{FileCapacity: 8192, SectorSize: 1024, StreamID: 3, IndexFileStateFlushTimeoutInMs: 500}

	require.NoError(t, verifyOrWriteLayout(path, &opts))
	_, err := os.Stat(layoutPathFor(path))
	require.NoError(t, err)
}

func TestVerifyOrWriteLayoutOverridesOnSubsequentOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index")
	first := IndexOptions{FileCapacity: 8192, SectorSize: 1024, StreamID: 3, IndexFileStateFlushTimeoutInMs: 500}
	require.NoError(t, verifyOrWriteLayout(path, &first))

	second := IndexOptions{FileCapacity: 99999, SectorSize: 77, StreamID: 1, IndexFileStateFlushTimeoutInMs: 1}
	require.NoError(t, verifyOrWriteLayout(path, &second))

	require.Equal(t, int64(8192), second.FileCapacity)
	require.Equal(t, 1024, second.SectorSize)
	require.Equal(t, int32(3), second.StreamID)
	require.Equal(t, int64(500), second.IndexFileStateFlushTimeoutInMs)
}
