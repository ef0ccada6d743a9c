package seqindex

import (
	"fmt"
	"os"
)

// fileManager is Component D: it owns the three on-disk paths (the
// canonical index, the writable scratch file, and the passing place) and
// performs the atomic three-rename flip between them. The working set the
// writer mutates is a plain heap buffer (mem, returned by openFileManager)
// distinct from either mapped file; the mapped files exist purely for the
// flush/flip I/O path.
type fileManager struct {
	indexPath    string
	writablePath string
	passingPath  string
	capacity     int64

	indexFile    *mappedFile
	writableFile *mappedFile
	errSink      ErrorHandler
}

func writablePathFor(indexPath string) string { return indexPath + ".write" }
func passingPathFor(indexPath string) string  { return indexPath + ".passing" }

// openFileManager implements the recovery procedure on open: load
// the canonical index if it looks initialised, else recover from the
// passing place, else start blank. It returns the heap buffer the writer
// will mutate, pre-populated from whichever source won.
func openFileManager(indexPath string, capacity int64, sectorSize int, errSink ErrorHandler) (*fileManager, []byte, error) {
	writablePath := writablePathFor(indexPath)
	passingPath := passingPathFor(indexPath)
	mem := make([]byte, capacity)

	ready := false
	for !ready {
		info, statErr := os.Stat(indexPath)
		switch {
		case statErr == nil:
			if info.Size() != capacity {
				return nil, nil, &IndexError{Kind: SizeMismatch, DiskCapacity: info.Size(), MemoryCapacity: capacity}
			}
			raw, err := os.ReadFile(indexPath)
			if err != nil {
				return nil, nil, fmt.Errorf("seqindex: read index file: %w", err)
			}
			if fileInitialized(raw, sectorSize) {
				copy(mem, raw)
				loadBuffer(mem, sectorSize, errSink)
				ready = true
				continue
			}
			// A zeroed header on disk is treated the same as a missing
			// file: fall through to the passing-place check below.
		case os.IsNotExist(statErr):
			// fall through
		default:
			return nil, nil, fmt.Errorf("seqindex: stat index file: %w", statErr)
		}

		if _, err := os.Stat(passingPath); err == nil {
			if err := os.Rename(passingPath, indexPath); err != nil {
				errSink.HandleError(&IndexError{Kind: RenameFailed, Src: passingPath, Dst: indexPath})
				return nil, nil, fmt.Errorf("seqindex: recover from passing place: %w", err)
			}
			fsyncParentDir(indexPath)
			continue
		}

		for i := range mem {
			mem[i] = 0
		}
		WriteBlankHeader(mem)
		if err := os.WriteFile(indexPath, mem, 0o644); err != nil {
			return nil, nil, fmt.Errorf("seqindex: create index file: %w", err)
		}
		ready = true
	}

	indexFile, err := openMapped(indexPath, capacity)
	if err != nil {
		return nil, nil, fmt.Errorf("seqindex: map index file: %w", err)
	}
	writableFile, err := openOrCreateScratch(writablePath, capacity)
	if err != nil {
		indexFile.Close()
		return nil, nil, fmt.Errorf("seqindex: map writable file: %w", err)
	}

	fm := &fileManager{
		indexPath:    indexPath,
		writablePath: writablePath,
		passingPath:  passingPath,
		capacity:     capacity,
		indexFile:    indexFile,
		writableFile: writableFile,
		errSink:      errSink,
	}
	return fm, mem, nil
}

// loadBuffer validates the schema header and every sector's checksum on a
// just-loaded buffer. A schema mismatch reinitialises the buffer as blank;
// checksum mismatches are repaired sector-by-sector by ValidateChecksums,
// and a header zeroed along with a failed sector 0 is re-stamped.
func loadBuffer(mem []byte, sectorSize int, errSink ErrorHandler) {
	var h MessageHeader
	if err := h.Decode(mem); err != nil || !validateHeader(h) {
		errSink.HandleError(&IndexError{Kind: SchemaMismatch, Found: h.SchemaID, Expected: fileSchemaID})
		for i := range mem {
			mem[i] = 0
		}
		WriteBlankHeader(mem)
		return
	}

	posOffset := int(positionTableOffset(int64(len(mem)), sectorSize))
	NewSectorFramer(mem[:posOffset], sectorSize, errSink, 0, "sequence-number-index").ValidateChecksums()
	NewSectorFramer(mem[posOffset:], sectorSize, errSink, posOffset, "indexed-position").ValidateChecksums()

	// The header shares sector 0 with the first records; if that sector was
	// zeroed, re-stamp it so the next flush persists a loadable file.
	if err := h.Decode(mem); err != nil || !validateHeader(h) {
		WriteBlankHeader(mem)
	}
}

// saveFile copies mem into the writable mapped file and forces it to
// stable storage, the first half of a flush cycle.
func (fm *fileManager) saveFile(mem []byte) error {
	copy(fm.writableFile.Data(), mem)
	return fm.writableFile.Force()
}

// threeWayRename performs the rename dance that flips the writable scratch
// file into the canonical index slot without ever leaving either role
// unnamed on disk: index->passing, writable->index, passing->writable,
// fsyncing the parent directory after each on POSIX.
func threeWayRename(indexPath, writablePath, passingPath string, errSink ErrorHandler) bool {
	if err := os.Rename(indexPath, passingPath); err != nil {
		errSink.HandleError(&IndexError{Kind: RenameFailed, Src: indexPath, Dst: passingPath})
		return false
	}
	fsyncParentDir(passingPath)

	if err := os.Rename(writablePath, indexPath); err != nil {
		errSink.HandleError(&IndexError{Kind: RenameFailed, Src: writablePath, Dst: indexPath})
		return false
	}
	fsyncParentDir(indexPath)

	if err := os.Rename(passingPath, writablePath); err != nil {
		errSink.HandleError(&IndexError{Kind: RenameFailed, Src: passingPath, Dst: writablePath})
		return false
	}
	fsyncParentDir(writablePath)

	return true
}

// Flip performs the second half of a flush cycle: the three renames, plus
// (on Windows only) the unmap-before/remap-after dance the mapped handles
// need since Windows refuses to rename a file with an active mapping. On
// success the indexFile and writableFile handles swap roles; on failure
// neither handle changes and the next DoWork tick retries.
func (fm *fileManager) Flip() error {
	if runningOnWindows {
		if err := fm.writableFile.Close(); err != nil {
			return err
		}
		if err := fm.indexFile.Close(); err != nil {
			return err
		}
	}

	if !threeWayRename(fm.indexPath, fm.writablePath, fm.passingPath, fm.errSink) {
		if runningOnWindows {
			// Best effort: remap at the unchanged paths so the writer can
			// keep running even though this flip failed.
			wf, werr := reopenMapped(fm.writablePath, fm.capacity)
			idf, ierr := reopenMapped(fm.indexPath, fm.capacity)
			if werr == nil {
				fm.writableFile = wf
			}
			if ierr == nil {
				fm.indexFile = idf
			}
		}
		return fmt.Errorf("seqindex: flip failed")
	}

	if runningOnWindows {
		writableFile, err := reopenMapped(fm.writablePath, fm.capacity)
		if err != nil {
			return err
		}
		indexFile, err := reopenMapped(fm.indexPath, fm.capacity)
		if err != nil {
			writableFile.Close()
			return err
		}
		fm.writableFile = writableFile
		fm.indexFile = indexFile
	} else {
		fm.writableFile, fm.indexFile = fm.indexFile, fm.writableFile
	}

	return nil
}

func (fm *fileManager) Close() error {
	err := fm.writableFile.Close()
	if ierr := fm.indexFile.Close(); err == nil {
		err = ierr
	}
	return err
}
