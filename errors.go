package seqindex

import (
	"errors"
	"fmt"
)

// ErrOutOfSpace is returned by a table Set/IndexedUpTo call when the region
// has no empty slot left for a new key. The same condition is also reported
// to the ErrorHandler as IndexFull before this is returned.
var ErrOutOfSpace = errors.New("seqindex: record table full")

// ErrInvalidOption is returned by Open when IndexOptions is missing a
// required field or carries a self-contradictory value.
var ErrInvalidOption = errors.New("seqindex: invalid option")

// ErrShortBuffer is returned by decoders given fewer bytes than their
// fixed-width encoding requires.
var ErrShortBuffer = errors.New("seqindex: short buffer")

// ErrorKind classifies an IndexError. Every kind except SizeMismatch is
// locally recovered by the component that reports it (SchemaMismatch by
// reinitialising the buffer blank); the writer keeps running afterward.
// SizeMismatch is returned from Open or OpenReader instead.
type ErrorKind int

const (
	ChecksumFailed ErrorKind = iota
	IndexFull
	RenameFailed
	SchemaMismatch
	SizeMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case ChecksumFailed:
		return "CHECKSUM_FAILED"
	case IndexFull:
		return "INDEX_FULL"
	case RenameFailed:
		return "RENAME_FAILED"
	case SchemaMismatch:
		return "SCHEMA_MISMATCH"
	case SizeMismatch:
		return "SIZE_MISMATCH"
	default:
		return "UNKNOWN"
	}
}

// IndexError carries kind-specific detail about a locally-handled failure.
// Only the fields relevant to Kind are populated.
type IndexError struct {
	Kind ErrorKind

	SectorOffset int    // ChecksumFailed
	Name         string // ChecksumFailed: which region ("sequence-number-index" / "indexed-position")
	SessionID    uint64 // IndexFull

	Src, Dst string // RenameFailed

	Found, Expected uint16 // SchemaMismatch

	DiskCapacity, MemoryCapacity int64 // SizeMismatch
}

func (e *IndexError) Error() string {
	switch e.Kind {
	case ChecksumFailed:
		return fmt.Sprintf("seqindex: checksum failed in %s region at sector offset %d", e.Name, e.SectorOffset)
	case IndexFull:
		return fmt.Sprintf("seqindex: index full, could not place session %d", e.SessionID)
	case RenameFailed:
		return fmt.Sprintf("seqindex: rename %s -> %s failed", e.Src, e.Dst)
	case SchemaMismatch:
		return fmt.Sprintf("seqindex: schema mismatch, found %d expected %d", e.Found, e.Expected)
	case SizeMismatch:
		return fmt.Sprintf("seqindex: size mismatch, disk capacity %d memory capacity %d", e.DiskCapacity, e.MemoryCapacity)
	default:
		return "seqindex: index error"
	}
}

// ErrorHandler receives index errors as they occur. Implementations must
// not panic or block the writer for long; HandleError is called on the
// writer's own goroutine.
type ErrorHandler interface {
	HandleError(err *IndexError)
}

// DiscardErrorHandler drops every error. Useful as a safe default when the
// caller hasn't wired a real sink yet.
type DiscardErrorHandler struct{}

func NewDiscardErrorHandler() DiscardErrorHandler { return DiscardErrorHandler{} }

func (DiscardErrorHandler) HandleError(*IndexError) {}

// CollectingErrorHandler accumulates every error it sees, for use in tests.
type CollectingErrorHandler struct {
	Errors []*IndexError
}

func NewCollectingErrorHandler() *CollectingErrorHandler {
	return &CollectingErrorHandler{}
}

func (c *CollectingErrorHandler) HandleError(err *IndexError) {
	c.Errors = append(c.Errors, err)
}
