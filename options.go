package seqindex

// IndexOptions configures Open. Fields that affect on-disk layout
// (FileCapacity, SectorSize, StreamID, IndexFileStateFlushTimeoutInMs) are
// persisted by the config guard and will be overridden by whatever was
// recorded on the first open of a given path.
type IndexOptions struct {
	// FileCapacity is the total size in bytes of the index file. Must be
	// a positive multiple of SectorSize.
	FileCapacity int64

	// SectorSize is the width of one checksummed sector. Defaults to
	// DefaultSectorSize.
	SectorSize int

	// StreamID restricts the writer to fragments carrying this transport
	// stream id; others are ignored by OnFragment.
	StreamID int32

	// IndexFileStateFlushTimeoutInMs is the minimum time between
	// cooperative flushes triggered by DoWork.
	IndexFileStateFlushTimeoutInMs int64

	// ErrorHandler receives every locally-recovered error. Defaults to a
	// discarding handler if nil.
	ErrorHandler ErrorHandler

	// Clock supplies wall-clock time for the flush-timeout check.
	// Defaults to SystemClock if nil.
	Clock Clock

	// RecordingIDLookup resolves the archival recording id for a
	// transport session. Required.
	RecordingIDLookup RecordingIDLookup
}

// DefaultOptions returns sensible defaults for every field except
// RecordingIDLookup, which the caller must always supply.
func DefaultOptions() IndexOptions {
	return IndexOptions{
		FileCapacity:                    4 * 1024 * 1024,
		SectorSize:                      DefaultSectorSize,
		StreamID:                        1,
		IndexFileStateFlushTimeoutInMs:  1000,
		ErrorHandler:                    NewDiscardErrorHandler(),
		Clock:                           SystemClock{},
	}
}

// validateOptions checks the construction-time invariants: capacity must
// be a positive, integral number of sectors, and a sector must be able to
// hold at least one record plus its checksum trailer.
func validateOptions(opts IndexOptions) error {
	if opts.SectorSize <= ChecksumTrailerSize {
		return ErrInvalidOption
	}
	if opts.FileCapacity <= 0 || opts.FileCapacity%int64(opts.SectorSize) != 0 {
		return ErrInvalidOption
	}
	if opts.SectorSize-ChecksumTrailerSize < SessionRecordSize {
		return ErrInvalidOption
	}
	if opts.RecordingIDLookup == nil {
		return ErrInvalidOption
	}
	return nil
}
