package seqindex

import "fmt"

// Open is the single entry point for the Writer Engine: it verifies the
// layout guard, recovers the on-disk state per the passing-place
// procedure, and wires up the record and position tables over the
// recovered buffer.
func Open(path string, opts IndexOptions) (*Writer, error) {
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = NewDiscardErrorHandler()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.SectorSize == 0 {
		opts.SectorSize = DefaultSectorSize
	}

	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	if err := verifyOrWriteLayout(path, &opts); err != nil {
		return nil, fmt.Errorf("seqindex: verify layout: %w", err)
	}
	// The layout guard may have overridden FileCapacity/SectorSize from a
	// prior run; re-validate the effective values before touching disk.
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	fm, mem, err := openFileManager(path, opts.FileCapacity, opts.SectorSize, opts.ErrorHandler)
	if err != nil {
		return nil, err
	}

	posOffset := int(positionTableOffset(opts.FileCapacity, opts.SectorSize))
	records := newRecordTable(mem[:posOffset], opts.SectorSize, opts.ErrorHandler)
	positions := newPositionTable(mem[posOffset:], opts.SectorSize, opts.ErrorHandler, posOffset)

	w := &Writer{
		mem:              mem,
		fm:               fm,
		records:          records,
		positions:        positions,
		errSink:          opts.ErrorHandler,
		clock:            opts.Clock,
		streamID:         opts.StreamID,
		flushTimeoutMs:   opts.IndexFileStateFlushTimeoutInMs,
		lastFlushTime:    opts.Clock.NowMillis(),
		nextRollPosition: uninitialisedRoll,
		recordingLookup:  opts.RecordingIDLookup,
	}
	return w, nil
}
