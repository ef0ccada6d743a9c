package seqindex

import (
	"sync/atomic"
)

const uninitialisedRoll int64 = -1

// WriterStats is a read-only snapshot for diagnostics; it carries no
// durability meaning of its own (compare Writer.PassingPlace, which names
// an on-disk path used during crash recovery).
type WriterStats struct {
	SessionsTracked int
	FlushCount      uint64
	LastFlushTimeMs int64
}

// Writer is the single-writer engine that consumes fragments, mutates the
// in-memory buffer, and cooperatively flushes it to disk on a DoWork tick.
// It assumes a single calling goroutine for
// OnFragment/DoWork/ResetSequenceNumbers/Close; it does not take an
// internal lock to serialize those against each other.
type Writer struct {
	mem       []byte
	fm        *fileManager
	records   *RecordTable
	positions *PositionTable
	errSink   ErrorHandler
	clock     Clock

	streamID       int32
	flushTimeoutMs int64
	lastFlushTime  int64
	hasUnsaved     bool
	flushCount     uint64

	nextRollPosition int64
	recordingLookup  RecordingIDLookup

	closed atomic.Bool
}

// OnFragment dispatches a single ingested fragment, mirroring
// SequenceNumberIndexWriter.onFragment: fragments on a foreign stream or
// missing the begin flag are ignored, then the decoded template drives
// either a sequence-number update, a full reset, or a per-session reset.
func (w *Writer) OnFragment(buf []byte, offset, length int, header FragmentHeader) {
	if header.StreamID != w.streamID {
		return
	}
	if header.Flags&FlagBegin == 0 {
		return
	}
	if offset+HeaderSize > len(buf) {
		return
	}

	var msgHeader MessageHeader
	if err := msgHeader.Decode(buf[offset:]); err != nil {
		return
	}
	body := buf[offset+HeaderSize:]

	switch msgHeader.TemplateID {
	case TemplateFixMessage:
		var view FixMessageView
		if err := view.Decode(body, int(msgHeader.BlockLength)); err != nil {
			break
		}
		if view.Status() != StatusOK {
			break
		}
		if seq, ok := (FixHeaderDecoder{}).MsgSeqNum(view.FixHeaderBytes()); ok {
			if err := w.records.Set(view.Session(), uint32(seq)); err == nil {
				w.hasUnsaved = true
			}
		}
	case TemplateResetSessionIds:
		w.ResetSequenceNumbers()
	case TemplateResetSequenceNumber:
		var view ResetSequenceNumberView
		if err := view.Decode(body); err == nil {
			if err := w.records.ResetOne(view.Session()); err == nil {
				w.hasUnsaved = true
			}
		}
	}

	w.checkTermRoll(len(buf), header.Position, length, offset)

	recordingID := w.recordingLookup.GetRecordingID(header.SessionID)
	_ = w.positions.IndexedUpTo(header.SessionID, recordingID, header.Position)
}

// checkTermRoll tracks where the current term ends: the first fragment
// seen establishes the roll position from its start-of-message position
// and the fragment's own offset within its containing buffer; once a later
// fragment's end position crosses that line a term has rolled and the
// writer eagerly flushes, since the archival log segment behind the old
// term may be about to be reclaimed.
func (w *Writer) checkTermRoll(termBufferLength int, endPosition int64, length int, offset int) {
	if w.nextRollPosition == uninitialisedRoll {
		startPosition := endPosition - int64(length+dataHeaderLength)
		w.nextRollPosition = startPosition + int64(termBufferLength) - int64(offset)
		return
	}
	if endPosition > w.nextRollPosition {
		w.nextRollPosition += int64(termBufferLength)
		w.updateFile()
	}
}

// DoWork performs one cooperative scheduling tick: if there's unflushed
// state and the flush timeout has elapsed, it flushes and returns 1 (work
// done), otherwise 0, the same shape as the original's doWork() return.
func (w *Writer) DoWork() int {
	if !w.hasUnsaved {
		return 0
	}
	now := w.clock.NowMillis()
	if w.lastFlushTime+w.flushTimeoutMs >= now {
		return 0
	}
	w.updateFile()
	return 1
}

// updateFile is the two-phase flush: stamp checksums and copy the buffer
// out (saveFile), then flip the three files so the copy becomes canonical.
func (w *Writer) updateFile() {
	w.records.framer.UpdateChecksums()
	w.positions.framer.UpdateChecksums()

	if err := w.fm.saveFile(w.mem); err != nil {
		return
	}
	if err := w.fm.Flip(); err != nil {
		return
	}

	w.hasUnsaved = false
	w.lastFlushTime = w.clock.NowMillis()
	w.flushCount++
}

// ResetSequenceNumbers wipes every session's last known sequence number,
// the response to a TemplateResetSessionIds fragment.
func (w *Writer) ResetSequenceNumbers() {
	w.records.ResetAll()
	w.hasUnsaved = true
}

// ReadLastPosition replays the position table, for resuming an archival
// scan after a restart.
func (w *Writer) ReadLastPosition(consumer func(transportSessionID int32, recordingID int64, position int64)) {
	w.positions.ReadLastPosition(consumer)
}

// Lookup returns the last known sequence number for a session.
func (w *Writer) Lookup(sessionID uint64) (uint32, bool) {
	return w.records.Get(sessionID)
}

// PassingPlace reports the on-disk path used as the intermediate step of
// the flip, for diagnostics.
func (w *Writer) PassingPlace() string { return w.fm.passingPath }

// IsOpen reports whether Close has been called yet.
func (w *Writer) IsOpen() bool { return !w.closed.Load() }

// Stats returns a read-only snapshot of writer activity.
func (w *Writer) Stats() WriterStats {
	return WriterStats{
		SessionsTracked: w.records.sessionCount(),
		FlushCount:      w.flushCount,
		LastFlushTimeMs: w.lastFlushTime,
	}
}

// Close flushes any unsaved state and releases the mapped files. A second
// Close returns nil. After Close, every method other than Close and IsOpen
// is undefined behaviour.
func (w *Writer) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	if w.hasUnsaved {
		w.updateFile()
	}
	return w.fm.Close()
}
