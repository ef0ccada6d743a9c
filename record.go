package seqindex

import (
	"encoding/binary"
	"sync"
)

const (
	sessionIDOffset       = 0
	sequenceNumberOffset8 = 8
)

// RecordTable is Component B: a dense, linearly-probed table mapping
// session_id to sequence_number, backed by a sector-framed region that
// starts with the file-level schema header.
type RecordTable struct {
	mu      sync.Mutex
	buf     []byte
	framer  *SectorFramer
	accel   map[uint64]int32
	errSink ErrorHandler
}

func newRecordTable(buf []byte, sectorSize int, errSink ErrorHandler) *RecordTable {
	return &RecordTable{
		buf:     buf,
		framer:  NewSectorFramer(buf, sectorSize, errSink, 0, "sequence-number-index"),
		accel:   make(map[uint64]int32),
		errSink: errSink,
	}
}

// Set records seq as the last known sequence number for sessionID,
// creating a new slot if one doesn't exist yet. It returns ErrOutOfSpace
// (after reporting IndexFull) once the table has no empty slot left.
func (t *RecordTable) Set(sessionID uint64, seq uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if offset, ok := t.accel[sessionID]; ok {
		storeUint32Release(t.buf, int(offset)+sequenceNumberOffset8, seq)
		return nil
	}

	pos := HeaderSize
	for {
		offset, err := t.framer.Claim(pos, SessionRecordSize)
		if err != nil {
			t.errSink.HandleError(&IndexError{Kind: IndexFull, SessionID: sessionID})
			return ErrOutOfSpace
		}

		sid := binary.LittleEndian.Uint64(t.buf[offset+sessionIDOffset:])
		seqAtSlot := loadUint32Acquire(t.buf, offset+sequenceNumberOffset8)

		switch {
		case sid == 0 && seqAtSlot == 0:
			binary.LittleEndian.PutUint64(t.buf[offset+sessionIDOffset:], sessionID)
			storeUint32Release(t.buf, offset+sequenceNumberOffset8, seq)
			t.accel[sessionID] = int32(offset)
			return nil
		case sid == sessionID:
			storeUint32Release(t.buf, offset+sequenceNumberOffset8, seq)
			t.accel[sessionID] = int32(offset)
			return nil
		}

		pos = offset + SessionRecordSize
	}
}

// Get returns the last known sequence number for sessionID, if any slot
// has been created for it.
func (t *RecordTable) Get(sessionID uint64) (uint32, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if offset, ok := t.accel[sessionID]; ok {
		return loadUint32Acquire(t.buf, int(offset)+sequenceNumberOffset8), true
	}

	pos := HeaderSize
	for {
		offset, err := t.framer.Claim(pos, SessionRecordSize)
		if err != nil {
			return 0, false
		}

		sid := binary.LittleEndian.Uint64(t.buf[offset+sessionIDOffset:])
		seqAtSlot := loadUint32Acquire(t.buf, offset+sequenceNumberOffset8)

		if sid == 0 && seqAtSlot == 0 {
			return 0, false
		}
		if sid == sessionID {
			t.accel[sessionID] = int32(offset)
			return seqAtSlot, true
		}

		pos = offset + SessionRecordSize
	}
}

// ResetOne zeroes the sequence number for a single session, creating its
// slot if it doesn't exist yet, without disturbing any other session.
func (t *RecordTable) ResetOne(sessionID uint64) error {
	return t.Set(sessionID, 0)
}

// ResetAll wipes the entire sequence-number region, including every
// session's slot and the acceleration map, and rewrites the schema header.
func (t *RecordTable) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.buf {
		t.buf[i] = 0
	}
	WriteBlankHeader(t.buf)
	t.accel = make(map[uint64]int32)
}

// sessionCount reports how many sessions currently have a slot, for Stats.
func (t *RecordTable) sessionCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos := HeaderSize
	n := 0
	for {
		offset, err := t.framer.Claim(pos, SessionRecordSize)
		if err != nil {
			return n
		}
		sid := binary.LittleEndian.Uint64(t.buf[offset+sessionIDOffset:])
		seqAtSlot := loadUint32Acquire(t.buf, offset+sequenceNumberOffset8)
		if sid == 0 && seqAtSlot == 0 {
			return n
		}
		n++
		pos = offset + SessionRecordSize
	}
}
