package seqindex

import (
	"encoding/binary"
	"sync"
)

const (
	transportSessionIDOffset = 0
	recordingIDOffset        = 4
	positionFieldOffset      = 12
)

// PositionTable is Component C: a dense, linearly-probed table mapping
// transport_session_id to the last archival (recording_id, position) the
// writer has indexed for it.
type PositionTable struct {
	mu      sync.Mutex
	buf     []byte
	framer  *SectorFramer
	accel   map[int32]int32
	errSink ErrorHandler
}

func newPositionTable(buf []byte, sectorSize int, errSink ErrorHandler, baseOffset int) *PositionTable {
	return &PositionTable{
		buf:     buf,
		framer:  NewSectorFramer(buf, sectorSize, errSink, baseOffset, "indexed-position"),
		accel:   make(map[int32]int32),
		errSink: errSink,
	}
}

// IndexedUpTo records that transportSessionID's fragments up to position in
// recordingID have been indexed, creating its slot if needed.
func (t *PositionTable) IndexedUpTo(transportSessionID int32, recordingID int64, position int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if offset, ok := t.accel[transportSessionID]; ok {
		t.writeRecord(int(offset), transportSessionID, recordingID, position)
		return nil
	}

	pos := 0
	for {
		offset, err := t.framer.Claim(pos, PositionRecordSize)
		if err != nil {
			t.errSink.HandleError(&IndexError{Kind: IndexFull, SessionID: uint64(uint32(transportSessionID))})
			return ErrOutOfSpace
		}

		tid := int32(binary.LittleEndian.Uint32(t.buf[offset+transportSessionIDOffset:]))
		rid := int64(binary.LittleEndian.Uint64(t.buf[offset+recordingIDOffset:]))

		switch {
		case tid == 0 && rid == 0:
			t.writeRecord(offset, transportSessionID, recordingID, position)
			t.accel[transportSessionID] = int32(offset)
			return nil
		case tid == transportSessionID:
			t.writeRecord(offset, transportSessionID, recordingID, position)
			t.accel[transportSessionID] = int32(offset)
			return nil
		}

		pos = offset + PositionRecordSize
	}
}

func (t *PositionTable) writeRecord(offset int, transportSessionID int32, recordingID int64, position int64) {
	binary.LittleEndian.PutUint32(t.buf[offset+transportSessionIDOffset:], uint32(transportSessionID))
	binary.LittleEndian.PutUint64(t.buf[offset+recordingIDOffset:], uint64(recordingID))
	binary.LittleEndian.PutUint64(t.buf[offset+positionFieldOffset:], uint64(position))
}

// ReadLastPosition calls consumer once for every session with a slot,
// in table order. Used at startup to recover the position an archival
// replay should resume from.
func (t *PositionTable) ReadLastPosition(consumer func(transportSessionID int32, recordingID int64, position int64)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos := 0
	for {
		offset, err := t.framer.Claim(pos, PositionRecordSize)
		if err != nil {
			return
		}
		tid := int32(binary.LittleEndian.Uint32(t.buf[offset+transportSessionIDOffset:]))
		rid := int64(binary.LittleEndian.Uint64(t.buf[offset+recordingIDOffset:]))
		if tid == 0 && rid == 0 {
			return
		}
		position := int64(binary.LittleEndian.Uint64(t.buf[offset+positionFieldOffset:]))
		consumer(tid, rid, position)
		pos = offset + PositionRecordSize
	}
}
