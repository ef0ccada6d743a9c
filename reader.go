package seqindex

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Reader provides read-only access to a quiescent index file, independent
// of any live Writer. It never takes the writer's mutex and never
// consults an acceleration map, so it is safe to use from a separate
// process or a separate goroutine against a snapshot on disk, at the cost
// of always linear-scanning.
type Reader struct {
	mem            []byte
	sectorSize     int
	positionOffset int
}

// OpenReader loads path into memory for read-only lookups. capacity and
// sectorSize must match the values the writer that produced the file was
// opened with; a mismatched capacity is reported as SizeMismatch.
func OpenReader(path string, capacity int64, sectorSize int) (*Reader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("seqindex: stat index file: %w", err)
	}
	if info.Size() != capacity {
		return nil, &IndexError{Kind: SizeMismatch, DiskCapacity: info.Size(), MemoryCapacity: capacity}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seqindex: read index file: %w", err)
	}
	return &Reader{
		mem:            data,
		sectorSize:     sectorSize,
		positionOffset: int(positionTableOffset(capacity, sectorSize)),
	}, nil
}

// Lookup scans the sequence-number region for sessionID's last known
// sequence number.
func (r *Reader) Lookup(sessionID uint64) (uint32, bool) {
	found := false
	var seq uint32
	r.Iterate(func(sid uint64, s uint32) bool {
		if sid == sessionID {
			seq, found = s, true
			return false
		}
		return true
	})
	return seq, found
}

// Iterate calls fn for every session with a slot, in table order, stopping
// early if fn returns false.
func (r *Reader) Iterate(fn func(sessionID uint64, sequenceNumber uint32) bool) {
	region := r.mem[:r.positionOffset]
	pos := HeaderSize
	for {
		offset, ok := claimOffset(pos, SessionRecordSize, r.sectorSize, len(region))
		if !ok {
			return
		}
		sid := binary.LittleEndian.Uint64(region[offset+sessionIDOffset:])
		seq := binary.LittleEndian.Uint32(region[offset+sequenceNumberOffset8:])
		if sid == 0 && seq == 0 {
			return
		}
		if !fn(sid, seq) {
			return
		}
		pos = offset + SessionRecordSize
	}
}

// ReadLastPosition calls consumer for every session with a position slot,
// in table order.
func (r *Reader) ReadLastPosition(consumer func(transportSessionID int32, recordingID int64, position int64)) {
	region := r.mem[r.positionOffset:]
	pos := 0
	for {
		offset, ok := claimOffset(pos, PositionRecordSize, r.sectorSize, len(region))
		if !ok {
			return
		}
		tid := int32(binary.LittleEndian.Uint32(region[offset+transportSessionIDOffset:]))
		rid := int64(binary.LittleEndian.Uint64(region[offset+recordingIDOffset:]))
		if tid == 0 && rid == 0 {
			return
		}
		position := int64(binary.LittleEndian.Uint64(region[offset+positionFieldOffset:]))
		consumer(tid, rid, position)
		pos = offset + PositionRecordSize
	}
}
