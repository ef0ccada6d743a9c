package seqindex

import (
	"encoding/binary"
	"hash/crc32"
)

// SectorFramer divides a byte region into fixed-size sectors, each closed
// by a CRC-32 trailer over its payload. It is Component A of the index:
// every other table claims slots through it rather than addressing buf
// directly, so record placement never straddles a sector boundary.
type SectorFramer struct {
	buf        []byte
	sectorSize int
	errSink    ErrorHandler
	baseOffset int
	name       string
}

// NewSectorFramer frames buf. baseOffset is added to reported sector
// offsets so errors read in absolute file coordinates even when buf is a
// sub-slice (e.g. the position region past the sequence-number region).
func NewSectorFramer(buf []byte, sectorSize int, errSink ErrorHandler, baseOffset int, name string) *SectorFramer {
	return &SectorFramer{
		buf:        buf,
		sectorSize: sectorSize,
		errSink:    errSink,
		baseOffset: baseOffset,
		name:       name,
	}
}

// Claim returns the first offset at or after start where a record of
// recordSize bytes fits without crossing a sector's checksum trailer. It
// reports ErrOutOfSpace once the region is exhausted.
func (f *SectorFramer) Claim(start, recordSize int) (int, error) {
	offset, ok := claimOffset(start, recordSize, f.sectorSize, len(f.buf))
	if !ok {
		return 0, ErrOutOfSpace
	}
	return offset, nil
}

// UpdateChecksums recomputes every sector's trailer from its current
// payload. Called once per flush, right before the in-memory buffer is
// copied out to the writable mapped file.
func (f *SectorFramer) UpdateChecksums() {
	for sectorStart := 0; sectorStart+f.sectorSize <= len(f.buf); sectorStart += f.sectorSize {
		trailer := sectorStart + f.sectorSize - ChecksumTrailerSize
		payload := f.buf[sectorStart:trailer]
		binary.LittleEndian.PutUint32(f.buf[trailer:], crc32.ChecksumIEEE(payload))
	}
}

// ValidateChecksums verifies every sector's trailer against its payload.
// A mismatched sector is reported as ChecksumFailed and its payload is
// zeroed and re-stamped, so the region as a whole is left internally
// consistent: the lost sector reads back as empty slots rather than
// garbage. Sectors that already match are untouched.
func (f *SectorFramer) ValidateChecksums() {
	for sectorStart := 0; sectorStart+f.sectorSize <= len(f.buf); sectorStart += f.sectorSize {
		trailer := sectorStart + f.sectorSize - ChecksumTrailerSize
		payload := f.buf[sectorStart:trailer]
		want := binary.LittleEndian.Uint32(f.buf[trailer:])
		got := crc32.ChecksumIEEE(payload)
		if got == want {
			continue
		}
		f.errSink.HandleError(&IndexError{
			Kind:         ChecksumFailed,
			Name:         f.name,
			SectorOffset: f.baseOffset + sectorStart,
		})
		for i := range payload {
			payload[i] = 0
		}
		binary.LittleEndian.PutUint32(f.buf[trailer:], crc32.ChecksumIEEE(payload))
	}
}
