package seqindex

import "testing"

func TestSectorFramerClaimSkipsTrailer(t *testing.T) {
	sectorSize := 32
	buf := make([]byte, sectorSize*2)
	framer := NewSectorFramer(buf, sectorSize, NewDiscardErrorHandler(), 0, "test")

	offset, err := framer.Claim(sectorSize-10, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offset < sectorSize {
		t.Fatalf("expected claim to skip into the next sector, got offset %d", offset)
	}
}

func TestSectorFramerOutOfSpace(t *testing.T) {
	sectorSize := 32
	buf := make([]byte, sectorSize)
	framer := NewSectorFramer(buf, sectorSize, NewDiscardErrorHandler(), 0, "test")

	if _, err := framer.Claim(sectorSize-4, 8); err != ErrOutOfSpace {
		t.Fatalf("expected ErrOutOfSpace, got %v", err)
	}
}

func TestSectorFramerChecksumRoundTrip(t *testing.T) {
	sectorSize := 64
	buf := make([]byte, sectorSize*2)
	for i := range buf {
		buf[i] = byte(i)
	}
	// don't corrupt trailers with payload garbage
	for s := 0; s+sectorSize <= len(buf); s += sectorSize {
		for i := s + sectorSize - ChecksumTrailerSize; i < s+sectorSize; i++ {
			buf[i] = 0
		}
	}

	framer := NewSectorFramer(buf, sectorSize, NewDiscardErrorHandler(), 0, "test")
	framer.UpdateChecksums()
	framer.ValidateChecksums() // should be a no-op since checksums are fresh

	for i, b := range buf {
		if i < sectorSize-ChecksumTrailerSize && b != byte(i) {
			t.Fatalf("ValidateChecksums mutated untouched payload at %d", i)
		}
	}
}

func TestSectorFramerChecksumMismatchIsZeroedAndReported(t *testing.T) {
	sectorSize := 64
	buf := make([]byte, sectorSize)
	for i := 0; i < sectorSize-ChecksumTrailerSize; i++ {
		buf[i] = byte(i + 1)
	}
	framer := NewSectorFramer(buf, sectorSize, NewDiscardErrorHandler(), 0, "test")
	framer.UpdateChecksums()

	buf[0] ^= 0xFF // corrupt payload without refreshing the trailer

	collector := NewCollectingErrorHandler()
	framer.errSink = collector
	framer.ValidateChecksums()

	if len(collector.Errors) != 1 || collector.Errors[0].Kind != ChecksumFailed {
		t.Fatalf("expected one ChecksumFailed error, got %v", collector.Errors)
	}
	for i := 0; i < sectorSize-ChecksumTrailerSize; i++ {
		if buf[i] != 0 {
			t.Fatalf("expected corrupted sector payload to be zeroed, byte %d = %d", i, buf[i])
		}
	}
}
