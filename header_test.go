package seqindex

import "testing"

func TestMessageHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := MessageHeader{SchemaID: 1, TemplateID: 2, BlockLength: 12, Version: 1, ChecksumAlg: 1}
	buf := make([]byte, HeaderSize)
	h.Encode(buf)

	var decoded MessageHeader
	if err := decoded.Decode(buf); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != h {
		t.Fatalf("decoded %+v, want %+v", decoded, h)
	}
}

func TestWriteBlankHeaderValidates(t *testing.T) {
	buf := make([]byte, HeaderSize)
	WriteBlankHeader(buf)

	var h MessageHeader
	if err := h.Decode(buf); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !validateHeader(h) {
		t.Fatalf("expected blank header to validate")
	}
}

func TestFileInitializedDetectsZeroedBuffer(t *testing.T) {
	sectorSize := 64
	buf := make([]byte, sectorSize*2)
	if fileInitialized(buf, sectorSize) {
		t.Fatalf("expected a freshly-zeroed buffer to be uninitialised")
	}

	WriteBlankHeader(buf)
	if !fileInitialized(buf, sectorSize) {
		t.Fatalf("expected a buffer with a written header to be initialised")
	}
}

func TestFixHeaderDecoderMsgSeqNum(t *testing.T) {
	body := fixHeaderBytes(123)
	seq, ok := (FixHeaderDecoder{}).MsgSeqNum(body)
	if !ok || seq != 123 {
		t.Fatalf("MsgSeqNum = %d, %v, want 123, true", seq, ok)
	}

	_, ok = (FixHeaderDecoder{}).MsgSeqNum([]byte("8=FIX.4.2\x01"))
	if ok {
		t.Fatalf("expected no MsgSeqNum in header without tag 34")
	}
}
