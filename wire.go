package seqindex

import (
	"encoding/binary"
)

// Template ids identify the decoded payload following a MessageHeader on
// the ingest path.
const (
	TemplateFixMessage          uint16 = 1
	TemplateResetSessionIds     uint16 = 2
	TemplateResetSequenceNumber uint16 = 3
)

// FlagBegin marks a fragment as the first (and, for the small control
// messages this package decodes, only) fragment of a message.
const FlagBegin uint8 = 1

// dataHeaderLength is the width of the transport's own per-fragment header,
// used to locate the start of the current term when detecting a roll.
const dataHeaderLength = 32

// FragmentHeader is the transport envelope the Writer Engine receives
// alongside every fragment: which stream and session it came from, and
// where it sits in the archival log.
type FragmentHeader struct {
	StreamID  int32
	SessionID int32
	Position  int64
	Flags     uint8
}

// MessageStatus reports whether a decoded FIX message fragment is usable.
type MessageStatus uint8

const StatusOK MessageStatus = 0

// FixMessageView wraps the body of a TemplateFixMessage fragment.
type FixMessageView struct {
	status      MessageStatus
	session     uint64
	fixHeader   []byte
}

// Decode reads the fixed block (status uint8 + session uint64, 9 bytes,
// rounded up to blockLength) followed by the raw FIX header bytes.
func (v *FixMessageView) Decode(body []byte, blockLength int) error {
	const fixedBlock = 9
	if blockLength < fixedBlock || len(body) < blockLength {
		return ErrShortBuffer
	}
	v.status = MessageStatus(body[0])
	v.session = binary.LittleEndian.Uint64(body[1:9])
	v.fixHeader = body[blockLength:]
	return nil
}

func (v *FixMessageView) Status() MessageStatus { return v.status }
func (v *FixMessageView) Session() uint64       { return v.session }
func (v *FixMessageView) FixHeaderBytes() []byte { return v.fixHeader }

// ResetSequenceNumberView wraps the body of a TemplateResetSequenceNumber
// fragment: a single session to reset to sequence number zero.
type ResetSequenceNumberView struct {
	session uint64
}

func (v *ResetSequenceNumberView) Decode(body []byte) error {
	if len(body) < 8 {
		return ErrShortBuffer
	}
	v.session = binary.LittleEndian.Uint64(body[0:8])
	return nil
}

func (v *ResetSequenceNumberView) Session() uint64 { return v.session }

// FixHeaderDecoder pulls tag=value pairs out of a SOH-delimited FIX header.
// It is deliberately minimal: only MsgSeqNum (tag 34) is needed to drive
// the Writer Engine, and full tag-value parsing is out of scope.
type FixHeaderDecoder struct{}

const msgSeqNumTag = "34="

// MsgSeqNum scans body for tag 34 and returns its integer value.
func (FixHeaderDecoder) MsgSeqNum(body []byte) (int, bool) {
	const soh = 0x01
	start := 0
	for start < len(body) {
		end := start
		for end < len(body) && body[end] != soh {
			end++
		}
		field := body[start:end]
		if len(field) > len(msgSeqNumTag) && string(field[:len(msgSeqNumTag)]) == msgSeqNumTag {
			value, ok := parseUint(field[len(msgSeqNumTag):])
			if ok {
				return value, true
			}
		}
		start = end + 1
	}
	return 0, false
}

func parseUint(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// RecordingIDLookup resolves which archival recording a transport session
// id's fragments are currently being written to, so the position table can
// store it alongside the position recorded for that transport session id.
type RecordingIDLookup interface {
	GetRecordingID(transportSessionID int32) int64
}
