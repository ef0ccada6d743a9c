package seqindex

import "go.uber.org/zap"

// ZapErrorHandler routes IndexError values through a zap logger. Kinds that
// are locally recovered by the reporting component log at Warn; nothing
// here escalates to Error, since by the time HandleError is called the
// condition has already been handled.
type ZapErrorHandler struct {
	log *zap.SugaredLogger
}

// NewZapErrorHandler wraps logger. A nil logger falls back to zap's no-op
// logger so callers never need a nil check.
func NewZapErrorHandler(logger *zap.Logger) *ZapErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapErrorHandler{log: logger.Sugar()}
}

func (h *ZapErrorHandler) HandleError(err *IndexError) {
	switch err.Kind {
	case ChecksumFailed:
		h.log.Warnw("sector checksum failed", "region", err.Name, "sectorOffset", err.SectorOffset)
	case IndexFull:
		h.log.Warnw("record table full", "sessionID", err.SessionID)
	case RenameFailed:
		h.log.Warnw("flip rename failed", "src", err.Src, "dst", err.Dst)
	case SchemaMismatch:
		h.log.Warnw("schema mismatch, reinitialising blank", "found", err.Found, "expected", err.Expected)
	case SizeMismatch:
		h.log.Warnw("size mismatch", "diskCapacity", err.DiskCapacity, "memoryCapacity", err.MemoryCapacity)
	default:
		h.log.Warnw("index error", "kind", err.Kind.String())
	}
}
