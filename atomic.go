package seqindex

import (
	"sync/atomic"
	"unsafe"
)

// storeUint32Release and loadUint32Acquire give the sequence_number field a
// release/acquire pair so a reader scanning the mapped buffer concurrently
// with the writer never observes a torn 4-byte value. This assumes a
// little-endian CPU (amd64/arm64), the same assumption the slotcache
// reference package documents for its generation counter: atomic.Store/Load
// write/read native-endian words, and the wire format is little-endian too,
// so on a big-endian target this pairing would need a byte-swapping store.
func storeUint32Release(buf []byte, offset int, v uint32) {
	p := (*uint32)(unsafe.Pointer(&buf[offset]))
	atomic.StoreUint32(p, v)
}

func loadUint32Acquire(buf []byte, offset int) uint32 {
	p := (*uint32)(unsafe.Pointer(&buf[offset]))
	return atomic.LoadUint32(p)
}
