package seqindex

import "testing"

func newTestRecordTable(t *testing.T, regionLen, sectorSize int) *RecordTable {
	t.Helper()
	buf := make([]byte, regionLen)
	WriteBlankHeader(buf)
	return newRecordTable(buf, sectorSize, NewDiscardErrorHandler())
}

func TestRecordTableSetGet(t *testing.T) {
	rt := newTestRecordTable(t, 4096, 4096)

	if _, ok := rt.Get(42); ok {
		t.Fatalf("expected no record for unset session")
	}

	if err := rt.Set(42, 7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	seq, ok := rt.Get(42)
	if !ok || seq != 7 {
		t.Fatalf("Get = %d, %v, want 7, true", seq, ok)
	}

	if err := rt.Set(42, 8); err != nil {
		t.Fatalf("Set (update): %v", err)
	}
	seq, ok = rt.Get(42)
	if !ok || seq != 8 {
		t.Fatalf("Get after update = %d, %v, want 8, true", seq, ok)
	}
}

func TestRecordTableAccelerationMapRebuildsLazily(t *testing.T) {
	rt := newTestRecordTable(t, 4096, 4096)
	if err := rt.Set(1, 10); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// simulate a fresh process: accel map empty, buffer populated
	rt.accel = make(map[uint64]int32)

	seq, ok := rt.Get(1)
	if !ok || seq != 10 {
		t.Fatalf("Get after accel reset = %d, %v", seq, ok)
	}
	if _, ok := rt.accel[1]; !ok {
		t.Fatalf("expected Get to repopulate the acceleration map")
	}
}

func TestRecordTableResetOnePreservesOthers(t *testing.T) {
	rt := newTestRecordTable(t, 4096, 4096)
	if err := rt.Set(1, 10); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := rt.Set(2, 20); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := rt.ResetOne(1); err != nil {
		t.Fatalf("ResetOne: %v", err)
	}

	seq, ok := rt.Get(1)
	if !ok || seq != 0 {
		t.Fatalf("Get(1) after reset = %d, %v, want 0, true", seq, ok)
	}
	seq, ok = rt.Get(2)
	if !ok || seq != 20 {
		t.Fatalf("Get(2) after resetting session 1 = %d, %v, want 20, true", seq, ok)
	}
}

func TestRecordTableResetAllWipesEverything(t *testing.T) {
	rt := newTestRecordTable(t, 4096, 4096)
	_ = rt.Set(1, 10)
	_ = rt.Set(2, 20)

	rt.ResetAll()

	if _, ok := rt.Get(1); ok {
		t.Fatalf("expected session 1 gone after ResetAll")
	}
	if _, ok := rt.Get(2); ok {
		t.Fatalf("expected session 2 gone after ResetAll")
	}
	if err := rt.Set(3, 1); err != nil {
		t.Fatalf("Set after ResetAll: %v", err)
	}
}

func TestRecordTableIndexFull(t *testing.T) {
	sectorSize := 32 // one sector holds (32-4-HeaderSize)/12 ~= 1 record after header
	rt := newTestRecordTable(t, sectorSize, sectorSize)

	collector := NewCollectingErrorHandler()
	rt.errSink = collector
	rt.framer.errSink = collector

	if err := rt.Set(1, 1); err != nil {
		t.Fatalf("first Set should fit: %v", err)
	}
	if err := rt.Set(2, 1); err != ErrOutOfSpace {
		t.Fatalf("expected ErrOutOfSpace, got %v", err)
	}
	if len(collector.Errors) != 1 || collector.Errors[0].Kind != IndexFull {
		t.Fatalf("expected one IndexFull error, got %v", collector.Errors)
	}
}
