package txn

import (
	"testing"

	"github.com/ssikv/ssikv/pkg/topology"
)

func TestNewIsActiveAndEmpty(t *testing.T) {
	tr := New("T1", 5)
	if tr.State != Active {
		t.Errorf("new transaction state = %v, want Active", tr.State)
	}
	if tr.StartTick != 5 {
		t.Errorf("StartTick = %d, want 5", tr.StartTick)
	}
	if tr.IsWaiting() {
		t.Error("fresh transaction should not be waiting")
	}
}

func TestBufferWriteAndOwnWrite(t *testing.T) {
	tr := New("T1", 0)
	tr.BufferWrite(2, 99, 3, []topology.SiteID{1, 2})

	val, ok := tr.OwnWrite(2)
	if !ok || val != 99 {
		t.Fatalf("OwnWrite(x2) = %d, %v, want 99, true", val, ok)
	}
	if _, ok := tr.OwnWrite(4); ok {
		t.Error("OwnWrite(x4) should be absent")
	}
	if _, ok := tr.SitesWritten[1]; !ok {
		t.Error("site 1 should be recorded as written")
	}

	tr.BufferWrite(2, 7, 4, []topology.SiteID{3})
	val, _ = tr.OwnWrite(2)
	if val != 7 {
		t.Errorf("second buffered write should overwrite: got %d, want 7", val)
	}
}

func TestRecordReadAndIsWaiting(t *testing.T) {
	tr := New("T1", 0)
	tr.RecordRead(ReadRecord{Var: 2, Value: 20, ReadTick: 1, Writer: "genesis"})
	if len(tr.Reads) != 1 {
		t.Fatalf("expected one recorded read, got %d", len(tr.Reads))
	}

	tr.BlockedOn = 4
	if !tr.IsWaiting() {
		t.Error("transaction blocked on a variable should report waiting")
	}
	tr.State = Committed
	if tr.IsWaiting() {
		t.Error("a non-active transaction is never waiting")
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{Active: "active", Committed: "committed", Aborted: "aborted"}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
