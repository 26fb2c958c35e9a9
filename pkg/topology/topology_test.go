package topology

import "testing"

func TestIsReplicated(t *testing.T) {
	if !IsReplicated(2) {
		t.Error("x2 should be replicated")
	}
	if IsReplicated(3) {
		t.Error("x3 should not be replicated")
	}
}

func TestHomeSite(t *testing.T) {
	cases := map[VarID]SiteID{1: 2, 3: 4, 11: 2, 19: 10}
	for v, want := range cases {
		if got := HomeSite(v); got != want {
			t.Errorf("HomeSite(x%d) = %d, want %d", v, got, want)
		}
	}
}

func TestHomeSitePanicsOnReplicated(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic calling HomeSite on a replicated variable")
		}
	}()
	HomeSite(2)
}

func TestSites(t *testing.T) {
	if got := Sites(3); len(got) != 1 || got[0] != HomeSite(3) {
		t.Errorf("Sites(x3) = %v, want single home site", got)
	}
	got := Sites(2)
	if len(got) != NumSites {
		t.Fatalf("Sites(x2) has %d entries, want %d", len(got), NumSites)
	}
	for i, id := range got {
		if int(id) != i+1 {
			t.Errorf("Sites(x2)[%d] = %d, want %d", i, id, i+1)
		}
	}
}

func TestGenesis(t *testing.T) {
	if Genesis(7) != 70 {
		t.Errorf("Genesis(x7) = %d, want 70", Genesis(7))
	}
}

func TestParseVar(t *testing.T) {
	v, err := ParseVar("x9")
	if err != nil || v != 9 {
		t.Fatalf("ParseVar(x9) = %v, %v", v, err)
	}
	if _, err := ParseVar("x21"); err == nil {
		t.Error("expected out-of-range error for x21")
	}
	if _, err := ParseVar("y3"); err == nil {
		t.Error("expected error for malformed variable token")
	}
}

func TestName(t *testing.T) {
	if VarID(5).Name() != "x5" {
		t.Errorf("Name() = %q, want x5", VarID(5).Name())
	}
}
