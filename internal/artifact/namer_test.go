package artifact

import (
	"testing"
	"time"
)

func TestNewIDShape(t *testing.T) {
	id := NewID(time.Now())
	if len(id) != 32 {
		t.Fatalf("id length = %d, want 32", len(id))
	}
	for _, c := range id {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Fatalf("id %q contains non-hex character %q", id, c)
		}
	}
}

func TestNewIDDistinctAcrossTicks(t *testing.T) {
	base := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	a := NewID(base)
	b := NewID(base.Add(10 * time.Millisecond))
	c := NewID(base.Add(time.Second))

	if a == b {
		t.Error("ids for adjacent hundredth-second ticks should differ")
	}
	if a == c || b == c {
		t.Error("ids one second apart should differ")
	}
}

func TestNewIDDeterministicWithinTick(t *testing.T) {
	base := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	if NewID(base) != NewID(base.Add(time.Millisecond)) {
		t.Error("ids within the same hundredth of a second should match")
	}
}
