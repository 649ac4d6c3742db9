package arena

import (
	"errors"
	"testing"
)

func TestArenaAllocate(t *testing.T) {
	a := New(10)

	r1, err := a.Allocate(4)
	if err != nil {
		t.Fatalf("Allocate(4): %v", err)
	}
	r2, err := a.Allocate(6)
	if err != nil {
		t.Fatalf("Allocate(6): %v", err)
	}

	if r1 != (Range{Offset: 0, Count: 4}) {
		t.Errorf("r1 = %+v", r1)
	}
	if r2.Offset != r1.End() || r2.End() != 10 {
		t.Errorf("r2 = %+v, want contiguous after r1", r2)
	}
	if a.Remaining() != 0 || a.Used() != 10 {
		t.Errorf("Used=%d Remaining=%d, want 10/0", a.Used(), a.Remaining())
	}
	if a.Utilization() != 1 {
		t.Errorf("Utilization() = %v, want 1", a.Utilization())
	}
}

func TestArenaExhausted(t *testing.T) {
	tests := []struct {
		name     string
		capacity uint32
		first    uint32
		second   uint32
	}{
		{"exact then one", 4, 4, 1},
		{"overflow on second", 8, 5, 4},
		{"single too large", 2, 3, 0},
		{"empty arena", 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.capacity)
			_, err := a.Allocate(tt.first)
			if tt.first > tt.capacity {
				if !errors.Is(err, ErrExhausted) {
					t.Fatalf("Allocate(%d) err = %v, want ErrExhausted", tt.first, err)
				}
				if a.Used() != 0 {
					t.Errorf("failed allocation moved cursor to %d", a.Used())
				}
				return
			}
			if err != nil {
				t.Fatalf("Allocate(%d): %v", tt.first, err)
			}
			used := a.Used()
			if _, err := a.Allocate(tt.second); !errors.Is(err, ErrExhausted) {
				t.Errorf("Allocate(%d) err = %v, want ErrExhausted", tt.second, err)
			}
			if a.Used() != used {
				t.Errorf("failed allocation moved cursor %d -> %d", used, a.Used())
			}
		})
	}
}

func TestArenaReset(t *testing.T) {
	a := New(3)
	if _, err := a.Allocate(3); err != nil {
		t.Fatal(err)
	}
	a.Reset()

	r, err := a.Allocate(2)
	if err != nil {
		t.Fatalf("Allocate after Reset: %v", err)
	}
	if r.Offset != 0 {
		t.Errorf("Offset after Reset = %d, want 0", r.Offset)
	}
	if a.Peak() != 3 {
		t.Errorf("Peak() = %d, want 3", a.Peak())
	}
}

func TestArenaZeroCount(t *testing.T) {
	a := New(0)
	r, err := a.Allocate(0)
	if err != nil {
		t.Fatalf("Allocate(0): %v", err)
	}
	if r.Count != 0 {
		t.Errorf("Count = %d", r.Count)
	}
	if a.Utilization() != 0 {
		t.Errorf("Utilization() = %v on zero-capacity arena", a.Utilization())
	}
}
