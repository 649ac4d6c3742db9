package rhi

import (
	"slices"
	"testing"
)

func TestFlags(t *testing.T) {
	f := NewFlags(BufferUsageUniform, BufferUsageMapWrite)

	if !f.Has(BufferUsageUniform) || !f.Has(BufferUsageMapWrite) {
		t.Fatalf("NewFlags lost a bit: %#x", f.Value())
	}
	if f.Has(BufferUsageVertex) {
		t.Error("Has reports an unset bit")
	}
	if f.Count() != 2 {
		t.Errorf("Count() = %d, want 2", f.Count())
	}
	if got := f.Bits(); !slices.Equal(got, []BufferUsageBits{BufferUsageMapWrite, BufferUsageUniform}) {
		t.Errorf("Bits() = %v, want [MapWrite Uniform] in ascending order", got)
	}

	g := f.With(BufferUsageVertex).Without(BufferUsageMapWrite)
	if !g.Has(BufferUsageVertex) || g.Has(BufferUsageMapWrite) {
		t.Errorf("With/Without produced %#x", g.Value())
	}
	if f.Has(BufferUsageVertex) {
		t.Error("With mutated its receiver")
	}

	if !f.HasAny(g) || f.HasAll(g) {
		t.Error("HasAny/HasAll disagree with the overlap")
	}
	if u := f.Union(g); u.Count() != 3 {
		t.Errorf("Union has %d bits, want 3", u.Count())
	}
	if i := f.Intersect(g); i != NewFlags(BufferUsageUniform) {
		t.Errorf("Intersect = %#x, want Uniform", i.Value())
	}

	var empty TextureUsageFlags
	if !empty.IsEmpty() || len(empty.Bits()) != 0 {
		t.Error("zero flags are not empty")
	}
}

func TestFlagsAllMasks(t *testing.T) {
	tests := []struct {
		name  string
		count int
		got   int
	}{
		{"BufferUsageAll", 9, BufferUsageAll.Count()},
		{"TextureUsageAll", 6, TextureUsageAll.Count()},
		{"ShaderStageAll", 3, ShaderStageAll.Count()},
		{"ColorWriteAll", 4, ColorWriteAll.Count()},
	}
	for _, tt := range tests {
		if tt.got != tt.count {
			t.Errorf("%s has %d bits, want %d", tt.name, tt.got, tt.count)
		}
	}
	if !BufferUsageAll.Has(BufferUsageIndirect) || !TextureUsageAll.Has(TextureUsageDepthStencilAttachment) {
		t.Error("All masks miss their highest bit")
	}
}
