package core

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rhi"
)

func entry(t rhi.BindingType, slot uint32) rhi.BindGroupLayoutEntry {
	return rhi.BindGroupLayoutEntry{
		Binding:          rhi.ResourceBinding{Type: t, Slot: slot},
		ShaderVisibility: rhi.NewFlags(rhi.ShaderStagePixel),
	}
}

func TestBindGroupLayoutSorted(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	l, err := d.CreateBindGroupLayout(&rhi.BindGroupLayoutCreateInfo{
		Entries: []rhi.BindGroupLayoutEntry{
			entry(rhi.BindingTypeTexture, 1),
			entry(rhi.BindingTypeSampler, 0),
			entry(rhi.BindingTypeUniformBuffer, 2),
			entry(rhi.BindingTypeTexture, 0),
			entry(rhi.BindingTypeStorageTexture, 3),
		},
	})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout failed: %v", err)
	}
	bgl := l.(*BindGroupLayout)

	want := []rhi.ResourceBinding{
		{Type: rhi.BindingTypeUniformBuffer, Slot: 2},
		{Type: rhi.BindingTypeSampler, Slot: 0},
		{Type: rhi.BindingTypeTexture, Slot: 0},
		{Type: rhi.BindingTypeTexture, Slot: 1},
		{Type: rhi.BindingTypeStorageTexture, Slot: 3},
	}
	got := l.GetCreateInfo().Entries
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Binding != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i].Binding, want[i])
		}
	}
	if f := got[4].StorageTextureFormat; f != rhi.PixelFormatRGBA8Unorm {
		t.Errorf("storage texture format defaulted to %s, want RGBA8Unorm", f)
	}

	views, samplers := bgl.DescriptorCounts()
	if views != 4 || samplers != 1 {
		t.Errorf("DescriptorCounts() = %d, %d; want 4, 1", views, samplers)
	}

	// Slot 0 appears twice across types, so HAL bindings fall back to
	// sorted positions.
	for i, b := range bgl.halBinding {
		if b != uint32(i) {
			t.Errorf("halBinding[%d] = %d, want %d", i, b, i)
		}
	}
}

func TestBindGroupLayoutKey(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	a := uniformLayout(t, d, 0)
	b := uniformLayout(t, d, 0)
	c := uniformLayout(t, d, 1)
	if a.Key() != b.Key() {
		t.Error("identical layouts have different keys")
	}
	if a.Key() == c.Key() {
		t.Error("layouts at different indices share a key")
	}
}

func TestBindGroupLayoutProjectionShared(t *testing.T) {
	v := &testVariant{}
	d, _, cleanup := createTestDevice(t, v)
	defer cleanup()

	a := uniformLayout(t, d, 0)
	b := uniformLayout(t, d, 0)
	if got := v.projected.Load(); got != 1 {
		t.Errorf("equal layouts projected %d times, want 1", got)
	}
	if a.Native() != b.Native() {
		t.Errorf("equal layouts have native %v and %v", a.Native(), b.Native())
	}

	uniformLayout(t, d, 1)
	_, err := d.CreateBindGroupLayout(&rhi.BindGroupLayoutCreateInfo{
		Entries: []rhi.BindGroupLayoutEntry{entry(rhi.BindingTypeUniformBuffer, 0)},
	})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout failed: %v", err)
	}
	if got := v.projected.Load(); got != 3 {
		t.Errorf("distinct layouts projected %d times in total, want 3", got)
	}
	if st := d.layouts.Stats(); st.Hits != 1 || st.Len != 3 {
		t.Errorf("projection cache stats %+v, want 1 hit and 3 entries", st)
	}
}

func TestBindGroupLayoutValidation(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	tests := []struct {
		name string
		info rhi.BindGroupLayoutCreateInfo
	}{
		{"index past limit", rhi.BindGroupLayoutCreateInfo{LayoutIndex: 4}},
		{"duplicate slot", rhi.BindGroupLayoutCreateInfo{Entries: []rhi.BindGroupLayoutEntry{
			entry(rhi.BindingTypeTexture, 0),
			entry(rhi.BindingTypeTexture, 0),
		}}},
		{"bad type", rhi.BindGroupLayoutCreateInfo{Entries: []rhi.BindGroupLayoutEntry{
			entry(rhi.BindingTypeCount, 0),
		}}},
		{"no visibility", rhi.BindGroupLayoutCreateInfo{Entries: []rhi.BindGroupLayoutEntry{
			{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeSampler}},
		}}},
		{"depth storage format", rhi.BindGroupLayoutCreateInfo{Entries: []rhi.BindGroupLayoutEntry{{
			Binding:              rhi.ResourceBinding{Type: rhi.BindingTypeStorageTexture},
			ShaderVisibility:     rhi.NewFlags(rhi.ShaderStageCompute),
			StorageTextureFormat: rhi.PixelFormatD32Float,
		}}}},
		{"cube storage texture", rhi.BindGroupLayoutCreateInfo{Entries: []rhi.BindGroupLayoutEntry{{
			Binding:          rhi.ResourceBinding{Type: rhi.BindingTypeStorageTexture},
			ShaderVisibility: rhi.NewFlags(rhi.ShaderStageCompute),
			ViewDimension:    rhi.TextureViewDimensionCube,
		}}}},
		{"bad view dimension", rhi.BindGroupLayoutCreateInfo{Entries: []rhi.BindGroupLayoutEntry{{
			Binding:          rhi.ResourceBinding{Type: rhi.BindingTypeTexture},
			ShaderVisibility: rhi.NewFlags(rhi.ShaderStagePixel),
			ViewDimension:    rhi.TextureViewDimension3D + 1,
		}}}},
		{"bad sample type", rhi.BindGroupLayoutCreateInfo{Entries: []rhi.BindGroupLayoutEntry{{
			Binding:          rhi.ResourceBinding{Type: rhi.BindingTypeTexture},
			ShaderVisibility: rhi.NewFlags(rhi.ShaderStagePixel),
			SampleType:       rhi.TextureSampleTypeCount,
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.CreateBindGroupLayout(&tt.info)
			wantKind(t, err, rhi.KindInvalidArgument)
		})
	}
}

func TestCreateBindGroup(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	l, err := d.CreateBindGroupLayout(&rhi.BindGroupLayoutCreateInfo{
		Entries: []rhi.BindGroupLayoutEntry{
			entry(rhi.BindingTypeUniformBuffer, 0),
			entry(rhi.BindingTypeTexture, 1),
			entry(rhi.BindingTypeSampler, 2),
		},
	})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout failed: %v", err)
	}

	buf := mustBuffer(t, d, 256, rhi.BufferUsageUniform, rhi.BufferUsageVertex)
	uniform, _ := buf.CreateBufferView(&rhi.BufferViewCreateInfo{Type: rhi.BufferViewTypeUniformBinding})
	vertex, _ := buf.CreateBufferView(&rhi.BufferViewCreateInfo{Type: rhi.BufferViewTypeVertex, Stride: 16})

	tex := mustTexture(t, d, rhi.TextureCreateInfo{
		Dimension: rhi.TextureDimension2D,
		Extent:    rhi.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1},
		Format:    rhi.PixelFormatRGBA8Unorm,
		Usage:     rhi.NewFlags(rhi.TextureUsageTextureBinding),
	})
	sampled, err := tex.CreateTextureView(&rhi.TextureViewCreateInfo{Dimension: rhi.TextureViewDimension2D})
	if err != nil {
		t.Fatalf("CreateTextureView failed: %v", err)
	}
	smp, err := d.CreateSampler(&rhi.SamplerCreateInfo{})
	if err != nil {
		t.Fatalf("CreateSampler failed: %v", err)
	}

	ub := func(v rhi.BufferView) rhi.BindGroupEntry {
		return rhi.BindGroupEntry{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeUniformBuffer, Slot: 0}, Buffer: v}
	}
	tx := rhi.BindGroupEntry{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeTexture, Slot: 1}, Texture: sampled}
	sm := rhi.BindGroupEntry{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeSampler, Slot: 2}, Sampler: smp}

	g, err := d.CreateBindGroup(&rhi.BindGroupCreateInfo{Layout: l, Entries: []rhi.BindGroupEntry{sm, ub(uniform), tx}})
	if err != nil {
		t.Fatalf("CreateBindGroup failed: %v", err)
	}
	if g.Layout() != l {
		t.Error("bind group does not report its layout")
	}

	tests := []struct {
		name    string
		entries []rhi.BindGroupEntry
	}{
		{"missing slot", []rhi.BindGroupEntry{ub(uniform), tx}},
		{"bound twice", []rhi.BindGroupEntry{ub(uniform), tx, sm, sm}},
		{"unknown slot", []rhi.BindGroupEntry{ub(uniform), tx, sm, {
			Binding: rhi.ResourceBinding{Type: rhi.BindingTypeSampler, Slot: 9}, Sampler: smp,
		}}},
		{"wrong view type", []rhi.BindGroupEntry{ub(vertex), tx, sm}},
		{"wrong resource kind", []rhi.BindGroupEntry{ub(uniform), tx, {
			Binding: rhi.ResourceBinding{Type: rhi.BindingTypeSampler, Slot: 2}, Texture: sampled,
		}}},
		{"two resources", []rhi.BindGroupEntry{ub(uniform), tx, {
			Binding: rhi.ResourceBinding{Type: rhi.BindingTypeSampler, Slot: 2}, Sampler: smp, Texture: sampled,
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.CreateBindGroup(&rhi.BindGroupCreateInfo{Layout: l, Entries: tt.entries})
			wantKind(t, err, rhi.KindInvalidArgument)
		})
	}
}

func TestBindGroupStorageTextureFormat(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	l, err := d.CreateBindGroupLayout(&rhi.BindGroupLayoutCreateInfo{
		Entries: []rhi.BindGroupLayoutEntry{{
			Binding:              rhi.ResourceBinding{Type: rhi.BindingTypeStorageTexture},
			ShaderVisibility:     rhi.NewFlags(rhi.ShaderStageCompute),
			StorageTextureFormat: rhi.PixelFormatR32Float,
		}},
	})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout failed: %v", err)
	}

	storage := func(f rhi.PixelFormat) rhi.TextureView {
		tex := mustTexture(t, d, rhi.TextureCreateInfo{
			Dimension: rhi.TextureDimension2D,
			Extent:    rhi.Extent3D{Width: 8, Height: 8, DepthOrArrayLayers: 1},
			Format:    f,
			Usage:     rhi.NewFlags(rhi.TextureUsageStorageBinding),
		})
		v, err := tex.CreateTextureView(&rhi.TextureViewCreateInfo{
			Dimension: rhi.TextureViewDimension2D,
			Type:      rhi.TextureViewTypeStorageBinding,
		})
		if err != nil {
			t.Fatalf("CreateTextureView failed: %v", err)
		}
		return v
	}
	bind := func(v rhi.TextureView) error {
		_, err := d.CreateBindGroup(&rhi.BindGroupCreateInfo{Layout: l, Entries: []rhi.BindGroupEntry{{
			Binding: rhi.ResourceBinding{Type: rhi.BindingTypeStorageTexture},
			Texture: v,
		}}})
		return err
	}

	if err := bind(storage(rhi.PixelFormatR32Float)); err != nil {
		t.Fatalf("matching format rejected: %v", err)
	}
	wantKind(t, bind(storage(rhi.PixelFormatRGBA8Unorm)), rhi.KindInvalidArgument)
}

func TestBindGroupCubeTexture(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	cubeSlot := entry(rhi.BindingTypeTexture, 0)
	cubeSlot.ViewDimension = rhi.TextureViewDimensionCube
	cubeSlot.SampleType = rhi.TextureSampleTypeUnfilterableFloat
	cubeLayout, err := d.CreateBindGroupLayout(&rhi.BindGroupLayoutCreateInfo{Entries: []rhi.BindGroupLayoutEntry{cubeSlot}})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout(cube) failed: %v", err)
	}
	flatLayout, err := d.CreateBindGroupLayout(&rhi.BindGroupLayoutCreateInfo{Entries: []rhi.BindGroupLayoutEntry{entry(rhi.BindingTypeTexture, 0)}})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout(2D) failed: %v", err)
	}
	if got := flatLayout.GetCreateInfo().Entries[0]; got.ViewDimension != rhi.TextureViewDimension2D || got.SampleType != rhi.TextureSampleTypeFloat {
		t.Errorf("default texture slot = %s/%d, want 2D/Float", got.ViewDimension, got.SampleType)
	}
	if cubeLayout.(*BindGroupLayout).Key() == flatLayout.(*BindGroupLayout).Key() {
		t.Error("cube and 2D texture slots share a layout key")
	}

	tex := mustTexture(t, d, rhi.TextureCreateInfo{
		Dimension: rhi.TextureDimension2D,
		Extent:    rhi.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 6},
		Format:    rhi.PixelFormatRGBA8Unorm,
		Usage:     rhi.NewFlags(rhi.TextureUsageTextureBinding),
	})
	cube, err := tex.CreateTextureView(&rhi.TextureViewCreateInfo{Dimension: rhi.TextureViewDimensionCube})
	if err != nil {
		t.Fatalf("cube view failed: %v", err)
	}
	face, err := tex.CreateTextureView(&rhi.TextureViewCreateInfo{Dimension: rhi.TextureViewDimension2D, ArrayLayerNum: 1})
	if err != nil {
		t.Fatalf("face view failed: %v", err)
	}
	bind := func(l rhi.BindGroupLayout, v rhi.TextureView) error {
		_, err := d.CreateBindGroup(&rhi.BindGroupCreateInfo{Layout: l, Entries: []rhi.BindGroupEntry{{
			Binding: rhi.ResourceBinding{Type: rhi.BindingTypeTexture},
			Texture: v,
		}}})
		return err
	}

	if err := bind(cubeLayout, cube); err != nil {
		t.Fatalf("cube view rejected by cube slot: %v", err)
	}
	wantKind(t, bind(cubeLayout, face), rhi.KindInvalidArgument)
	wantKind(t, bind(flatLayout, cube), rhi.KindInvalidArgument)
	if err := bind(flatLayout, face); err != nil {
		t.Fatalf("2D view rejected by 2D slot: %v", err)
	}

	if got := textureViewDimension(rhi.TextureViewDimensionCube); got != gputypes.TextureViewDimensionCube {
		t.Errorf("cube maps to %v", got)
	}
	if got := textureSampleType(rhi.TextureSampleTypeUnfilterableFloat); got != gputypes.TextureSampleTypeUnfilterableFloat {
		t.Errorf("unfilterable float maps to %v", got)
	}
	if got := textureSampleType(rhi.TextureSampleTypeFloat); got != gputypes.TextureSampleTypeFloat {
		t.Errorf("float maps to %v", got)
	}
}

func TestCreatePipelineLayout(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	g0, g1 := uniformLayout(t, d, 0), uniformLayout(t, d, 1)
	vs := rhi.NewFlags(rhi.ShaderStageVertex)

	l, err := d.CreatePipelineLayout(&rhi.PipelineLayoutCreateInfo{
		BindGroupLayouts:        []rhi.BindGroupLayout{g0, g1},
		PipelineConstantLayouts: []rhi.PipelineConstantLayout{{StageFlags: vs, Size: 64}},
	})
	if err != nil {
		t.Fatalf("CreatePipelineLayout failed: %v", err)
	}
	if n := len(l.BindGroupLayouts()); n != 2 {
		t.Errorf("BindGroupLayouts() has %d entries, want 2", n)
	}
	pl := l.(*PipelineLayout)
	if len(pl.Constants()) != 1 {
		t.Errorf("Constants() has %d ranges, want 1", len(pl.Constants()))
	}

	tests := []struct {
		name string
		info rhi.PipelineLayoutCreateInfo
	}{
		{"index mismatch", rhi.PipelineLayoutCreateInfo{BindGroupLayouts: []rhi.BindGroupLayout{g1}}},
		{"unaligned constants", rhi.PipelineLayoutCreateInfo{
			PipelineConstantLayouts: []rhi.PipelineConstantLayout{{StageFlags: vs, Size: 6}},
		}},
		{"constants past limit", rhi.PipelineLayoutCreateInfo{
			PipelineConstantLayouts: []rhi.PipelineConstantLayout{{StageFlags: vs, Offset: 96, Size: 64}},
		}},
		{"constants total past limit", rhi.PipelineLayoutCreateInfo{
			PipelineConstantLayouts: []rhi.PipelineConstantLayout{
				{StageFlags: vs, Size: 128},
				{StageFlags: rhi.NewFlags(rhi.ShaderStagePixel), Size: 4},
			},
		}},
		{"no stages", rhi.PipelineLayoutCreateInfo{
			PipelineConstantLayouts: []rhi.PipelineConstantLayout{{Size: 4}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.CreatePipelineLayout(&tt.info)
			wantKind(t, err, rhi.KindInvalidArgument)
		})
	}
}

func TestPipelineLayoutCompatible(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	buf := mustBuffer(t, d, 256, rhi.BufferUsageUniform)
	layout := pipelineLayout(t, d, uniformLayout(t, d, 0))

	// A group from a separately created but identical layout is accepted.
	twin := uniformGroup(t, d, uniformLayout(t, d, 0), buf)
	if !layout.compatible(0, twin) {
		t.Error("group from an identical layout rejected")
	}
	if layout.compatible(1, twin) {
		t.Error("group accepted at an index outside the layout")
	}
}
