package core

import (
	"testing"

	"github.com/gogpu/rhi"
)

func TestCreateGraphicsPipeline(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	layout := pipelineLayout(t, d, uniformLayout(t, d, 0))
	p := trianglePipeline(t, d, layout)
	if p.Layout() != rhi.PipelineLayout(layout) {
		t.Error("pipeline does not report its layout")
	}
	if p.Topology() != rhi.PrimitiveTopologyTriangleList {
		t.Errorf("Topology() = %d, want TriangleList", p.Topology())
	}
	if p.vertexBuffers != 0 {
		t.Errorf("vertexBuffers = %d, want 0", p.vertexBuffers)
	}
	p.Destroy()
	p.Destroy()
}

func TestGraphicsPipelineValidation(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	layout := pipelineLayout(t, d)
	sh := mustShader(t, d)
	base := func() rhi.GraphicsPipelineCreateInfo {
		return rhi.GraphicsPipelineCreateInfo{
			Layout:           layout,
			VertexShader:     sh,
			PixelShader:      sh,
			VertexEntryPoint: "vs_main",
			PixelEntryPoint:  "fs_main",
			FragmentState: rhi.FragmentState{ColorTargets: []rhi.ColorTargetState{{
				Format:     rhi.PixelFormatRGBA8Unorm,
				WriteFlags: rhi.ColorWriteAll,
			}}},
		}
	}
	position := rhi.VertexAttribute{Format: rhi.VertexFormatFloat32x3, Location: 0}

	tests := []struct {
		name   string
		modify func(*rhi.GraphicsPipelineCreateInfo)
		kind   rhi.ErrorKind
	}{
		{"no layout", func(i *rhi.GraphicsPipelineCreateInfo) { i.Layout = nil }, rhi.KindInvalidArgument},
		{"no vertex shader", func(i *rhi.GraphicsPipelineCreateInfo) { i.VertexShader = nil }, rhi.KindInvalidArgument},
		{"no vertex entry", func(i *rhi.GraphicsPipelineCreateInfo) { i.VertexEntryPoint = "" }, rhi.KindInvalidArgument},
		{"targets without pixel shader", func(i *rhi.GraphicsPipelineCreateInfo) { i.PixelShader = nil }, rhi.KindInvalidArgument},
		{"no pixel entry", func(i *rhi.GraphicsPipelineCreateInfo) { i.PixelEntryPoint = "" }, rhi.KindInvalidArgument},
		{"depth color target", func(i *rhi.GraphicsPipelineCreateInfo) {
			i.FragmentState.ColorTargets[0].Format = rhi.PixelFormatD32Float
		}, rhi.KindInvalidArgument},
		{"unmapped color target", func(i *rhi.GraphicsPipelineCreateInfo) {
			i.FragmentState.ColorTargets[0].Format = rhi.PixelFormatRGB9E5Float
		}, rhi.KindUnsupportedFeature},
		{"too many targets", func(i *rhi.GraphicsPipelineCreateInfo) {
			i.FragmentState.ColorTargets = make([]rhi.ColorTargetState, 9)
		}, rhi.KindInvalidArgument},
		{"bad topology", func(i *rhi.GraphicsPipelineCreateInfo) {
			i.PrimitiveState.Topology = rhi.PrimitiveTopologyTriangleStrip + 1
		}, rhi.KindInvalidArgument},
		{"wireframe", func(i *rhi.GraphicsPipelineCreateInfo) {
			i.PrimitiveState.FillMode = rhi.FillModeWireframe
		}, rhi.KindUnsupportedFeature},
		{"bad sample count", func(i *rhi.GraphicsPipelineCreateInfo) { i.MultiSampleState.Count = 5 }, rhi.KindInvalidArgument},
		{"color depth format", func(i *rhi.GraphicsPipelineCreateInfo) {
			i.DepthStencilState = &rhi.DepthStencilState{Format: rhi.PixelFormatRGBA8Unorm}
		}, rhi.KindInvalidArgument},
		{"stencil without stencil aspect", func(i *rhi.GraphicsPipelineCreateInfo) {
			i.DepthStencilState = &rhi.DepthStencilState{Format: rhi.PixelFormatD32Float, StencilEnable: true}
		}, rhi.KindInvalidArgument},
		{"attribute overruns stride", func(i *rhi.GraphicsPipelineCreateInfo) {
			i.VertexState.BufferLayouts = []rhi.VertexBufferLayout{{Stride: 8, Attributes: []rhi.VertexAttribute{position}}}
		}, rhi.KindInvalidArgument},
		{"location used twice", func(i *rhi.GraphicsPipelineCreateInfo) {
			i.VertexState.BufferLayouts = []rhi.VertexBufferLayout{
				{Stride: 12, Attributes: []rhi.VertexAttribute{position}},
				{Stride: 12, Attributes: []rhi.VertexAttribute{position}},
			}
		}, rhi.KindInvalidArgument},
		{"bad vertex format", func(i *rhi.GraphicsPipelineCreateInfo) {
			i.VertexState.BufferLayouts = []rhi.VertexBufferLayout{{Attributes: []rhi.VertexAttribute{{Format: rhi.VertexFormatCount}}}}
		}, rhi.KindInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := base()
			tt.modify(&info)
			_, err := d.CreateGraphicsPipeline(&info)
			wantKind(t, err, tt.kind)
		})
	}
}

func TestGraphicsPipelineDepthOnly(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	sh := mustShader(t, d)
	p, err := d.CreateGraphicsPipeline(&rhi.GraphicsPipelineCreateInfo{
		Layout:           pipelineLayout(t, d),
		VertexShader:     sh,
		VertexEntryPoint: "vs_main",
		VertexState: rhi.VertexState{BufferLayouts: []rhi.VertexBufferLayout{{
			Stride:     12,
			Attributes: []rhi.VertexAttribute{{Format: rhi.VertexFormatFloat32x3}},
		}}},
		DepthStencilState: &rhi.DepthStencilState{
			Format:           rhi.PixelFormatD24UnormS8Uint,
			DepthEnable:      true,
			DepthWrite:       true,
			DepthCompareFunc: rhi.CompareFuncLess,
			StencilEnable:    true,
		},
	})
	if err != nil {
		t.Fatalf("depth-only pipeline failed: %v", err)
	}
	if n := p.(*GraphicsPipeline).vertexBuffers; n != 1 {
		t.Errorf("vertexBuffers = %d, want 1", n)
	}
}

func TestCreateComputePipeline(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	layout := pipelineLayout(t, d)
	sh := mustShader(t, d)

	p, err := d.CreateComputePipeline(&rhi.ComputePipelineCreateInfo{Layout: layout, ComputeShader: sh, EntryPoint: "main"})
	if err != nil {
		t.Fatalf("CreateComputePipeline failed: %v", err)
	}
	if p.Layout() != rhi.PipelineLayout(layout) {
		t.Error("pipeline does not report its layout")
	}

	tests := []struct {
		name string
		info rhi.ComputePipelineCreateInfo
	}{
		{"no layout", rhi.ComputePipelineCreateInfo{ComputeShader: sh, EntryPoint: "main"}},
		{"no shader", rhi.ComputePipelineCreateInfo{Layout: layout, EntryPoint: "main"}},
		{"no entry point", rhi.ComputePipelineCreateInfo{Layout: layout, ComputeShader: sh}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.CreateComputePipeline(&tt.info)
			wantKind(t, err, rhi.KindInvalidArgument)
		})
	}
}

func TestObjectsFromAnotherDevice(t *testing.T) {
	d1, _, cleanup1 := createTestDevice(t, nil)
	defer cleanup1()
	d2, _, cleanup2 := createTestDevice(t, nil)
	defer cleanup2()

	foreign := pipelineLayout(t, d2)
	_, err := d1.CreateComputePipeline(&rhi.ComputePipelineCreateInfo{
		Layout:        foreign,
		ComputeShader: mustShader(t, d1),
		EntryPoint:    "main",
	})
	wantKind(t, err, rhi.KindInvalidArgument)

	_, err = d1.CreateBindGroup(&rhi.BindGroupCreateInfo{Layout: uniformLayout(t, d2, 0)})
	wantKind(t, err, rhi.KindInvalidArgument)
}
