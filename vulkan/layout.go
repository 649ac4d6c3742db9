package vulkan

import (
	"github.com/gogpu/wgpu/hal/vulkan/vk"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/core"
)

// SetLayout is the projection of a bind group layout onto a descriptor
// set layout.
type SetLayout struct {
	// Set is the descriptor set index the layout binds at.
	Set      uint32
	Bindings []vk.DescriptorSetLayoutBinding
}

// PipelineLayout is the projection of a pipeline layout: the set layouts
// in set order plus the push constant ranges.
type PipelineLayout struct {
	SetLayouts    []*SetLayout
	PushConstants []vk.PushConstantRange
}

// projectSetLayout maps each entry to a single-descriptor binding at its
// slot. Slots must be unique within a set.
func projectSetLayout(info *rhi.BindGroupLayoutCreateInfo) (*SetLayout, error) {
	const op = "vulkan.ProjectBindGroupLayout"
	out := &SetLayout{Set: info.LayoutIndex, Bindings: make([]vk.DescriptorSetLayoutBinding, len(info.Entries))}
	seen := make(map[uint32]rhi.BindingType, len(info.Entries))
	for i, e := range info.Entries {
		if prev, dup := seen[e.Binding.Slot]; dup {
			return nil, rhi.InvalidArgument(op, "binding %d used by both %s and %s", e.Binding.Slot, prev, e.Binding.Type)
		}
		seen[e.Binding.Slot] = e.Binding.Type

		dt, err := DescriptorType(e.Binding.Type)
		if err != nil {
			return nil, err
		}
		out.Bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         e.Binding.Slot,
			DescriptorType:  dt,
			DescriptorCount: 1,
			StageFlags:      ShaderStageFlags(e.ShaderVisibility),
		}
	}
	return out, nil
}

func projectPipelineLayout(groups []*core.BindGroupLayout, constants []rhi.PipelineConstantLayout) (*PipelineLayout, error) {
	out := &PipelineLayout{
		SetLayouts:    make([]*SetLayout, len(groups)),
		PushConstants: make([]vk.PushConstantRange, len(constants)),
	}
	for i, g := range groups {
		sl, ok := g.Native().(*SetLayout)
		if !ok {
			return nil, rhi.InvalidArgument("vulkan.ProjectPipelineLayout", "layout %d was not created by the Vulkan backend", i)
		}
		out.SetLayouts[i] = sl
	}
	for i, c := range constants {
		out.PushConstants[i] = vk.PushConstantRange{
			StageFlags: ShaderStageFlags(c.StageFlags),
			Offset:     c.Offset,
			Size:       c.Size,
		}
	}
	return out, nil
}
