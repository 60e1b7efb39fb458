package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cubechain/engine/core"
)

/**
 * @brief The descriptor pool together with the three set layouts every
 * pipeline shares. Each resource allocates its own set once at creation
 * and binds it by index when drawn.
 */
type VulkanDescriptorPool struct {
	Handle vk.DescriptorPool
	/** @brief Indexed by VULKAN_SET_*. */
	Layouts [VULKAN_SET_COUNT]vk.DescriptorSetLayout
}

func DescriptorPoolCreate(context *VulkanContext) (*VulkanDescriptorPool, error) {
	outPool := &VulkanDescriptorPool{}

	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: VULKAN_MAX_CONSTANT_BUFFER_COUNT,
		},
		{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: VULKAN_MAX_TEXTURE_COUNT,
		},
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       VULKAN_MAX_CONSTANT_BUFFER_COUNT + VULKAN_MAX_TEXTURE_COUNT,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &pool); res != vk.Success {
		return nil, resultError("vkCreateDescriptorPool", res)
	}
	outPool.Handle = pool

	layoutTypes := [VULKAN_SET_COUNT]struct {
		descriptorType vk.DescriptorType
		stages         vk.ShaderStageFlagBits
	}{
		VULKAN_SET_MATERIAL:  {vk.DescriptorTypeUniformBuffer, vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit},
		VULKAN_SET_TEXTURE:   {vk.DescriptorTypeCombinedImageSampler, vk.ShaderStageFragmentBit},
		VULKAN_SET_TRANSFORM: {vk.DescriptorTypeUniformBuffer, vk.ShaderStageVertexBit},
	}
	for set, lt := range layoutTypes {
		binding := vk.DescriptorSetLayoutBinding{
			Binding:         0,
			DescriptorType:  lt.descriptorType,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(lt.stages),
		}
		layoutInfo := vk.DescriptorSetLayoutCreateInfo{
			SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
			BindingCount: 1,
			PBindings:    []vk.DescriptorSetLayoutBinding{binding},
		}
		var layout vk.DescriptorSetLayout
		if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &layout); res != vk.Success {
			outPool.Destroy(context)
			return nil, resultError("vkCreateDescriptorSetLayout", res)
		}
		outPool.Layouts[set] = layout
	}

	core.LogDebug("Descriptor pool created with room for %d buffers and %d textures.", VULKAN_MAX_CONSTANT_BUFFER_COUNT, VULKAN_MAX_TEXTURE_COUNT)
	return outPool, nil
}

func (dp *VulkanDescriptorPool) Destroy(context *VulkanContext) {
	for i, layout := range dp.Layouts {
		if layout != vk.NullDescriptorSetLayout {
			vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, layout, context.Allocator)
			dp.Layouts[i] = vk.NullDescriptorSetLayout
		}
	}
	if dp.Handle != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, dp.Handle, context.Allocator)
		dp.Handle = vk.NullDescriptorPool
	}
}

// Allocate returns a new set with the layout of set index set.
func (dp *VulkanDescriptorPool) Allocate(context *VulkanContext, set uint32) (vk.DescriptorSet, error) {
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     dp.Handle,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{dp.Layouts[set]},
	}
	var ds vk.DescriptorSet
	err := context.Locks.SafeCall(ResourceManagement, func() error {
		if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocInfo, &ds); res != vk.Success {
			return resultError("vkAllocateDescriptorSets", res)
		}
		return nil
	})
	return ds, err
}

func (dp *VulkanDescriptorPool) Free(context *VulkanContext, ds vk.DescriptorSet) {
	if ds == vk.NullDescriptorSet {
		return
	}
	context.Locks.SafeCall(ResourceManagement, func() error {
		if res := vk.FreeDescriptorSets(context.Device.LogicalDevice, dp.Handle, 1, &ds); res != vk.Success {
			core.LogWarn("vkFreeDescriptorSets failed with %s", VulkanResultString(res))
		}
		return nil
	})
}

// WriteBuffer points binding 0 of ds at the whole of buffer.
func WriteBuffer(context *VulkanContext, ds vk.DescriptorSet, buffer *VulkanBuffer) {
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          ds,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: buffer.Handle,
			Offset: 0,
			Range:  vk.DeviceSize(buffer.Size),
		}},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}

// WriteImage points binding 0 of ds at a sampled image.
func WriteImage(context *VulkanContext, ds vk.DescriptorSet, view vk.ImageView, sampler vk.Sampler) {
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          ds,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     sampler,
			ImageView:   view,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}
