package vulkan

import (
	"errors"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
)

var ErrEmptyTexture = errors.New("texture has no pixel data")

/**
 * @brief A sampled texture: image, sampler and the descriptor set binding
 * both to set VULKAN_SET_TEXTURE.
 */
type VulkanTexture struct {
	context *VulkanContext

	name    string
	Image   *VulkanImage
	Sampler vk.Sampler
	Set     vk.DescriptorSet
}

func textureFormat(format metadata.TextureFormat) vk.Format {
	if format == metadata.TextureFormatRGBA8SRGB {
		return vk.FormatR8g8b8a8Srgb
	}
	return vk.FormatR8g8b8a8Unorm
}

func TextureCreate(context *VulkanContext, texture *metadata.Texture) (*VulkanTexture, error) {
	if len(texture.Mips) == 0 || texture.Width == 0 || texture.Height == 0 {
		return nil, ErrEmptyTexture
	}

	// Every level goes into one staging buffer, largest first.
	pixels := make([]byte, 0, texture.ByteSize())
	offsets := make([]uint64, len(texture.Mips))
	for i, mip := range texture.Mips {
		offsets[i] = uint64(len(pixels))
		pixels = append(pixels, mip.Pixels...)
	}

	staging, err := BufferCreate(context, uint64(len(pixels)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)
	if err := staging.LoadData(context, pixels); err != nil {
		return nil, err
	}

	image, err := ImageCreate(
		context,
		vk.ImageType2d,
		texture.Width,
		texture.Height,
		texture.MipLevels(),
		textureFormat(texture.Format),
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit),
	)
	if err != nil {
		core.LogError("failed to create image for texture '%s': %s", texture.Name, err)
		return nil, err
	}

	err = SingleUse(context, func(cb *VulkanCommandBuffer) error {
		if !image.TransitionLayout(cb, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal) {
			return ErrCommandBufferState
		}
		image.CopyFromBuffer(cb, staging.Handle, offsets)
		if !image.TransitionLayout(cb, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal) {
			return ErrCommandBufferState
		}
		return nil
	})
	if err != nil {
		image.ImageDestroy(context)
		return nil, err
	}

	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		MipLodBias:              0,
		MinLod:                  0,
		MaxLod:                  float32(texture.MipLevels()),
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &sampler); res != vk.Success {
		image.ImageDestroy(context)
		return nil, resultError("vkCreateSampler", res)
	}

	set, err := context.DescriptorPool.Allocate(context, VULKAN_SET_TEXTURE)
	if err != nil {
		vk.DestroySampler(context.Device.LogicalDevice, sampler, context.Allocator)
		image.ImageDestroy(context)
		return nil, err
	}
	WriteImage(context, set, image.View, sampler)

	core.LogDebug("Texture '%s' uploaded: %dx%d, %d mips.", texture.Name, texture.Width, texture.Height, texture.MipLevels())
	return &VulkanTexture{
		context: context,
		name:    texture.Name,
		Image:   image,
		Sampler: sampler,
		Set:     set,
	}, nil
}

func (t *VulkanTexture) Name() string {
	return t.name
}

func (t *VulkanTexture) Destroy() {
	if t.Image == nil {
		return
	}
	t.context.DescriptorPool.Free(t.context, t.Set)
	t.Set = vk.NullDescriptorSet
	vk.DestroySampler(t.context.Device.LogicalDevice, t.Sampler, t.context.Allocator)
	t.Sampler = vk.NullSampler
	t.Image.ImageDestroy(t.context)
	t.Image = nil
}
