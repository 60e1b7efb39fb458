package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cubechain/engine/core"
	emath "github.com/spaghettifunk/cubechain/engine/math"
)

// VulkanSwapchain implements renderer.SwapChain. A rebuild replaces the
// handles in place so holders of the pointer stay valid.
type VulkanSwapchain struct {
	context *VulkanContext

	ImageFormat vk.SurfaceFormat
	Handle      vk.Swapchain
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView
	ImageExtent vk.Extent2D
	PresentMode vk.PresentMode
	// Sync interval the present mode was chosen for.
	syncInterval uint32

	DepthAttachment *VulkanImage

	// framebuffers used for on-screen rendering.
	Framebuffers []*VulkanFramebuffer
}

type VulkanSwapchainSupportInfo struct {
	Capabilities     vk.SurfaceCapabilities
	FormatCount      uint32
	Formats          []vk.SurfaceFormat
	PresentModeCount uint32
	PresentModes     []vk.PresentMode
}

func SwapchainCreate(context *VulkanContext, width uint32, height uint32, syncInterval uint32) (*VulkanSwapchain, error) {
	swapchain := &VulkanSwapchain{context: context, syncInterval: syncInterval}
	if err := swapchain.create(width, height); err != nil {
		return nil, err
	}
	return swapchain, nil
}

// SwapchainRecreate waits for the device, tears down the images and
// framebuffers and builds them again for the current surface.
func (vs *VulkanSwapchain) SwapchainRecreate(width uint32, height uint32) error {
	context := vs.context
	if context.RecreatingSwapchain {
		core.LogDebug("SwapchainRecreate called when already recreating. Booting.")
		return core.ErrSwapchainBooting
	}
	if width == 0 || height == 0 {
		core.LogDebug("SwapchainRecreate called when window is < 1 in a dimension. Booting.")
		return core.ErrSwapchainBooting
	}
	context.RecreatingSwapchain = true
	defer func() { context.RecreatingSwapchain = false }()

	if res := vk.DeviceWaitIdle(context.Device.LogicalDevice); res != vk.Success {
		return resultError("vkDeviceWaitIdle", res)
	}
	// Requery support
	if err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface, context.Device.SwapchainSupport); err != nil {
		return err
	}

	vs.destroyFramebuffers()
	vs.destroySwapchain()
	if err := vs.create(width, height); err != nil {
		return err
	}
	if context.MainRenderpass != nil {
		if err := vs.RegenerateFramebuffers(context.MainRenderpass); err != nil {
			return err
		}
	}
	context.SwapchainOutOfDate = false
	core.LogInfo("Swapchain recreated: %dx%d, %d images.", vs.ImageExtent.Width, vs.ImageExtent.Height, vs.ImageCount)
	return nil
}

func (vs *VulkanSwapchain) SwapchainDestroy() {
	vs.destroyFramebuffers()
	vs.destroySwapchain()
}

// AcquireBackBuffer gets the next image. The acquire signals the image
// available semaphore, which the next submission waits on.
func (vs *VulkanSwapchain) AcquireBackBuffer() (uint32, error) {
	context := vs.context
	if context.SwapchainOutOfDate {
		if err := vs.SwapchainRecreate(context.FramebufferWidth, context.FramebufferHeight); err != nil {
			return 0, err
		}
	}

	for attempt := 0; ; attempt++ {
		var imageIndex uint32
		result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, math.MaxUint64, context.ImageAvailableSemaphore, vk.NullFence, &imageIndex)
		switch {
		case result == vk.Success || result == vk.Suboptimal:
			if result == vk.Suboptimal {
				context.SwapchainOutOfDate = true
			}
			context.ImageIndex = imageIndex
			context.AcquirePending = true
			return imageIndex, nil
		case result == vk.ErrorOutOfDate && attempt == 0:
			// Rebuild, then try once more.
			if err := vs.SwapchainRecreate(context.FramebufferWidth, context.FramebufferHeight); err != nil {
				return 0, err
			}
		default:
			err := resultError("vkAcquireNextImageKHR", result)
			core.LogError("Failed to acquire swapchain image: %s", err)
			return 0, err
		}
	}
}

// Present queues the current image for display once the frame's submission
// has finished rendering it. The present mode is fixed per swapchain, so a
// new sync interval marks the swapchain for a rebuild on the next acquire.
func (vs *VulkanSwapchain) Present(syncInterval uint32) error {
	context := vs.context
	if syncInterval != vs.syncInterval {
		vs.syncInterval = syncInterval
		context.SwapchainOutOfDate = true
	}
	presentInfo := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{vs.Handle},
		PImageIndices:  []uint32{context.ImageIndex},
	}
	if context.PresentPending {
		presentInfo.WaitSemaphoreCount = 1
		presentInfo.PWaitSemaphores = []vk.Semaphore{context.QueueCompleteSemaphore}
	}

	err := context.Locks.SafeCall(QueueManagement, func() error {
		switch result := vk.QueuePresent(context.Device.PresentQueue, &presentInfo); result {
		case vk.Success:
			return nil
		case vk.Suboptimal, vk.ErrorOutOfDate:
			// Swapchain is out of date or suboptimal. The next acquire rebuilds it.
			context.SwapchainOutOfDate = true
			return nil
		default:
			return resultError("vkQueuePresentKHR", result)
		}
	})
	context.PresentPending = false
	if err != nil {
		core.LogError("Failed to present swap chain image: %s", err)
	}
	return err
}

func (vs *VulkanSwapchain) BufferCount() uint32 {
	return vs.ImageCount
}

func (vs *VulkanSwapchain) Extent() (uint32, uint32) {
	return vs.ImageExtent.Width, vs.ImageExtent.Height
}

// RegenerateFramebuffers builds one framebuffer per swapchain image, each
// sharing the depth attachment.
func (vs *VulkanSwapchain) RegenerateFramebuffers(renderpass *VulkanRenderpass) error {
	vs.Framebuffers = make([]*VulkanFramebuffer, vs.ImageCount)
	for i := uint32(0); i < vs.ImageCount; i++ {
		attachments := []vk.ImageView{
			vs.Views[i],
			vs.DepthAttachment.View,
		}
		fb, err := FramebufferCreate(vs.context, renderpass, vs.ImageExtent.Width, vs.ImageExtent.Height, attachments)
		if err != nil {
			core.LogError("failed to create framebuffer %d: %s", i, err)
			return err
		}
		vs.Framebuffers[i] = fb
	}
	return nil
}

func (vs *VulkanSwapchain) create(width, height uint32) error {
	context := vs.context
	support := context.Device.SwapchainSupport

	// Choose a swap surface format.
	vs.ImageFormat = support.Formats[0]
	for _, format := range support.Formats {
		// Preferred formats
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			vs.ImageFormat = format
			break
		}
	}

	// FIFO is always available and is the vsync mode.
	vs.PresentMode = vk.PresentModeFifo
	if vs.syncInterval == 0 {
		for _, mode := range support.PresentModes {
			if mode == vk.PresentModeImmediate || mode == vk.PresentModeMailbox {
				vs.PresentMode = mode
				break
			}
		}
	}

	// Swapchain extent
	swapchainExtent := vk.Extent2D{Width: width, Height: height}
	if support.Capabilities.CurrentExtent.Width != math.MaxUint32 {
		swapchainExtent = support.Capabilities.CurrentExtent
	}

	// Clamp to the value allowed by the GPU.
	minExtent := support.Capabilities.MinImageExtent
	maxExtent := support.Capabilities.MaxImageExtent
	swapchainExtent.Width = emath.Clamp(swapchainExtent.Width, minExtent.Width, maxExtent.Width)
	swapchainExtent.Height = emath.Clamp(swapchainExtent.Height, minExtent.Height, maxExtent.Height)

	imageCount := max(VULKAN_BACK_BUFFER_COUNT, support.Capabilities.MinImageCount)
	if support.Capabilities.MaxImageCount > 0 && imageCount > support.Capabilities.MaxImageCount {
		imageCount = support.Capabilities.MaxImageCount
	}

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      vs.ImageFormat.Format,
		ImageColorSpace:  vs.ImageFormat.ColorSpace,
		ImageExtent:      swapchainExtent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vs.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	// Setup the queue family indices
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchainHandle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchainHandle); res != vk.Success {
		err := resultError("vkCreateSwapchainKHR", res)
		core.LogError(err.Error())
		return err
	}
	vs.Handle = swapchainHandle
	vs.ImageExtent = swapchainExtent

	// Images
	vs.ImageCount = 0
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, vs.Handle, &vs.ImageCount, nil); res != vk.Success {
		return resultError("vkGetSwapchainImagesKHR", res)
	}
	vs.Images = make([]vk.Image, vs.ImageCount)
	vs.Views = make([]vk.ImageView, vs.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, vs.Handle, &vs.ImageCount, vs.Images); res != vk.Success {
		return resultError("vkGetSwapchainImagesKHR", res)
	}

	// Views
	for i := uint32(0); i < vs.ImageCount; i++ {
		view, err := ImageViewCreate(context, vs.Images[i], vs.ImageFormat.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit), 1)
		if err != nil {
			return err
		}
		vs.Views[i] = view
	}

	// Depth resources
	if !DeviceDetectDepthFormat(context.Device) {
		context.Device.DepthFormat = vk.FormatUndefined
		err := resultError("depth format detection", vk.ErrorFormatNotSupported)
		core.LogError("Failed to find a supported depth format!")
		return err
	}

	depthAttachment, err := ImageCreate(
		context,
		vk.ImageType2d,
		swapchainExtent.Width,
		swapchainExtent.Height,
		1,
		context.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		core.LogError("Failed to create depth attachment: %s", err)
		return err
	}
	vs.DepthAttachment = depthAttachment

	core.LogInfo("Swapchain created successfully.")
	return nil
}

func (vs *VulkanSwapchain) destroyFramebuffers() {
	for _, fb := range vs.Framebuffers {
		if fb != nil {
			fb.Destroy(vs.context)
		}
	}
	vs.Framebuffers = nil
}

func (vs *VulkanSwapchain) destroySwapchain() {
	context := vs.context
	if vs.DepthAttachment != nil {
		vs.DepthAttachment.ImageDestroy(context)
		vs.DepthAttachment = nil
	}

	// Only destroy the views, not the images, since those are owned by the swapchain and are thus
	// destroyed when it is.
	for i := range vs.Views {
		vk.DestroyImageView(context.Device.LogicalDevice, vs.Views[i], context.Allocator)
	}
	vs.Views = nil
	vs.Images = nil

	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
}
