package vulkan

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/renderer"
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
)

var ErrNoSurface = errors.New("platform surface not available")

// Surface is what the backend needs from the windowing platform.
type Surface interface {
	GetInstanceProcAddress() unsafe.Pointer
	GetRequiredExtensionNames() []string
	CreateSurface(instance interface{}) (uintptr, error)
	FramebufferSize() (uint32, uint32)
}

type Options struct {
	// Debug enables the validation layer and the debug report callback.
	Debug        bool
	SyncInterval uint32
}

// VulkanRenderer implements renderer.RendererBackend on a single graphics
// queue.
type VulkanRenderer struct {
	surface Surface
	opts    Options
	context *VulkanContext
	queue   *VulkanQueue
}

func New(surface Surface, opts Options) *VulkanRenderer {
	return &VulkanRenderer{
		surface: surface,
		opts:    opts,
		context: &VulkanContext{
			FramebufferWidth:  0,
			FramebufferHeight: 0,
			Allocator:         nil,
			Locks:             NewVulkanLockPool(),
		},
	}
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	procAddr := vr.surface.GetInstanceProcAddress()
	if procAddr == nil {
		core.LogError("GetInstanceProcAddress is nil")
		return ErrNoSurface
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return err
	}

	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight
	if w, h := vr.surface.FramebufferSize(); w != 0 && h != 0 {
		vr.context.FramebufferWidth, vr.context.FramebufferHeight = w, h
	}

	if err := vr.createInstance(appName); err != nil {
		return err
	}

	// Debugger
	if vr.opts.Debug {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			core.LogError("vk.CreateDebugReportCallback failed with %s", err)
			return err
		}
		vr.context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.surface.CreateSurface(vr.context.Instance)
	if err != nil || surface == 0 {
		core.LogError("Failed to create platform surface: %v", err)
		return ErrNoSurface
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	// Device creation
	if err := DeviceCreate(vr.context); err != nil {
		core.LogError("Failed to create device: %s", err)
		return err
	}

	// Swapchain
	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight, vr.opts.SyncInterval)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	rp, err := RenderpassCreate(vr.context)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	// Swapchain framebuffers.
	if err := sc.RegenerateFramebuffers(rp); err != nil {
		return err
	}

	// Create sync objects.
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.ImageAvailableSemaphore); res != vk.Success {
		return resultError("vkCreateSemaphore", res)
	}
	if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.QueueCompleteSemaphore); res != vk.Success {
		return resultError("vkCreateSemaphore", res)
	}

	pool, err := DescriptorPoolCreate(vr.context)
	if err != nil {
		return err
	}
	vr.context.DescriptorPool = pool

	vr.queue = &VulkanQueue{context: vr.context}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance(appName string) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Cubechain Engine"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := []string{"VK_KHR_surface"} // Generic surface extension
	requiredExtensions = append(requiredExtensions, vr.surface.GetRequiredExtensionNames()...)

	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= 1 // VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
	}

	if vr.opts.Debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		core.LogInfo("Required extensions: %v", requiredExtensions)
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	// Validation layers should only be enabled on non-release builds.
	requiredLayers := []string{}
	if vr.opts.Debug {
		core.LogInfo("Validation layers enabled. Enumerating...")
		requiredLayers = []string{"VK_LAYER_KHRONOS_validation"}

		var availableLayerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
			return resultError("vkEnumerateInstanceLayerProperties", res)
		}
		availableLayers := make([]vk.LayerProperties, availableLayerCount)
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
			return resultError("vkEnumerateInstanceLayerProperties", res)
		}

		// Verify all required layers are available.
		for _, name := range requiredLayers {
			found := false
			for j := range availableLayers {
				availableLayers[j].Deref()
				end := FindFirstZeroInByteArray(availableLayers[j].LayerName[:])
				if name == vk.ToString(availableLayers[j].LayerName[:end+1]) {
					found = true
					break
				}
			}
			if !found {
				err := fmt.Errorf("required validation layer is missing: %s", name)
				core.LogError(err.Error())
				return err
			}
		}
		core.LogInfo("All required validation layers are present.")
	}

	createInfo.EnabledLayerCount = uint32(len(requiredLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredLayers)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		err := resultError("vkCreateInstance", res)
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Vulkan Instance created.")
	return nil
}

// Shutdown destroys everything Initialize created, in reverse order. It is
// safe after a partial Initialize.
func (vr *VulkanRenderer) Shutdown() error {
	context := vr.context
	if context.Device != nil && context.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(context.Device.LogicalDevice)

		if context.DescriptorPool != nil {
			context.DescriptorPool.Destroy(context)
			context.DescriptorPool = nil
		}
		if context.ImageAvailableSemaphore != vk.NullSemaphore {
			vk.DestroySemaphore(context.Device.LogicalDevice, context.ImageAvailableSemaphore, context.Allocator)
			context.ImageAvailableSemaphore = vk.NullSemaphore
		}
		if context.QueueCompleteSemaphore != vk.NullSemaphore {
			vk.DestroySemaphore(context.Device.LogicalDevice, context.QueueCompleteSemaphore, context.Allocator)
			context.QueueCompleteSemaphore = vk.NullSemaphore
		}
		if context.Swapchain != nil {
			context.Swapchain.SwapchainDestroy()
			context.Swapchain = nil
		}
		if context.MainRenderpass != nil {
			context.MainRenderpass.RenderpassDestroy(context)
			context.MainRenderpass = nil
		}
		core.LogDebug("Destroying Vulkan device...")
		DeviceDestroy(context)
	}

	if context.Surface != vk.NullSurface {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
		context.Surface = vk.NullSurface
	}
	if context.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(context.Instance, context.debugMessenger, context.Allocator)
		context.debugMessenger = vk.NullDebugReportCallback
	}
	if context.Instance != nil {
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(context.Instance, context.Allocator)
		context.Instance = nil
	}
	return nil
}

// WaitIdle blocks until the device has no work left. Without a device, after
// a failed Initialize, there is nothing to wait for.
func (vr *VulkanRenderer) WaitIdle() error {
	if vr.context.Device == nil || vr.context.Device.LogicalDevice == nil {
		return nil
	}
	return vr.context.Locks.SafeCall(QueueManagement, func() error {
		if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); res != vk.Success {
			return resultError("vkDeviceWaitIdle", res)
		}
		return nil
	})
}

// Resized records the new framebuffer size. The swapchain is rebuilt on the
// next acquire.
func (vr *VulkanRenderer) Resized(width, height uint32) {
	if width == vr.context.FramebufferWidth && height == vr.context.FramebufferHeight {
		return
	}
	core.LogDebug("Vulkan renderer backend resized: w/h: %d/%d", width, height)
	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height
	vr.context.SwapchainOutOfDate = true
}

func (vr *VulkanRenderer) CreateConstantBuffer(slot renderer.BindingSlot, size uint64) (renderer.ConstantBuffer, error) {
	return ConstantBufferCreate(vr.context, slot, size)
}

func (vr *VulkanRenderer) CreateMesh(geometry *metadata.GeometryConfig) (renderer.Mesh, error) {
	return GeometryCreate(vr.context, geometry)
}

func (vr *VulkanRenderer) CreateTexture(texture *metadata.Texture) (renderer.Texture, error) {
	return TextureCreate(vr.context, texture)
}

func (vr *VulkanRenderer) CreatePipeline(config *metadata.PipelineConfig) (renderer.Pipeline, error) {
	return NewGraphicsPipeline(vr.context, vr.context.MainRenderpass, config)
}

func (vr *VulkanRenderer) CreateCommandList() (renderer.CommandList, error) {
	return CommandListCreate(vr.context)
}

func (vr *VulkanRenderer) CreateFence(initialValue uint64) (renderer.Fence, error) {
	return NewFence(vr.context, initialValue)
}

func (vr *VulkanRenderer) Queue() renderer.Queue {
	return vr.queue
}

func (vr *VulkanRenderer) SwapChain() renderer.SwapChain {
	return vr.context.Swapchain
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
