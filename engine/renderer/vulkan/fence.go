package vulkan

import (
	"errors"
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cubechain/engine/core"
)

var ErrFenceNeverSignaled = errors.New("fence value was never signaled")

// VulkanFence gives a binary VkFence the counter semantics of
// renderer.Fence. Each Signal submits the fence after all earlier work and
// remembers the value it stands for; the value completes when the VkFence
// does.
type VulkanFence struct {
	context *VulkanContext

	Handle    vk.Fence
	completed uint64
	// Value of the signal currently in flight, equal to completed if none.
	pending uint64
}

func NewFence(context *VulkanContext, initialValue uint64) (*VulkanFence, error) {
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}

	var pFence vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &pFence); res != vk.Success {
		err := resultError("vkCreateFence", res)
		core.LogError(err.Error())
		return nil, err
	}
	return &VulkanFence{
		context:   context,
		Handle:    pFence,
		completed: initialValue,
		pending:   initialValue,
	}, nil
}

func (vf *VulkanFence) Destroy() {
	if vf.Handle != vk.NullFence {
		vk.DestroyFence(vf.context.Device.LogicalDevice, vf.Handle, vf.context.Allocator)
		vf.Handle = vk.NullFence
	}
}

func (vf *VulkanFence) CompletedValue() uint64 {
	if vf.pending > vf.completed {
		if vk.GetFenceStatus(vf.context.Device.LogicalDevice, vf.Handle) == vk.Success {
			vf.retire()
		}
	}
	return vf.completed
}

// Wait blocks without a timeout until value has completed.
func (vf *VulkanFence) Wait(value uint64) error {
	if vf.completed >= value {
		return nil
	}
	if vf.pending < value {
		return fmt.Errorf("%w: wait for %d, last signal %d", ErrFenceNeverSignaled, value, vf.pending)
	}
	result := vk.WaitForFences(vf.context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}, vk.True, math.MaxUint64)
	switch result {
	case vk.Success:
		return vf.retire()
	case vk.Timeout:
		core.LogWarn("vk_fence_wait - Timed out")
	case vk.ErrorDeviceLost:
		core.LogError("vk_fence_wait - VK_ERROR_DEVICE_LOST.")
	case vk.ErrorOutOfHostMemory:
		core.LogError("vk_fence_wait - VK_ERROR_OUT_OF_HOST_MEMORY.")
	case vk.ErrorOutOfDeviceMemory:
		core.LogError("vk_fence_wait - VK_ERROR_OUT_OF_DEVICE_MEMORY.")
	default:
		core.LogError("vk_fence_wait - An unknown error has occurred.")
	}
	return resultError("vkWaitForFences", result)
}

// signal submits an empty batch carrying the fence, so it trips once all
// work submitted before it has finished.
func (vf *VulkanFence) signal(queue vk.Queue, value uint64) error {
	if vf.pending > vf.completed {
		// A VkFence can only be in one batch at a time.
		if err := vf.Wait(vf.pending); err != nil {
			return err
		}
	}
	err := vf.context.Locks.SafeCall(QueueManagement, func() error {
		if res := vk.QueueSubmit(queue, 0, nil, vf.Handle); res != vk.Success {
			return resultError("vkQueueSubmit", res)
		}
		return nil
	})
	if err != nil {
		return err
	}
	vf.pending = value
	return nil
}

func (vf *VulkanFence) retire() error {
	vf.completed = vf.pending
	if res := vk.ResetFences(vf.context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}); res != vk.Success {
		err := resultError("vkResetFences", res)
		core.LogError(err.Error())
		return err
	}
	return nil
}
