package vulkan

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/renderer"
)

var ErrNoPipeline = errors.New("no pipeline bound")

// VulkanCommandList records one frame into a primary command buffer. Errors
// from the recording calls are kept and reported by Close.
type VulkanCommandList struct {
	context *VulkanContext
	buffer  *VulkanCommandBuffer

	pipeline *VulkanPipeline
	err      error
}

func CommandListCreate(context *VulkanContext) (*VulkanCommandList, error) {
	buffer, err := NewVulkanCommandBuffer(context, context.Device.GraphicsCommandPool, true)
	if err != nil {
		return nil, err
	}
	return &VulkanCommandList{context: context, buffer: buffer}, nil
}

func (l *VulkanCommandList) fail(err error) {
	if l.err == nil {
		l.err = err
	}
}

func (l *VulkanCommandList) recording() bool {
	switch l.buffer.State {
	case COMMAND_BUFFER_STATE_RECORDING, COMMAND_BUFFER_STATE_IN_RENDER_PASS:
		return true
	}
	l.fail(ErrCommandBufferState)
	return false
}

func (l *VulkanCommandList) Reset() error {
	if l.buffer.State != COMMAND_BUFFER_STATE_READY {
		if err := l.buffer.Reset(); err != nil {
			return err
		}
	}
	l.pipeline = nil
	l.err = nil
	return l.buffer.Begin(false, false, false)
}

func (l *VulkanCommandList) Close() error {
	if l.buffer.State == COMMAND_BUFFER_STATE_IN_RENDER_PASS {
		l.fail(fmt.Errorf("%w: render pass still open", ErrCommandBufferState))
		l.context.MainRenderpass.RenderpassEnd(l.buffer)
	}
	if err := l.buffer.End(); err != nil {
		return err
	}
	return l.err
}

// ResourceBarrier moves a swapchain image between the layouts that stand for
// the two resource states.
func (l *VulkanCommandList) ResourceBarrier(backBuffer uint32, barrier renderer.Barrier) {
	if !l.recording() {
		return
	}
	images := l.context.Swapchain.Images
	if backBuffer >= uint32(len(images)) {
		l.fail(fmt.Errorf("back buffer %d out of range", backBuffer))
		return
	}

	imageBarrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               images[backBuffer],
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	var srcStage, dstStage vk.PipelineStageFlags
	switch {
	case barrier.Before == renderer.ResourceStatePresentable && barrier.After == renderer.ResourceStateRenderTarget:
		// The previous contents are cleared anyway.
		imageBarrier.OldLayout = vk.ImageLayoutUndefined
		imageBarrier.NewLayout = vk.ImageLayoutColorAttachmentOptimal
		imageBarrier.DstAccessMask = vk.AccessFlags(vk.AccessColorAttachmentWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	case barrier.Before == renderer.ResourceStateRenderTarget && barrier.After == renderer.ResourceStatePresentable:
		imageBarrier.OldLayout = vk.ImageLayoutColorAttachmentOptimal
		imageBarrier.NewLayout = vk.ImageLayoutPresentSrc
		imageBarrier.SrcAccessMask = vk.AccessFlags(vk.AccessColorAttachmentWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
	default:
		l.fail(fmt.Errorf("%w: %s -> %s", renderer.ErrInvalidTransition, barrier.Before, barrier.After))
		return
	}
	vk.CmdPipelineBarrier(l.buffer.Handle, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{imageBarrier})
}

func (l *VulkanCommandList) BeginRenderTarget(backBuffer uint32, clear renderer.ClearValues) {
	if !l.recording() {
		return
	}
	framebuffers := l.context.Swapchain.Framebuffers
	if backBuffer >= uint32(len(framebuffers)) {
		l.fail(fmt.Errorf("back buffer %d out of range", backBuffer))
		return
	}
	width, height := l.context.Swapchain.Extent()
	l.context.MainRenderpass.RenderpassBegin(l.buffer, framebuffers[backBuffer].Handle, width, height, clear.Color, clear.Depth)
}

func (l *VulkanCommandList) EndRenderTarget() {
	if l.buffer.State != COMMAND_BUFFER_STATE_IN_RENDER_PASS {
		l.fail(fmt.Errorf("%w: no render pass open", ErrCommandBufferState))
		return
	}
	l.context.MainRenderpass.RenderpassEnd(l.buffer)
}

func (l *VulkanCommandList) SetViewport(viewport renderer.Viewport) {
	if !l.recording() {
		return
	}
	vkViewport := vk.Viewport{
		X:        viewport.X,
		Y:        viewport.Y,
		Width:    viewport.Width,
		Height:   viewport.Height,
		MinDepth: viewport.MinDepth,
		MaxDepth: viewport.MaxDepth,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: int32(viewport.X), Y: int32(viewport.Y)},
		Extent: vk.Extent2D{Width: uint32(viewport.Width), Height: uint32(viewport.Height)},
	}
	vk.CmdSetViewport(l.buffer.Handle, 0, 1, []vk.Viewport{vkViewport})
	vk.CmdSetScissor(l.buffer.Handle, 0, 1, []vk.Rect2D{scissor})
}

func (l *VulkanCommandList) SetPipeline(p renderer.Pipeline) {
	if !l.recording() {
		return
	}
	pipeline, ok := p.(*VulkanPipeline)
	if !ok {
		l.fail(fmt.Errorf("vulkan command list cannot bind %T", p))
		return
	}
	vk.CmdBindPipeline(l.buffer.Handle, vk.PipelineBindPointGraphics, pipeline.Handle)
	l.pipeline = pipeline
}

func (l *VulkanCommandList) bindSet(set uint32, ds vk.DescriptorSet) {
	if l.pipeline == nil {
		l.fail(ErrNoPipeline)
		return
	}
	vk.CmdBindDescriptorSets(l.buffer.Handle, vk.PipelineBindPointGraphics, l.pipeline.PipelineLayout,
		set, 1, []vk.DescriptorSet{ds}, 0, nil)
}

func (l *VulkanCommandList) BindConstantBuffer(slot renderer.BindingSlot, buffer renderer.ConstantBuffer) {
	if !l.recording() {
		return
	}
	cb, ok := buffer.(*VulkanConstantBuffer)
	if !ok {
		l.fail(fmt.Errorf("vulkan command list cannot bind %T", buffer))
		return
	}
	l.bindSet(uint32(slot), cb.Set)
}

func (l *VulkanCommandList) BindTexture(t renderer.Texture) {
	if !l.recording() {
		return
	}
	texture, ok := t.(*VulkanTexture)
	if !ok {
		l.fail(fmt.Errorf("vulkan command list cannot bind %T", t))
		return
	}
	l.bindSet(VULKAN_SET_TEXTURE, texture.Set)
}

func (l *VulkanCommandList) BindMesh(m renderer.Mesh) {
	if !l.recording() {
		return
	}
	geometry, ok := m.(*VulkanGeometry)
	if !ok {
		l.fail(fmt.Errorf("vulkan command list cannot bind %T", m))
		return
	}
	vk.CmdBindVertexBuffers(l.buffer.Handle, 0, 1, []vk.Buffer{geometry.VertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(l.buffer.Handle, geometry.IndexBuffer.Handle, 0, vk.IndexTypeUint16)
}

func (l *VulkanCommandList) DrawIndexed(indexCount uint32) {
	if !l.recording() {
		return
	}
	vk.CmdDrawIndexed(l.buffer.Handle, indexCount, 1, 0, 0, 0)
}

func (l *VulkanCommandList) Destroy() {
	if l.buffer != nil {
		l.buffer.Free(l.context, l.context.Device.GraphicsCommandPool)
		l.buffer = nil
	}
}

// VulkanQueue is the graphics queue. Submissions wait for the acquired image
// and signal the present semaphore.
type VulkanQueue struct {
	context *VulkanContext
}

func (q *VulkanQueue) Submit(list renderer.CommandList) error {
	l, ok := list.(*VulkanCommandList)
	if !ok {
		return fmt.Errorf("vulkan queue cannot submit %T", list)
	}
	if l.buffer.State != COMMAND_BUFFER_STATE_RECORDING_ENDED {
		return fmt.Errorf("%w: submit before close", ErrCommandBufferState)
	}

	context := q.context
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{l.buffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{context.QueueCompleteSemaphore},
	}
	if context.AcquirePending {
		submitInfo.WaitSemaphoreCount = 1
		submitInfo.PWaitSemaphores = []vk.Semaphore{context.ImageAvailableSemaphore}
		// Nothing before the color output needs the image.
		submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}
	}

	err := context.Locks.SafeCall(QueueManagement, func() error {
		if res := vk.QueueSubmit(context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence); res != vk.Success {
			return resultError("vkQueueSubmit", res)
		}
		return nil
	})
	if err != nil {
		core.LogError("queue submit failed: %s", err)
		return err
	}
	l.buffer.UpdateSubmitted()
	context.AcquirePending = false
	context.PresentPending = true
	return nil
}

func (q *VulkanQueue) Signal(f renderer.Fence, value uint64) error {
	fence, ok := f.(*VulkanFence)
	if !ok {
		return fmt.Errorf("vulkan queue cannot signal %T", f)
	}
	return fence.signal(q.context.Device.GraphicsQueue, value)
}
