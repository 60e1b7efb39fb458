package vulkan

/**
 * @brief Number of swapchain images requested. The surface may force more.
 */
const VULKAN_BACK_BUFFER_COUNT uint32 = 2

/**
 * @brief Max number of sampled textures. Sizes the descriptor pool.
 */
const VULKAN_MAX_TEXTURE_COUNT uint32 = 2056

/**
 * @brief Max number of constant buffers (material and per-object transforms).
 */
const VULKAN_MAX_CONSTANT_BUFFER_COUNT uint32 = 2056

/**
 * @brief Descriptor set indices. Each set has a single binding at 0 and
 * matches renderer.BindingSlot.
 */
const (
	VULKAN_SET_MATERIAL  uint32 = 0
	VULKAN_SET_TEXTURE   uint32 = 1
	VULKAN_SET_TRANSFORM uint32 = 2
	VULKAN_SET_COUNT     uint32 = 3
)
