package metadata

type ResourceType int

/** @brief Resource types the asset manager knows how to load. */
const (
	/** @brief Files the asset manager ignores. */
	ResourceTypeNone ResourceType = iota
	/** @brief PNG images, decoded into a Texture with a full mip chain. */
	ResourceTypeTexture
	/** @brief Compiled SPIR-V shader modules. */
	ResourceTypeShader
)

func (r ResourceType) String() string {
	switch r {
	case ResourceTypeTexture:
		return "texture"
	case ResourceTypeShader:
		return "shader"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data: *Texture or *ShaderModule. */
	Data interface{}
}
