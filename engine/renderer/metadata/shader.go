package metadata

/**
 * @brief Shader stages used by the cube pipeline.
 */
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vert"
	case ShaderStageFragment:
		return "frag"
	}
	return "unknown"
}

/**
 * @brief A compiled shader module. Code is SPIR-V words.
 */
type ShaderModule struct {
	Name       string
	Stage      ShaderStage
	EntryPoint string
	Code       []uint32
}
