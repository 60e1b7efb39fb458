package metadata

type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeBack
	CullModeFront
)

type CompareOp int

const (
	CompareOpLess CompareOp = iota
	CompareOpLessOrEqual
	CompareOpAlways
)

// PipelineConfig is the fixed state of a graphics pipeline. The resource
// layout is always material buffer, texture, transform buffer.
type PipelineConfig struct {
	Name         string
	Stages       []ShaderModule
	CullMode     CullMode
	DepthCompare CompareOp
	DepthWrite   bool
	// VertexStride is the size of one vertex in bytes.
	VertexStride uint32
}
