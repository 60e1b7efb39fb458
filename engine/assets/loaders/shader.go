package loaders

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
)

const SpirvMagic uint32 = 0x07230203

var (
	ErrInvalidSpirv = errors.New("invalid SPIR-V module")
	ErrUnknownStage = errors.New("unknown shader stage")
)

type ShaderLoader struct{}

// Load reads a compiled module named <name>.<stage>.spv. The stage comes
// from params when it is a metadata.ShaderStage, otherwise from the file name.
func (sl *ShaderLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if assetType != metadata.ResourceTypeShader {
		return nil, fmt.Errorf("shader loader cannot load %s assets", assetType)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	code, err := BytesToBytecode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	name, stage, err := splitShaderName(path)
	if s, ok := params.(metadata.ShaderStage); ok {
		stage, err = s, nil
	}
	if err != nil {
		return nil, err
	}

	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data: &metadata.ShaderModule{
			Name:       name,
			Stage:      stage,
			EntryPoint: "main",
			Code:       code,
		},
	}, nil
}

// BytesToBytecode packs little-endian SPIR-V bytes into words and checks the
// module header.
func BytesToBytecode(b []byte) ([]uint32, error) {
	if len(b) < 20 || len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidSpirv, len(b))
	}
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}
	if byteCode[0] != SpirvMagic {
		return nil, fmt.Errorf("%w: bad magic 0x%08x", ErrInvalidSpirv, byteCode[0])
	}
	return byteCode, nil
}

// splitShaderName turns "cube.vert.spv" into ("cube", vertex).
func splitShaderName(path string) (string, metadata.ShaderStage, error) {
	base := strings.TrimSuffix(filepath.Base(path), ".spv")
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	switch strings.TrimPrefix(ext, ".") {
	case metadata.ShaderStageVertex.String():
		return name, metadata.ShaderStageVertex, nil
	case metadata.ShaderStageFragment.String():
		return name, metadata.ShaderStageFragment, nil
	}
	return name, 0, fmt.Errorf("%w: %s", ErrUnknownStage, path)
}
