package metadata

import "github.com/google/uuid"

/**
 * @brief Pixel layout of a texture. All formats are 4 channels, 8 bits each.
 */
type TextureFormat int

const (
	/** @brief Linear RGBA, 8 bits per channel. */
	TextureFormatRGBA8 TextureFormat = iota
	/** @brief sRGB-encoded RGBA, 8 bits per channel. */
	TextureFormatRGBA8SRGB
)

/** @brief Bytes per pixel for every supported format. */
const TextureChannelCount uint32 = 4

/**
 * @brief One level of a mip chain. Level 0 is the full-size image.
 */
type MipLevel struct {
	Width  uint32
	Height uint32
	/** @brief Tightly packed rows, Width*Height*4 bytes. */
	Pixels []uint8
}

/**
 * @brief Represents a texture as decoded on the CPU, ready for upload.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID uuid.UUID
	/** @brief The texture name, usually the file name without extension. */
	Name   string
	Width  uint32
	Height uint32
	Format TextureFormat
	/** @brief The mip chain, largest first. Never empty for a valid texture. */
	Mips []MipLevel
}

/**
 * @brief The number of mip levels in the chain.
 */
func (t *Texture) MipLevels() uint32 {
	return uint32(len(t.Mips))
}

/**
 * @brief Total size in bytes of every mip level.
 */
func (t *Texture) ByteSize() uint64 {
	var size uint64
	for _, m := range t.Mips {
		size += uint64(len(m.Pixels))
	}
	return size
}
