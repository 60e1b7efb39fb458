package loaders

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
	"golang.org/x/image/draw"
)

var ErrEmptyImage = errors.New("image has no pixels")

// TextureLoader decodes PNG files into RGBA textures. Every level down to 1x1
// is generated when GenerateMips is set.
type TextureLoader struct {
	GenerateMips bool
	SRGB         bool
}

func (tl *TextureLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if assetType != metadata.ResourceTypeTexture {
		return nil, fmt.Errorf("texture loader cannot load %s assets", assetType)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	name, ok := params.(string)
	if !ok || name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	tex, err := tl.FromImage(name, img)
	if err != nil {
		return nil, fmt.Errorf("failed to build texture %s: %w", name, err)
	}
	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		DataSize: tex.ByteSize(),
		Data:     tex,
	}, nil
}

// FromImage converts img to tightly packed RGBA and builds the mip chain.
func (tl *TextureLoader) FromImage(name string, img image.Image) (*metadata.Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}

	base := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(base, base.Bounds(), img, b.Min, draw.Src)

	format := metadata.TextureFormatRGBA8
	if tl.SRGB {
		format = metadata.TextureFormatRGBA8SRGB
	}

	levels := 1
	if tl.GenerateMips {
		levels = MipCount(uint32(b.Dx()), uint32(b.Dy()))
	}

	mips := make([]metadata.MipLevel, 0, levels)
	mips = append(mips, mipFromRGBA(base))
	prev := base
	for i := 1; i < levels; i++ {
		w := max(prev.Bounds().Dx()/2, 1)
		h := max(prev.Bounds().Dy()/2, 1)
		next := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(next, next.Bounds(), prev, prev.Bounds(), draw.Src, nil)
		mips = append(mips, mipFromRGBA(next))
		prev = next
	}

	return &metadata.Texture{
		ID:     uuid.New(),
		Name:   name,
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Format: format,
		Mips:   mips,
	}, nil
}

// MipCount is floor(log2(max(w, h))) + 1.
func MipCount(width, height uint32) int {
	size := max(width, height)
	count := 1
	for size > 1 {
		size >>= 1
		count++
	}
	return count
}

func mipFromRGBA(img *image.RGBA) metadata.MipLevel {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	pixels := make([]uint8, w*h*int(metadata.TextureChannelCount))
	rowSize := w * int(metadata.TextureChannelCount)
	for y := 0; y < h; y++ {
		copy(pixels[y*rowSize:(y+1)*rowSize], img.Pix[y*img.Stride:y*img.Stride+rowSize])
	}
	return metadata.MipLevel{
		Width:  uint32(w),
		Height: uint32(h),
		Pixels: pixels,
	}
}
