//go:build mage

package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"golang.org/x/image/draw"
)

const (
	shaderDir  = "assets/shaders"
	textureDir = "assets/textures"
	shaderName = "cube"
)

type Build mg.Namespace

// Compiles the GLSL sources into the SPIR-V modules the renderer loads.
func (Build) Shaders() error {
	return buildShaders()
}

// Writes the two placeholder textures the default scene binds.
func (Build) Textures() error {
	return buildTextures()
}

// Builds shaders, textures and the binary.
func (Build) All() error {
	mg.SerialDeps(Build.Shaders, Build.Textures)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/cubechain", "."), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	for _, stage := range []string{"vert", "frag"} {
		src := fmt.Sprintf("%s.%s", shaderName, stage)
		if _, err := executeCmd("glslc", withArgs(src, "-o", src+".spv"), withDir(shaderDir), withStream()); err != nil {
			return err
		}
	}
	return nil
}

func buildTextures() error {
	if err := os.MkdirAll(textureDir, 0o755); err != nil {
		return err
	}
	if err := writeTexture("texture", checker(8, color.NRGBA{230, 230, 230, 255}, color.NRGBA{40, 40, 60, 255})); err != nil {
		return err
	}
	return writeTexture("reimu", checker(2, color.NRGBA{220, 40, 60, 255}, color.NRGBA{250, 250, 250, 255}))
}

// checker returns a cells x cells board, one pixel per cell.
func checker(cells int, a, b color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, cells, cells))
	for y := 0; y < cells; y++ {
		for x := 0; x < cells; x++ {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, a)
			} else {
				img.SetNRGBA(x, y, b)
			}
		}
	}
	return img
}

func writeTexture(name string, src image.Image) error {
	dst := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	path := filepath.Join(textureDir, name+".png")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return f.Close()
}
