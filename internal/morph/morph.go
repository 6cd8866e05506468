// Package morph provides the flat morphological operators used to derive
// the gradient image consumed by the border-gradient attribute.
package morph

import (
	"github.com/ctree-analysis/pkg/image"
	"github.com/ctree-analysis/pkg/neighborhood"
)

// Erode returns the flat erosion of im by the structuring element se: each
// output pixel is the minimum of the pixel and its in-bounds se-neighbors.
func Erode[T image.Pixel](im *image.Image[T], se *neighborhood.Neighborhood) *image.Image[T] {
	out := im.Clone()
	points := se.Points()
	im.ForEach(func(x, y, z, off int) {
		min := im.AtOffset(off)
		for _, p := range points {
			nx, ny, nz := x+p.DX, y+p.DY, z+p.DZ
			if !im.Contains(nx, ny, nz) {
				continue
			}
			if v := im.At(nx, ny, nz); v < min {
				min = v
			}
		}
		out.SetOffset(off, min)
	})
	return out
}

// Dilate returns the flat dilation of im by se: each output pixel is the
// maximum of the pixel and its in-bounds se-neighbors.
func Dilate[T image.Pixel](im *image.Image[T], se *neighborhood.Neighborhood) *image.Image[T] {
	out := im.Clone()
	points := se.Points()
	im.ForEach(func(x, y, z, off int) {
		max := im.AtOffset(off)
		for _, p := range points {
			nx, ny, nz := x+p.DX, y+p.DY, z+p.DZ
			if !im.Contains(nx, ny, nz) {
				continue
			}
			if v := im.At(nx, ny, nz); v > max {
				max = v
			}
		}
		out.SetOffset(off, max)
	})
	return out
}

// Open returns the erosion followed by dilation.
func Open[T image.Pixel](im *image.Image[T], se *neighborhood.Neighborhood) *image.Image[T] {
	return Dilate(Erode(im, se), se)
}

// Close returns the dilation followed by erosion.
func Close[T image.Pixel](im *image.Image[T], se *neighborhood.Neighborhood) *image.Image[T] {
	return Erode(Dilate(im, se), se)
}

// Gradient returns the morphological gradient: dilation minus erosion.
func Gradient[T image.Pixel](im *image.Image[T], se *neighborhood.Neighborhood) *image.Image[T] {
	diff, err := Dilate(im, se).Sub(Erode(im, se))
	if err != nil {
		// Dilation and erosion share im's dimensions.
		panic(err)
	}
	return diff
}
