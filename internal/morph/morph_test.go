package morph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctree-analysis/pkg/image"
	"github.com/ctree-analysis/pkg/neighborhood"
)

func peakImage(t *testing.T) *image.Image[uint8] {
	im, err := image.FromSlice(3, 3, 1, []uint8{
		0, 0, 0,
		0, 5, 0,
		0, 0, 0,
	})
	require.NoError(t, err)
	return im
}

func TestErode_RemovesPeak(t *testing.T) {
	im := peakImage(t)
	out := Erode(im, neighborhood.Make2DN8())

	for i := 0; i < 9; i++ {
		assert.Equal(t, uint8(0), out.AtOffset(i))
	}
}

func TestDilate_SpreadsPeak(t *testing.T) {
	im := peakImage(t)
	out := Dilate(im, neighborhood.Make2DN8())

	for i := 0; i < 9; i++ {
		assert.Equal(t, uint8(5), out.AtOffset(i))
	}
}

func TestGradient_FlatImageIsZero(t *testing.T) {
	im, _ := image.New2D[uint8](4, 4)
	im.Fill(9)

	out := Gradient(im, neighborhood.Make2DN8())
	assert.Equal(t, uint8(0), out.Max())
}

func TestGradient_Step(t *testing.T) {
	im, err := image.FromSlice(4, 1, 1, []uint8{1, 1, 3, 3})
	require.NoError(t, err)

	out := Gradient(im, neighborhood.Make2DN4())
	// Pixels adjacent to the step see dilation 3, erosion 1.
	assert.Equal(t, uint8(0), out.At(0, 0, 0))
	assert.Equal(t, uint8(2), out.At(1, 0, 0))
	assert.Equal(t, uint8(2), out.At(2, 0, 0))
	assert.Equal(t, uint8(0), out.At(3, 0, 0))
}

func TestOpenClose_FlatInvariance(t *testing.T) {
	im, _ := image.New2D[uint8](5, 5)
	im.Fill(7)
	se := neighborhood.Make2DN8()

	assert.True(t, Open(im, se).Equal(im))
	assert.True(t, Close(im, se).Equal(im))
}

func TestOpen_RemovesSinglePixelPeak(t *testing.T) {
	im := peakImage(t)
	out := Open(im, neighborhood.Make2DN8())
	assert.Equal(t, uint8(0), out.Max())
}
