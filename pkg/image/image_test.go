package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Dimensions(t *testing.T) {
	im, err := New[uint8](4, 3, 2)
	require.NoError(t, err)

	assert.Equal(t, 4, im.Width())
	assert.Equal(t, 3, im.Height())
	assert.Equal(t, 2, im.Depth())
	assert.Equal(t, 24, im.Len())

	_, err = New[uint8](0, 3, 1)
	assert.Error(t, err)
	_, err = New[uint8](3, -1, 1)
	assert.Error(t, err)
}

func TestOffsetCoordsRoundTrip(t *testing.T) {
	im, err := New[uint8](5, 4, 3)
	require.NoError(t, err)

	for z := 0; z < 3; z++ {
		for y := 0; y < 4; y++ {
			for x := 0; x < 5; x++ {
				off := im.Offset(x, y, z)
				gx, gy, gz := im.Coords(off)
				require.Equal(t, x, gx)
				require.Equal(t, y, gy)
				require.Equal(t, z, gz)
			}
		}
	}
}

func TestContains(t *testing.T) {
	im, _ := New2D[uint8](3, 3)

	assert.True(t, im.Contains(0, 0, 0))
	assert.True(t, im.Contains(2, 2, 0))
	assert.False(t, im.Contains(3, 0, 0))
	assert.False(t, im.Contains(-1, 0, 0))
	assert.False(t, im.Contains(0, 0, 1))
}

func TestFillAndMinMax(t *testing.T) {
	im, _ := New2D[uint16](3, 2)
	im.Fill(7)
	im.Set(2, 1, 0, 42)
	im.Set(0, 0, 0, 3)

	min, max := im.MinMax()
	assert.Equal(t, uint16(3), min)
	assert.Equal(t, uint16(42), max)
	assert.Equal(t, uint16(3), im.Min())
	assert.Equal(t, uint16(42), im.Max())
}

func TestForEach_Order(t *testing.T) {
	im, _ := New[uint8](2, 2, 2)
	var offsets []int
	im.ForEach(func(x, y, z, off int) {
		require.Equal(t, im.Offset(x, y, z), off)
		offsets = append(offsets, off)
	})
	require.Len(t, offsets, 8)
	for i, off := range offsets {
		assert.Equal(t, i, off)
	}
}

func TestCopyAt(t *testing.T) {
	dst, _ := New2D[uint8](4, 4)
	src, _ := New2D[uint8](2, 2)
	src.Fill(9)

	dst.CopyAt(src, 1, 2, 0)

	assert.Equal(t, uint8(9), dst.At(1, 2, 0))
	assert.Equal(t, uint8(9), dst.At(2, 3, 0))
	assert.Equal(t, uint8(0), dst.At(0, 0, 0))
	assert.Equal(t, uint8(0), dst.At(3, 1, 0))
}

func TestCopyAt_ClipsOutOfBounds(t *testing.T) {
	dst, _ := New2D[uint8](2, 2)
	src, _ := New2D[uint8](3, 3)
	src.Fill(5)

	dst.CopyAt(src, 1, 1, 0)
	assert.Equal(t, uint8(5), dst.At(1, 1, 0))
	assert.Equal(t, uint8(0), dst.At(0, 0, 0))
}

func TestCrop(t *testing.T) {
	im, _ := New2D[uint8](4, 3)
	im.ForEach(func(x, y, z, off int) {
		im.SetOffset(off, uint8(off))
	})

	sub, err := im.Crop(1, 3, 1, 3, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, sub.Width())
	assert.Equal(t, 2, sub.Height())
	assert.Equal(t, im.At(1, 1, 0), sub.At(0, 0, 0))
	assert.Equal(t, im.At(2, 2, 0), sub.At(1, 1, 0))

	_, err = im.Crop(0, 5, 0, 3, 0, 1)
	assert.Error(t, err)
	_, err = im.Crop(2, 2, 0, 3, 0, 1)
	assert.Error(t, err)
}

func TestSub_ClampsAtZero(t *testing.T) {
	a, _ := New2D[uint8](2, 1)
	b, _ := New2D[uint8](2, 1)
	a.SetOffset(0, 10)
	b.SetOffset(0, 3)
	a.SetOffset(1, 2)
	b.SetOffset(1, 5)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), diff.AtOffset(0))
	assert.Equal(t, uint8(0), diff.AtOffset(1))

	c, _ := New2D[uint8](3, 1)
	_, err = a.Sub(c)
	assert.Error(t, err)
}

func TestInvert(t *testing.T) {
	im, _ := New2D[uint8](2, 1)
	im.SetOffset(0, 0)
	im.SetOffset(1, 200)

	inv := im.Invert()
	assert.Equal(t, uint8(255), inv.AtOffset(0))
	assert.Equal(t, uint8(55), inv.AtOffset(1))

	// Involution
	assert.True(t, inv.Invert().Equal(im))
}

func TestPadBorder(t *testing.T) {
	im, _ := New2D[uint8](2, 2)
	im.Fill(5)

	padded, err := im.PadBorder([3]int{1, 1, 0}, [3]int{1, 1, 0}, 99)
	require.NoError(t, err)

	assert.Equal(t, 4, padded.Width())
	assert.Equal(t, 4, padded.Height())
	assert.Equal(t, 1, padded.Depth())

	assert.Equal(t, uint8(99), padded.At(0, 0, 0))
	assert.Equal(t, uint8(99), padded.At(3, 3, 0))
	assert.Equal(t, uint8(5), padded.At(1, 1, 0))
	assert.Equal(t, uint8(5), padded.At(2, 2, 0))

	_, err = im.PadBorder([3]int{-1, 0, 0}, [3]int{0, 0, 0}, 0)
	assert.Error(t, err)
}

func TestCloneAndEqual(t *testing.T) {
	im, _ := New2D[uint16](3, 3)
	im.Set(1, 1, 0, 500)

	cp := im.Clone()
	assert.True(t, im.Equal(cp))

	cp.Set(0, 0, 0, 1)
	assert.False(t, im.Equal(cp))

	other, _ := New2D[uint16](3, 2)
	assert.False(t, im.Equal(other))
}

func TestSentinels(t *testing.T) {
	assert.Equal(t, uint8(255), MaxValue[uint8]())
	assert.Equal(t, uint16(65535), MaxValue[uint16]())
	assert.Equal(t, uint8(0), MinValue[uint8]())
}

func TestFromSlice(t *testing.T) {
	im, err := FromSlice(2, 2, 1, []uint8{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, uint8(3), im.At(0, 1, 0))

	_, err = FromSlice(2, 2, 1, []uint8{1, 2})
	assert.Error(t, err)
}
