package image

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ctree-analysis/pkg/errors"
)

func TestPGM8_RoundTrip(t *testing.T) {
	im, _ := New2D[uint8](4, 3)
	for i := 0; i < 12; i++ {
		im.SetOffset(i, uint8(i))
	}

	var buf bytes.Buffer
	require.NoError(t, WritePGM8(&buf, im))

	back, err := ReadPGM8(&buf)
	require.NoError(t, err)
	assert.True(t, im.Equal(back))
}

func TestPGM16_RoundTrip(t *testing.T) {
	im, _ := New2D[uint16](3, 2)
	values := []uint16{0, 255, 256, 1000, 65535, 42}
	for i, v := range values {
		im.SetOffset(i, v)
	}

	var buf bytes.Buffer
	require.NoError(t, WritePGM16(&buf, im))

	back, err := ReadPGM16(&buf)
	require.NoError(t, err)
	assert.True(t, im.Equal(back))
}

func TestPPM_RoundTrip(t *testing.T) {
	im, _ := NewRGB(2, 2)
	im.Set(0, 0, RGB{1, 2, 3})
	im.Set(1, 1, RGB{250, 128, 0})

	var buf bytes.Buffer
	require.NoError(t, WritePPM(&buf, im))

	back, err := ReadPPM(&buf)
	require.NoError(t, err)
	assert.Equal(t, im.Pixels(), back.Pixels())
}

func TestReadPGM8_CommentsAndWhitespace(t *testing.T) {
	raw := "P5 # magic\n# a comment line\n  2\t2 # dims\n255\n" + string([]byte{10, 20, 30, 40})

	im, err := ReadPGM8(bytes.NewReader([]byte(raw)))
	require.NoError(t, err)
	assert.Equal(t, 2, im.Width())
	assert.Equal(t, 2, im.Height())
	assert.Equal(t, uint8(10), im.AtOffset(0))
	assert.Equal(t, uint8(40), im.AtOffset(3))
}

func TestReadPGM8_BadMagic(t *testing.T) {
	_, err := ReadPGM8(bytes.NewReader([]byte("P7\n2 2\n255\n....")))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetErrorCode(err))
}

func TestReadPGM8_ColormaxOutOfRange(t *testing.T) {
	_, err := ReadPGM8(bytes.NewReader([]byte("P5\n2 2\n65535\n....")))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetErrorCode(err))
}

func TestReadPGM8_TruncatedRaster(t *testing.T) {
	_, err := ReadPGM8(bytes.NewReader([]byte("P5\n3 3\n255\nab")))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeParseError, apperrors.GetErrorCode(err))
}

func TestReadPGM16_BigEndianRaster(t *testing.T) {
	raw := append([]byte("P5\n1 1\n65535\n"), 0x01, 0x02)
	im, err := ReadPGM16(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), im.AtOffset(0))
}

func TestWritePGM8_HeaderFormat(t *testing.T) {
	im, _ := New2D[uint8](2, 1)
	var buf bytes.Buffer
	require.NoError(t, WritePGM8(&buf, im))

	out := buf.String()
	assert.Contains(t, out, "P5\n")
	assert.Contains(t, out, "#CREATOR:")
	assert.Contains(t, out, "2 1\n255\n")
}

func TestLoadSavePGM8_File(t *testing.T) {
	im, _ := New2D[uint8](4, 3)
	for i := 0; i < 12; i++ {
		im.SetOffset(i, uint8(i))
	}

	path := t.TempDir() + "/pattern.pgm"
	require.NoError(t, SavePGM8(path, im))

	back, err := LoadPGM8(path)
	require.NoError(t, err)
	assert.True(t, im.Equal(back))

	_, err = LoadPGM8(t.TempDir() + "/missing.pgm")
	assert.Error(t, err)
}
