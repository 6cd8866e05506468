package image

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ctree-analysis/pkg/errors"
)

// creatorComment is emitted as the header comment of every written file.
const creatorComment = "#CREATOR: ctree-analysis"

// RGB is a packed 8-bit color sample for PPM (P6) images.
type RGB struct {
	R, G, B uint8
}

// RGBImage is a dense 2D buffer of RGB pixels.
type RGBImage struct {
	width  int
	height int
	pix    []RGB
}

// NewRGB allocates a (w, h) RGB image.
func NewRGB(w, h int) (*RGBImage, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", w, h)
	}
	return &RGBImage{width: w, height: h, pix: make([]RGB, w*h)}, nil
}

// Width returns the X extent.
func (im *RGBImage) Width() int { return im.width }

// Height returns the Y extent.
func (im *RGBImage) Height() int { return im.height }

// Pixels returns the backing pixel slice in row-major order.
func (im *RGBImage) Pixels() []RGB { return im.pix }

// At returns the pixel at (x, y).
func (im *RGBImage) At(x, y int) RGB { return im.pix[x+y*im.width] }

// Set writes the pixel at (x, y).
func (im *RGBImage) Set(x, y int, v RGB) { im.pix[x+y*im.width] = v }

// pnmHeader parses whitespace-delimited ASCII header tokens, skipping '#'
// comment lines per the PNM spec.
type pnmHeader struct {
	r *bufio.Reader
}

func (h *pnmHeader) token() (string, error) {
	var tok []byte
	inComment := false
	for {
		b, err := h.r.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			return "", err
		}
		if inComment {
			if b == '\n' {
				inComment = false
			}
			continue
		}
		switch {
		case b == '#':
			if len(tok) > 0 {
				return string(tok), nil
			}
			inComment = true
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}

func (h *pnmHeader) uint() (int, error) {
	tok, err := h.token()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-numeric header token %q", tok)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// readHeader parses "<magic> W H colormax" and positions the reader at the
// first raster byte.
func readHeader(r *bufio.Reader, wantMagic string) (w, h, colormax int, err error) {
	hdr := &pnmHeader{r: r}

	magic, err := hdr.token()
	if err != nil {
		return 0, 0, 0, errors.Wrap(errors.CodeParseError, "failed to read magic", err)
	}
	if magic != wantMagic {
		return 0, 0, 0, errors.Wrap(errors.CodeInvalidInput,
			fmt.Sprintf("unsupported magic %q, want %q", magic, wantMagic), nil)
	}
	if w, err = hdr.uint(); err != nil {
		return 0, 0, 0, errors.Wrap(errors.CodeParseError, "failed to read width", err)
	}
	if h, err = hdr.uint(); err != nil {
		return 0, 0, 0, errors.Wrap(errors.CodeParseError, "failed to read height", err)
	}
	if colormax, err = hdr.uint(); err != nil {
		return 0, 0, 0, errors.Wrap(errors.CodeParseError, "failed to read colormax", err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, 0, errors.Wrap(errors.CodeInvalidInput,
			fmt.Sprintf("invalid raster dimensions %dx%d", w, h), nil)
	}
	return w, h, colormax, nil
}

// ReadPGM8 reads a binary P5 image with one byte per sample.
// colormax must be below 256.
func ReadPGM8(r io.Reader) (*Image[uint8], error) {
	br := bufio.NewReader(r)
	w, h, colormax, err := readHeader(br, "P5")
	if err != nil {
		return nil, err
	}
	if colormax >= 256 {
		return nil, errors.Wrap(errors.CodeInvalidInput,
			fmt.Sprintf("colormax %d out of range for 8-bit PGM", colormax), nil)
	}

	im, err := New2D[uint8](w, h)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidInput, "bad raster dimensions", err)
	}
	if _, err := io.ReadFull(br, im.pix); err != nil {
		return nil, errors.Wrap(errors.CodeParseError, "truncated raster", err)
	}
	return im, nil
}

// ReadPGM16 reads a binary P5 image with two big-endian bytes per sample.
func ReadPGM16(r io.Reader) (*Image[uint16], error) {
	br := bufio.NewReader(r)
	w, h, _, err := readHeader(br, "P5")
	if err != nil {
		return nil, err
	}

	im, err := New2D[uint16](w, h)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidInput, "bad raster dimensions", err)
	}
	raw := make([]byte, 2*w*h)
	if _, err := io.ReadFull(br, raw); err != nil {
		return nil, errors.Wrap(errors.CodeParseError, "truncated raster", err)
	}
	for i := range im.pix {
		im.pix[i] = binary.BigEndian.Uint16(raw[2*i:])
	}
	return im, nil
}

// ReadPPM reads a binary P6 RGB image with one byte per channel.
func ReadPPM(r io.Reader) (*RGBImage, error) {
	br := bufio.NewReader(r)
	w, h, colormax, err := readHeader(br, "P6")
	if err != nil {
		return nil, err
	}
	if colormax >= 256 {
		return nil, errors.Wrap(errors.CodeInvalidInput,
			fmt.Sprintf("colormax %d out of range for 8-bit PPM", colormax), nil)
	}

	im, err := NewRGB(w, h)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidInput, "bad raster dimensions", err)
	}
	raw := make([]byte, 3*w*h)
	if _, err := io.ReadFull(br, raw); err != nil {
		return nil, errors.Wrap(errors.CodeParseError, "truncated raster", err)
	}
	for i := range im.pix {
		im.pix[i] = RGB{R: raw[3*i], G: raw[3*i+1], B: raw[3*i+2]}
	}
	return im, nil
}

// WritePGM8 writes a binary P5 image with colormax 255.
func WritePGM8(w io.Writer, im *Image[uint8]) error {
	if im.depth != 1 {
		return errors.Wrap(errors.CodeInvalidInput, "PGM output requires a 2D image", nil)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P5\n%s\n%d %d\n255\n", creatorComment, im.width, im.height)
	if _, err := bw.Write(im.pix); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

// WritePGM16 writes a binary P5 image with big-endian samples and the
// image's maximum value as colormax.
func WritePGM16(w io.Writer, im *Image[uint16]) error {
	if im.depth != 1 {
		return errors.Wrap(errors.CodeInvalidInput, "PGM output requires a 2D image", nil)
	}
	colormax := int(im.Max())
	if colormax == 0 {
		colormax = 1
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P5\n%s\n%d %d\n%d\n", creatorComment, im.width, im.height, colormax)
	buf := make([]byte, 2)
	for _, v := range im.pix {
		binary.BigEndian.PutUint16(buf, v)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

// WritePPM writes a binary P6 RGB image with colormax 255.
func WritePPM(w io.Writer, im *RGBImage) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P6\n%s\n%d %d\n255\n", creatorComment, im.width, im.height)
	for _, v := range im.pix {
		if _, err := bw.Write([]byte{v.R, v.G, v.B}); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

// LoadPGM8 reads an 8-bit PGM from disk.
func LoadPGM8(path string) (*Image[uint8], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeNotFound, "failed to open image", err)
	}
	defer f.Close()
	return ReadPGM8(f)
}

// LoadPGM16 reads a 16-bit PGM from disk.
func LoadPGM16(path string) (*Image[uint16], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeNotFound, "failed to open image", err)
	}
	defer f.Close()
	return ReadPGM16(f)
}

// SavePGM8 writes an 8-bit PGM to disk.
func SavePGM8(path string, im *Image[uint8]) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to create image file", err)
	}
	defer f.Close()
	return WritePGM8(f, im)
}

// SavePGM16 writes a 16-bit PGM to disk.
func SavePGM16(path string, im *Image[uint16]) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.CodeStorageError, "failed to create image file", err)
	}
	defer f.Close()
	return WritePGM16(f, im)
}
