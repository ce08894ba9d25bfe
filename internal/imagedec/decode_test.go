package imagedec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/mediastore/internal/resource"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}))
	return buf.Bytes()
}

// checker returns a w x h NRGBA image alternating white and black pixels,
// with the top-left pixel half transparent.
func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{A: 0xff})
			}
		}
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x80})
	return img
}

func TestDecode_RGB565(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0xff, A: 0xff})
	img.SetNRGBA(1, 0, color.NRGBA{B: 0xff, A: 0xff})

	out, err := Decode(bytes.NewReader(encodePNG(t, img)), Options{Format: RGB565})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Width)
	assert.Equal(t, 1, out.Height)
	assert.Equal(t, 4, out.Stride)
	assert.Equal(t, []byte{0xf8, 0x00, 0x00, 0x1f}, out.Data)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, out.At(0, 0))
	assert.Equal(t, color.NRGBA{B: 0xff, A: 0xff}, out.At(1, 0))
}

func TestDecode_RGB565WithAlpha(t *testing.T) {
	out, err := Decode(bytes.NewReader(encodePNG(t, checker(2, 2))), Options{
		Format:       RGB565,
		Transparency: AlphaChannel,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, out.BytesPerPixel())
	assert.Equal(t, 6, out.Stride)
	assert.Equal(t, uint8(0x80), out.At(0, 0).A)
	assert.Equal(t, uint8(0xff), out.At(1, 0).A)
}

func TestDecode_Grayscale(t *testing.T) {
	out, err := Decode(bytes.NewReader(encodePNG(t, checker(3, 1))), Options{Format: Grayscale})
	require.NoError(t, err)

	assert.Equal(t, 3, out.Stride)
	assert.Equal(t, []byte{0xff, 0x00, 0xff}, out.Data)
}

func TestDecode_BinaryPacksBits(t *testing.T) {
	out, err := Decode(bytes.NewReader(encodePNG(t, checker(10, 2))), Options{Format: Binary})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Stride, "10 pixels need two bytes per row")
	assert.Equal(t, []byte{0xaa, 0x80, 0x55, 0x40}, out.Data)
	assert.Equal(t, 0, out.BytesPerPixel())
}

func TestDecode_ResizeMatchesTargetExactly(t *testing.T) {
	tests := []Size{{4, 4}, {1, 1}, {7, 3}, {16, 9}}
	data := encodePNG(t, checker(8, 8))
	for _, target := range tests {
		t.Run(target.String(), func(t *testing.T) {
			for _, f := range []PixelFormat{RGB565, Grayscale, Binary} {
				out, err := Decode(bytes.NewReader(data), Options{Format: f, Resize: &target})
				require.NoError(t, err)
				assert.Equal(t, target.Width, out.Width, f.String())
				assert.Equal(t, target.Height, out.Height, f.String())
			}
		})
	}
}

func TestDecode_BinaryWithAlphaIsUnsupported(t *testing.T) {
	_, err := Decode(bytes.NewReader(encodePNG(t, checker(2, 2))), Options{
		Format:       Binary,
		Transparency: AlphaChannel,
	})
	assert.ErrorIs(t, err, resource.ErrUnsupportedFormat)
}

func TestDecode_AlphaRequiresAlphaSource(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	for _, data := range [][]byte{encodePNG(t, gray), encodeJPEG(t, checker(2, 2))} {
		_, err := Decode(bytes.NewReader(data), Options{Format: RGB565, Transparency: AlphaChannel})
		assert.ErrorIs(t, err, resource.ErrUnsupportedFormat)
	}
}

func TestDecode_CorruptData(t *testing.T) {
	data := encodePNG(t, checker(4, 4))
	_, err := Decode(bytes.NewReader(data[:len(data)/2]), Options{Format: RGB565})
	assert.ErrorIs(t, err, resource.ErrCorruptData)

	_, err = Decode(bytes.NewReader(nil), Options{Format: RGB565})
	assert.ErrorIs(t, err, resource.ErrCorruptData)
}

func TestDecode_UnknownEncodingIsUnsupported(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not an image")), Options{Format: RGB565})
	assert.ErrorIs(t, err, resource.ErrUnsupportedFormat)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("card removed") }

func TestDecode_ReadFaultIsIOError(t *testing.T) {
	_, err := Decode(failingReader{}, Options{Format: RGB565})
	assert.ErrorIs(t, err, resource.ErrIO)
}

func TestDecode_InvalidOptions(t *testing.T) {
	data := encodePNG(t, checker(2, 2))
	_, err := Decode(bytes.NewReader(data), Options{Format: PixelFormat(9)})
	assert.ErrorIs(t, err, resource.ErrUnsupportedFormat)

	_, err = Decode(bytes.NewReader(data), Options{Format: RGB565, Resize: &Size{Width: 0, Height: 4}})
	assert.ErrorIs(t, err, resource.ErrUnsupportedFormat)
}

func TestDecodedImage_ToImage(t *testing.T) {
	out, err := Decode(bytes.NewReader(encodePNG(t, checker(3, 3))), Options{Format: Binary})
	require.NoError(t, err)

	img := out.ToImage()
	assert.Equal(t, image.Rect(0, 0, 3, 3), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{A: 0xff}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{}, out.At(-1, 0))
}
