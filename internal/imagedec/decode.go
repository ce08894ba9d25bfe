// Package imagedec turns encoded image bytes into display-ready pixel
// buffers. It has no storage responsibility: callers hand it a reader.
package imagedec

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/llehouerou/mediastore/internal/resource"
)

// binaryThreshold is the luminance at or above which a BINARY pixel is set.
const binaryThreshold = 128

// Options are the declared decode parameters of an image resource.
type Options struct {
	Format       PixelFormat
	Resize       *Size
	Transparency Transparency
}

// DecodedImage is a pixel buffer ready for a display driver.
type DecodedImage struct {
	Width        int
	Height       int
	Format       PixelFormat
	Transparency Transparency
	// Stride is the number of bytes per row in Data.
	Stride int
	Data   []byte
}

// BytesPerPixel returns the pixel size for RGB565 and GRAYSCALE images,
// including the alpha byte when present. It returns 0 for BINARY.
func (d *DecodedImage) BytesPerPixel() int {
	return bytesPerPixel(d.Format, d.Transparency)
}

func bytesPerPixel(f PixelFormat, t Transparency) int {
	n := 0
	switch f {
	case RGB565:
		n = 2
	case Grayscale:
		n = 1
	case Binary:
		return 0
	}
	if t == AlphaChannel {
		n++
	}
	return n
}

// countingReader records bytes read and the first non-EOF read error so
// that backend faults are not reported as corrupt data.
type countingReader struct {
	r   io.Reader
	n   int64
	err error
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if err != nil && !errors.Is(err, io.EOF) && c.err == nil {
		c.err = err
	}
	return n, err
}

// Decode reads an encoded image from src and converts it to opts.Format.
// No partial image is returned on failure.
func Decode(src io.Reader, opts Options) (*DecodedImage, error) {
	if opts.Transparency == AlphaChannel && !opts.Format.SupportsAlpha() {
		return nil, fmt.Errorf("%w: %s carries no alpha channel", resource.ErrUnsupportedFormat, opts.Format)
	}
	if opts.Format < RGB565 || opts.Format > Binary {
		return nil, fmt.Errorf("%w: pixel format %d", resource.ErrUnsupportedFormat, opts.Format)
	}
	if opts.Resize != nil && (opts.Resize.Width <= 0 || opts.Resize.Height <= 0) {
		return nil, fmt.Errorf("%w: resize target %s", resource.ErrUnsupportedFormat, opts.Resize)
	}

	cr := &countingReader{r: src}
	img, _, err := image.Decode(cr)
	if err != nil {
		switch {
		case cr.err != nil:
			return nil, fmt.Errorf("%w: %w", resource.ErrIO, cr.err)
		case errors.Is(err, image.ErrFormat) && cr.n > 0:
			return nil, fmt.Errorf("%w: %w", resource.ErrUnsupportedFormat, err)
		default:
			return nil, fmt.Errorf("%w: %w", resource.ErrCorruptData, err)
		}
	}

	if opts.Transparency == AlphaChannel && !hasAlpha(img) {
		return nil, fmt.Errorf("%w: source image has no alpha channel", resource.ErrUnsupportedFormat)
	}

	if opts.Resize != nil {
		b := img.Bounds()
		if b.Dx() != opts.Resize.Width || b.Dy() != opts.Resize.Height {
			img = resize.Resize(uint(opts.Resize.Width), uint(opts.Resize.Height), img, resize.NearestNeighbor) //nolint:gosec // validated positive above
		}
	}

	return convert(img, opts.Format, opts.Transparency), nil
}

// hasAlpha reports whether the decoded image's color model carries alpha.
func hasAlpha(img image.Image) bool {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return false
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	}
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model, color.YCbCrModel, color.CMYKModel:
		return false
	}
	return true
}

func convert(img image.Image, f PixelFormat, t Transparency) *DecodedImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &DecodedImage{Width: w, Height: h, Format: f, Transparency: t}

	if f == Binary {
		out.Stride = (w + 7) / 8
	} else {
		out.Stride = w * bytesPerPixel(f, t)
	}
	out.Data = make([]byte, out.Stride*h)

	for y := range h {
		row := out.Data[y*out.Stride : (y+1)*out.Stride]
		for x := range w {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA) //nolint:errcheck // NRGBAModel always returns NRGBA
			switch f {
			case RGB565:
				v := rgb565(c)
				i := x * bytesPerPixel(f, t)
				row[i] = byte(v >> 8)
				row[i+1] = byte(v)
				if t == AlphaChannel {
					row[i+2] = c.A
				}
			case Grayscale:
				i := x * bytesPerPixel(f, t)
				row[i] = luminance(c)
				if t == AlphaChannel {
					row[i+1] = c.A
				}
			case Binary:
				if luminance(c) >= binaryThreshold {
					row[x/8] |= 0x80 >> (x % 8)
				}
			}
		}
	}
	return out
}

func rgb565(c color.NRGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// luminance uses the same weights as color.GrayModel.
func luminance(c color.NRGBA) uint8 {
	y := (19595*uint32(c.R) + 38470*uint32(c.G) + 7471*uint32(c.B) + 1<<15) >> 16
	return uint8(y) //nolint:gosec // weights sum to 1<<16, result fits
}

// At returns the pixel at (x, y) expanded to NRGBA.
func (d *DecodedImage) At(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= d.Width || y >= d.Height {
		return color.NRGBA{}
	}
	row := d.Data[y*d.Stride:]
	switch d.Format {
	case RGB565:
		i := x * d.BytesPerPixel()
		v := uint16(row[i])<<8 | uint16(row[i+1])
		r := uint8(v>>11) << 3
		g := uint8(v>>5&0x3f) << 2
		b := uint8(v&0x1f) << 3
		a := uint8(0xff)
		if d.Transparency == AlphaChannel {
			a = row[i+2]
		}
		return color.NRGBA{R: r | r>>5, G: g | g>>6, B: b | b>>5, A: a}
	case Grayscale:
		i := x * d.BytesPerPixel()
		a := uint8(0xff)
		if d.Transparency == AlphaChannel {
			a = row[i+1]
		}
		return color.NRGBA{R: row[i], G: row[i], B: row[i], A: a}
	case Binary:
		if row[x/8]&(0x80>>(x%8)) != 0 {
			return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		}
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBA{}
}

// ToImage expands the buffer into a standard image, e.g. for previews.
func (d *DecodedImage) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, d.Width, d.Height))
	for y := range d.Height {
		for x := range d.Width {
			img.SetNRGBA(x, y, d.At(x, y))
		}
	}
	return img
}
