package imagedec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/llehouerou/mediastore/internal/resource"
)

// PixelFormat is the in-memory layout of a decoded image.
type PixelFormat int

const (
	// RGB565 stores 16-bit pixels, big-endian (RRRRRGGG GGGBBBBB).
	RGB565 PixelFormat = iota
	// Grayscale stores one luminance byte per pixel.
	Grayscale
	// Binary stores one bit per pixel, MSB first, rows padded to a byte.
	Binary
)

// String returns the manifest name of the format.
func (f PixelFormat) String() string {
	switch f {
	case RGB565:
		return "RGB565"
	case Grayscale:
		return "GRAYSCALE"
	case Binary:
		return "BINARY"
	default:
		return "UNKNOWN"
	}
}

// SupportsAlpha reports whether the format can carry an alpha channel.
func (f PixelFormat) SupportsAlpha() bool {
	return f == RGB565 || f == Grayscale
}

// ParsePixelFormat parses a manifest image type.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RGB565":
		return RGB565, nil
	case "GRAYSCALE":
		return Grayscale, nil
	case "BINARY":
		return Binary, nil
	default:
		return 0, fmt.Errorf("%w: image type %q", resource.ErrUnsupportedFormat, s)
	}
}

// Transparency selects how transparency is carried in the output.
type Transparency int

const (
	TransparencyNone Transparency = iota
	AlphaChannel
)

func (t Transparency) String() string {
	if t == AlphaChannel {
		return "alpha_channel"
	}
	return "none"
}

// ParseTransparency parses a manifest transparency mode. Empty means none.
func ParseTransparency(s string) (Transparency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "opaque":
		return TransparencyNone, nil
	case "alpha_channel":
		return AlphaChannel, nil
	default:
		return 0, fmt.Errorf("%w: transparency %q", resource.ErrUnsupportedFormat, s)
	}
}

// Size is a pixel dimension.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return strconv.Itoa(s.Width) + "x" + strconv.Itoa(s.Height)
}

// ParseSize parses "WIDTHxHEIGHT".
func ParseSize(s string) (Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Size{}, fmt.Errorf("%w: resize %q, want WIDTHxHEIGHT", resource.ErrInvalidDeclaration, s)
	}
	width, errW := strconv.Atoi(strings.TrimSpace(w))
	height, errH := strconv.Atoi(strings.TrimSpace(h))
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return Size{}, fmt.Errorf("%w: resize %q, want positive WIDTHxHEIGHT", resource.ErrInvalidDeclaration, s)
	}
	return Size{Width: width, Height: height}, nil
}
