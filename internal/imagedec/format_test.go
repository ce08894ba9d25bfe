package imagedec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/mediastore/internal/resource"
)

func TestParsePixelFormat(t *testing.T) {
	tests := []struct {
		in   string
		want PixelFormat
	}{
		{"RGB565", RGB565},
		{"rgb565", RGB565},
		{"GRAYSCALE", Grayscale},
		{"binary", Binary},
	}
	for _, tt := range tests {
		got, err := ParsePixelFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.want, mustParse(t, got.String()))
	}

	_, err := ParsePixelFormat("RGB24")
	assert.ErrorIs(t, err, resource.ErrUnsupportedFormat)
}

func mustParse(t *testing.T, s string) PixelFormat {
	t.Helper()
	f, err := ParsePixelFormat(s)
	require.NoError(t, err)
	return f
}

func TestPixelFormat_SupportsAlpha(t *testing.T) {
	assert.True(t, RGB565.SupportsAlpha())
	assert.True(t, Grayscale.SupportsAlpha())
	assert.False(t, Binary.SupportsAlpha())
}

func TestParseTransparency(t *testing.T) {
	for in, want := range map[string]Transparency{
		"":              TransparencyNone,
		"none":          TransparencyNone,
		"opaque":        TransparencyNone,
		"alpha_channel": AlphaChannel,
		"ALPHA_CHANNEL": AlphaChannel,
	} {
		got, err := ParseTransparency(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTransparency("chroma_key")
	assert.ErrorIs(t, err, resource.ErrUnsupportedFormat)
}

func TestParseSize(t *testing.T) {
	s, err := ParseSize("64x32")
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 64, Height: 32}, s)
	assert.Equal(t, "64x32", s.String())

	s, err = ParseSize(" 8 X 8 ")
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 8, Height: 8}, s)

	for _, bad := range []string{"", "64", "0x10", "-1x4", "axb"} {
		_, err := ParseSize(bad)
		assert.ErrorIs(t, err, resource.ErrInvalidDeclaration, bad)
	}
}
