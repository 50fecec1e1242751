package gallery

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, r, g, b uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solidPNGDataURL(t *testing.T, r, g, b uint8) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(solidPNG(t, r, g, b))
}

func TestDominantColor(t *testing.T) {
	got, err := DominantColor(bytes.NewReader(solidPNG(t, 0xff, 0x00, 0x80)))
	require.NoError(t, err)
	assert.Equal(t, "#ff0080", got)
}

func TestDominantColor_NotAnImage(t *testing.T) {
	_, err := DominantColor(strings.NewReader("definitely not pixels"))
	assert.Error(t, err)
}

func TestColorFromDataURL(t *testing.T) {
	got, err := ColorFromDataURL(solidPNGDataURL(t, 0x12, 0x34, 0x56))
	require.NoError(t, err)
	assert.Equal(t, "#123456", got)

	_, err = ColorFromDataURL("https://images.unsplash.com/photo.jpg")
	assert.ErrorIs(t, err, ErrNotImageDataURL)

	_, err = ColorFromDataURL("data:video/mp4;base64,AAAA")
	assert.ErrorIs(t, err, ErrNotImageDataURL)

	_, err = ColorFromDataURL("data:image/png;base64,!!!")
	assert.Error(t, err)
}
