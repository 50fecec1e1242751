// ABOUTME: Dominant colour extraction for captured photos
// ABOUTME: Decodes JPEG/PNG/GIF and averages it down to a single pixel with nfnt/resize

package gallery

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/nfnt/resize"
)

// ErrNotImageDataURL is returned for URLs that are not base64 image data URLs.
var ErrNotImageDataURL = errors.New("not a base64 image data URL")

// DominantColor returns the average colour of the image as #rrggbb.
func DominantColor(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	pixel := resize.Resize(1, 1, img, resize.Bilinear)
	cr, cg, cb, _ := pixel.At(pixel.Bounds().Min.X, pixel.Bounds().Min.Y).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", cr>>8, cg>>8, cb>>8), nil
}

// ColorFromDataURL extracts the dominant colour from a data:image/...;base64 URL.
func ColorFromDataURL(url string) (string, error) {
	header, payload, ok := strings.Cut(url, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return "", ErrNotImageDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decoding data URL: %w", err)
	}
	return DominantColor(bytes.NewReader(data))
}
