package metadata

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // cover art decoders
	_ "image/png"

	"github.com/nfnt/resize"
)

// Thumbnail decodes embedded cover art and scales it to fit within
// maxW x maxH pixels, keeping the aspect ratio.
func Thumbnail(data []byte, maxW, maxH uint) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no cover data")
	}
	if maxW == 0 || maxH == 0 {
		return nil, fmt.Errorf("invalid thumbnail size %dx%d", maxW, maxH)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}
	return resize.Thumbnail(maxW, maxH, img, resize.Lanczos3), nil
}
