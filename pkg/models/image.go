package models

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/ftrvxmtrx/tga"
)

// decodeImage decodes PNG or JPEG data, falling back to TGA. The TGA decoder
// accepts any header, so it is tried only after the registered formats
// reject the data.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return tga.Decode(bytes.NewReader(data))
	}
	return img, err
}
