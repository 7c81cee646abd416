package render

import (
	"bytes"
	"image"
	"image/png"
	"io"

	apperrors "network-journal/backend/pkg/errors"
)

// EncodePNG writes img as PNG
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return apperrors.NewRenderFailed("png", err)
	}
	return nil
}

// PNG returns img encoded as PNG bytes
func PNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
