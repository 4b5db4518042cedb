// Package barcode renders protocol codes as Code 128 PNG images. Stateless;
// images are generated on demand and never persisted.
package barcode

import (
	"bytes"
	"fmt"
	"image/png"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

// Default dimensions for inline dashboard rendering.
const (
	DefaultWidth  = 360
	DefaultHeight = 120
)

// Render encodes the code at the default size.
func Render(code string) ([]byte, error) {
	return RenderSized(code, DefaultWidth, DefaultHeight)
}

// RenderSized encodes the code as a Code 128 barcode scaled to the given
// pixel dimensions.
func RenderSized(code string, width, height int) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("code must not be empty")
	}

	encoded, err := code128.Encode(code)
	if err != nil {
		return nil, fmt.Errorf("encode code128: %w", err)
	}
	scaled, err := bc.Scale(encoded, width, height)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
