// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package generator

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/google/renameio/v2"
)

// Artifact is a rendered code.
type Artifact struct {
	Text    string
	Image   *image.Gray
	Modules int // modules per side, without the quiet zone
	Scale   int
	Margin  int
}

// Size is the image side in pixels.
func (a *Artifact) Size() int { return a.Image.Bounds().Dx() }

// PNG encodes the image.
func (a *Artifact) PNG() ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, a.Image); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile atomically writes the PNG to path.
func (a *Artifact) WriteFile(path string) error {
	data, err := a.PNG()
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
