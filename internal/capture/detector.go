// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package capture

import (
	"errors"
	"fmt"
	"image"

	zxinggo "github.com/ericlevine/zxinggo"
	"github.com/ericlevine/zxinggo/binarizer"
	"github.com/ericlevine/zxinggo/qrcode"
)

// ErrNoCode means the frame holds no readable QR code.
var ErrNoCode = errors.New("no qr code in frame")

// Detector finds and decodes a QR code in a frame.
type Detector struct {
	tryHarder bool
}

// NewDetector returns a detector. tryHarder trades latency for recall on
// noisy or skewed frames.
func NewDetector(tryHarder bool) *Detector {
	return &Detector{tryHarder: tryHarder}
}

// Detect returns the payload of the first QR code found in img. Frames are
// tried with the hybrid binarizer first (good for camera images with uneven
// lighting), then the global histogram one, then as a pure barcode.
func (d *Detector) Detect(img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", ErrNoCode
	}
	src := zxinggo.NewImageLuminanceSource(img)

	attempts := []struct {
		bitmap *zxinggo.BinaryBitmap
		opts   *zxinggo.DecodeOptions
	}{
		{zxinggo.NewBinaryBitmap(binarizer.NewHybrid(src)), &zxinggo.DecodeOptions{TryHarder: d.tryHarder}},
		{zxinggo.NewBinaryBitmap(binarizer.NewGlobalHistogram(src)), &zxinggo.DecodeOptions{TryHarder: d.tryHarder}},
		{zxinggo.NewBinaryBitmap(binarizer.NewHybrid(src)), &zxinggo.DecodeOptions{PureBarcode: true}},
	}

	var lastErr error
	for _, a := range attempts {
		res, err := decodeQR(a.bitmap, a.opts)
		if err == nil && res != nil {
			return res.Text, nil
		}
		lastErr = err
	}
	if lastErr == nil || errors.Is(lastErr, zxinggo.ErrNotFound) {
		return "", ErrNoCode
	}
	return "", fmt.Errorf("%w: %v", ErrNoCode, lastErr)
}

// decodeQR recovers from decoder panics on malformed frames.
func decodeQR(bitmap *zxinggo.BinaryBitmap, opts *zxinggo.DecodeOptions) (result *zxinggo.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return qrcode.NewReader().Decode(bitmap, opts)
}
