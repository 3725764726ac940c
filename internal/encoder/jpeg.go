package encoder

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"

	"github.com/AnyUserName/blurtune/internal/options"
)

// JPEGEncoder encodes images to JPEG using Go's standard library.
// Only Quality maps onto image/jpeg; the scan and quantisation switches
// are validated but the output is always baseline.
type JPEGEncoder struct{}

func (e *JPEGEncoder) Format() options.ImageFormat { return options.JPEG }
func (e *JPEGEncoder) Available() bool             { return true }

func (e *JPEGEncoder) Encode(_ context.Context, img image.Image, opts options.EncodeOptions) ([]byte, error) {
	o, err := variant[options.JPEGOptions](opts)
	if err != nil {
		return nil, err
	}

	quality := o.Quality
	if quality < 1 {
		quality = 1 // image/jpeg floor
	}

	var buf bytes.Buffer
	buf.Grow(4 * 1024) // placeholders are a few hundred bytes
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
