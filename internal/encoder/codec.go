// Package encoder turns source image bytes into a small encoded
// placeholder: decode, resample to the requested width, compress.
package encoder

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	// Decoders beyond imaging's built-in set.
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/options"
)

// Codec performs the resize and encode step of placeholder generation.
type Codec struct {
	registry *Registry
}

// NewCodec creates a codec backed by the given encoder registry.
func NewCodec(registry *Registry) *Codec {
	return &Codec{registry: registry}
}

// Encode decodes src, resizes it to resize.Width (height follows the
// aspect ratio) and encodes it as format. Rejected options, undecodable
// sources and missing encoders are reported as apperr.CodecError.
func (c *Codec) Encode(ctx context.Context, src []byte, resize options.ResizeSpec,
	format options.ImageFormat, enc options.EncodeOptions) ([]byte, error) {
	const op = "codec.encode"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if enc == nil || enc.Format() != format {
		return nil, apperr.Errorf(apperr.InvalidConfiguration, op, "encode options do not match format %s", format)
	}
	if resize.Width <= 0 {
		return nil, apperr.Errorf(apperr.CodecError, op, "width must be positive, got %d", resize.Width)
	}
	if err := options.Validate(enc); err != nil {
		return nil, apperr.New(apperr.CodecError, op, err)
	}
	filter, ok := Filter(resize.Kernel)
	if !ok {
		return nil, apperr.Errorf(apperr.CodecError, op, "unknown kernel %q", resize.Kernel)
	}
	e := c.registry.Get(format)
	if e == nil {
		return nil, apperr.Errorf(apperr.CodecError, op, "no %s encoder available", format)
	}

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.New(apperr.CodecError, op, fmt.Errorf("decode source: %w", err))
	}

	resized := imaging.Resize(img, resize.Width, 0, filter)

	data, err := e.Encode(ctx, resized, enc)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperr.New(apperr.CodecError, op, fmt.Errorf("encode %s: %w", format, err))
	}
	return data, nil
}
