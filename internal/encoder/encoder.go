package encoder

import (
	"context"
	"fmt"
	"image"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/options"
)

// Encoder compresses a decoded image into one output format.
type Encoder interface {
	// Format returns the output format this encoder produces.
	Format() options.ImageFormat

	// Encode compresses img using opts, whose variant must match Format.
	Encode(ctx context.Context, img image.Image, opts options.EncodeOptions) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	// External encoders (cwebp) may not be installed.
	Available() bool
}

// variant extracts the concrete option type an encoder expects.
func variant[T options.EncodeOptions](opts options.EncodeOptions) (T, error) {
	v, ok := options.Normalize(opts).(T)
	if !ok {
		var want T
		return want, apperr.New(apperr.InvalidConfiguration, "encode",
			fmt.Errorf("got %T, want %T", opts, want))
	}
	return v, nil
}
