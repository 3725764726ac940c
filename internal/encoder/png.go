package encoder

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/AnyUserName/blurtune/internal/options"
)

// PNGEncoder encodes images to PNG using Go's standard library.
// Quality below 100 or Colours below 256 produce a paletted image.
// Progressive and AdaptiveFiltering are validated but have no effect:
// image/png writes neither Adam7 interlacing nor selectable filters.
type PNGEncoder struct{}

func (e *PNGEncoder) Format() options.ImageFormat { return options.PNG }
func (e *PNGEncoder) Available() bool             { return true }

func (e *PNGEncoder) Encode(_ context.Context, img image.Image, opts options.EncodeOptions) ([]byte, error) {
	o, err := variant[options.PNGOptions](opts)
	if err != nil {
		return nil, err
	}

	if n := paletteSize(o); n < 256 || o.Quality < 100 {
		img = toPaletted(img, n, o.Effort, o.Dither)
	}

	var buf bytes.Buffer
	buf.Grow(4 * 1024)

	enc := &png.Encoder{CompressionLevel: compressionLevel(o.CompressionLevel)}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// compressionLevel maps zlib levels 0-9 onto the presets image/png offers.
func compressionLevel(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

// paletteSize is the colour budget: the smaller of Colours and the share
// of 256 given by Quality, never below 2.
func paletteSize(o options.PNGOptions) int {
	n := o.Colours
	if byQuality := (256*o.Quality + 99) / 100; byQuality < n {
		n = byQuality
	}
	if n < 2 {
		n = 2
	}
	if n > 256 {
		n = 256
	}
	return n
}

// toPaletted reduces img to at most n colours. Effort is the number of
// k-means refinement passes; any dither above zero uses Floyd-Steinberg.
func toPaletted(img image.Image, n, effort int, dither float64) *image.Paletted {
	b := img.Bounds()
	pal := buildPalette(img, n, effort)
	dst := image.NewPaletted(b, pal)
	if dither > 0 {
		draw.FloydSteinberg.Draw(dst, b, img, b.Min)
	} else {
		draw.Draw(dst, b, img, b.Min, draw.Src)
	}
	return dst
}
