package encoder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/options"
)

func gradientPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// noWebP builds a registry whose cwebp lookup always fails.
func noWebP() *Registry {
	return NewRegistry("/nonexistent/cwebp")
}

type fakeWebP struct{ calls int }

func (f *fakeWebP) Format() options.ImageFormat { return options.WebP }
func (f *fakeWebP) Available() bool             { return true }
func (f *fakeWebP) Encode(_ context.Context, img image.Image, opts options.EncodeOptions) ([]byte, error) {
	if _, err := variant[options.WebPOptions](opts); err != nil {
		return nil, err
	}
	f.calls++
	b := img.Bounds()
	return []byte{'R', 'I', 'F', 'F', byte(b.Dx()), byte(b.Dy())}, nil
}

func TestCodecJPEG(t *testing.T) {
	c := NewCodec(noWebP())
	src := gradientPNG(t, 300, 200)

	out, err := c.Encode(context.Background(), src, options.DefaultResize(), options.JPEG, options.DefaultsFor(options.JPEG))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 10, cfg.Width)
	assert.Equal(t, 7, cfg.Height)
}

func TestCodecEveryKernel(t *testing.T) {
	c := NewCodec(noWebP())
	src := gradientPNG(t, 64, 64)
	for _, k := range options.Kernels() {
		out, err := c.Encode(context.Background(), src, options.ResizeSpec{Width: 16, Kernel: k},
			options.PNG, options.DefaultsFor(options.PNG))
		require.NoError(t, err, k)

		cfg, err := png.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err, k)
		assert.Equal(t, 16, cfg.Width, k)
	}
}

func TestCodecRejections(t *testing.T) {
	c := NewCodec(noWebP())
	src := gradientPNG(t, 32, 32)
	ctx := context.Background()

	_, err := c.Encode(ctx, src, options.ResizeSpec{Width: 0, Kernel: options.Lanczos3}, options.JPEG, options.DefaultsFor(options.JPEG))
	assert.ErrorIs(t, err, apperr.CodecError)

	_, err = c.Encode(ctx, src, options.DefaultResize(), options.PNG, options.DefaultsFor(options.JPEG))
	assert.ErrorIs(t, err, apperr.InvalidConfiguration)

	_, err = c.Encode(ctx, src, options.DefaultResize(), options.JPEG, options.JPEGOptions{Quality: 150})
	assert.ErrorIs(t, err, apperr.CodecError)

	_, err = c.Encode(ctx, []byte("not an image"), options.DefaultResize(), options.JPEG, options.DefaultsFor(options.JPEG))
	assert.ErrorIs(t, err, apperr.CodecError)

	_, err = c.Encode(ctx, src, options.ResizeSpec{Width: 8, Kernel: "box"}, options.JPEG, options.DefaultsFor(options.JPEG))
	assert.ErrorIs(t, err, apperr.CodecError)

	_, err = c.Encode(ctx, src, options.DefaultResize(), options.WebP, options.DefaultsFor(options.WebP))
	assert.ErrorIs(t, err, apperr.CodecError)
}

func TestCodecCancelled(t *testing.T) {
	c := NewCodec(noWebP())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Encode(ctx, gradientPNG(t, 8, 8), options.DefaultResize(), options.JPEG, options.DefaultsFor(options.JPEG))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCodecUsesRegisteredEncoder(t *testing.T) {
	r := noWebP()
	fake := &fakeWebP{}
	r.Register(fake)

	out, err := NewCodec(r).Encode(context.Background(), gradientPNG(t, 300, 200),
		options.DefaultResize(), options.WebP, options.DefaultsFor(options.WebP))
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, []byte{'R', 'I', 'F', 'F', 10, 7}, out)
}

func TestPNGPalette(t *testing.T) {
	o := options.DefaultsFor(options.PNG).(options.PNGOptions)
	o.Colours = 4
	o.Dither = 0

	img, err := png.Decode(bytes.NewReader(mustEncodePNG(t, o)))
	require.NoError(t, err)
	p, ok := img.(*image.Paletted)
	require.True(t, ok, "want paletted image, got %T", img)
	assert.LessOrEqual(t, len(p.Palette), 4)

	o.Dither = 1
	img, err = png.Decode(bytes.NewReader(mustEncodePNG(t, o)))
	require.NoError(t, err)
	assert.IsType(t, &image.Paletted{}, img)
}

func TestPNGFullColourByDefault(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(mustEncodePNG(t, options.DefaultsFor(options.PNG).(options.PNGOptions))))
	require.NoError(t, err)
	_, paletted := img.(*image.Paletted)
	assert.False(t, paletted)
}

func TestPNGIgnoresInterlaceAndFilterSwitches(t *testing.T) {
	o := options.DefaultsFor(options.PNG).(options.PNGOptions)
	plain := mustEncodePNG(t, o)

	o.Progressive = true
	o.AdaptiveFiltering = true
	assert.Equal(t, plain, mustEncodePNG(t, o))
}

func mustEncodePNG(t *testing.T, o options.PNGOptions) []byte {
	t.Helper()
	src, err := png.Decode(bytes.NewReader(gradientPNG(t, 24, 16)))
	require.NoError(t, err)
	out, err := (&PNGEncoder{}).Encode(context.Background(), src, o)
	require.NoError(t, err)
	return out
}

func TestPaletteSize(t *testing.T) {
	assert.Equal(t, 256, paletteSize(options.PNGOptions{Quality: 100, Colours: 256}))
	assert.Equal(t, 128, paletteSize(options.PNGOptions{Quality: 50, Colours: 256}))
	assert.Equal(t, 16, paletteSize(options.PNGOptions{Quality: 100, Colours: 16}))
	assert.Equal(t, 2, paletteSize(options.PNGOptions{Quality: 0, Colours: 0}))
}

func TestEncoderRejectsForeignVariant(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	_, err := (&JPEGEncoder{}).Encode(context.Background(), img, options.DefaultsFor(options.PNG))
	assert.ErrorIs(t, err, apperr.InvalidConfiguration)
}

func TestCwebpArgs(t *testing.T) {
	o := options.DefaultsFor(options.WebP).(options.WebPOptions)
	assert.Equal(t, []string{"-preset", "default", "-q", "80", "-m", "4", "-quiet"}, cwebpArgs(o))

	o.Lossless = true
	o.SmartSubsample = true
	assert.Equal(t, []string{"-preset", "default", "-q", "80", "-m", "4", "-quiet", "-lossless", "-sharp_yuv"}, cwebpArgs(o))

	o.NearLossless = true
	assert.Contains(t, cwebpArgs(o), "-near_lossless")
	assert.NotContains(t, cwebpArgs(o), "-lossless")
}

func TestRegistry(t *testing.T) {
	r := noWebP()
	assert.Equal(t, []options.ImageFormat{options.JPEG, options.PNG}, r.Available())
	assert.Nil(t, r.Get(options.WebP))
	assert.Equal(t, "encoders: jpeg, png", r.String())

	r.Register(&fakeWebP{})
	assert.NotNil(t, r.Get(options.WebP))
}

func TestLanczos2Window(t *testing.T) {
	assert.Equal(t, 1.0, lanczos2.Kernel(0))
	assert.Equal(t, 0.0, lanczos2.Kernel(2))
	assert.InDelta(t, 0.0, lanczos2.Kernel(1), 1e-12)
}
