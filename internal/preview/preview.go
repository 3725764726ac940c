// Package preview generates blur placeholders: it reads a source image,
// runs it through the codec and packages the encoded bytes as a data URI.
package preview

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/hasher"
	"github.com/AnyUserName/blurtune/internal/options"
)

// Source resolves an image name to its bytes.
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// Codec resizes and encodes source bytes.
type Codec interface {
	Encode(ctx context.Context, src []byte, resize options.ResizeSpec,
		format options.ImageFormat, enc options.EncodeOptions) ([]byte, error)
}

// Result is one generated placeholder. DecodedByteLength is the size of
// the encoded image before base64 expansion.
type Result struct {
	URI               string `json:"uri"`
	DecodedByteLength int    `json:"decodedByteLength"`
	Hash              string `json:"hash"`
}

// Generator produces placeholders. It keeps no state between calls.
type Generator struct {
	source Source
	codec  Codec
	log    *zap.Logger
}

// NewGenerator creates a generator reading from source and encoding with codec.
func NewGenerator(source Source, codec Codec, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{source: source, codec: codec, log: log.Named("preview")}
}

// Generate builds the placeholder of imageName under opts. It does not
// retry; errors carry an apperr kind.
func (g *Generator) Generate(ctx context.Context, imageName string, opts options.ProcessingOptions) (Result, error) {
	const op = "preview.generate"
	start := time.Now()

	if err := opts.CheckTag(); err != nil {
		return Result{}, err
	}
	if opts.Resize.Width <= 0 {
		return Result{}, apperr.Errorf(apperr.InvalidConfiguration, op, "width must be positive, got %d", opts.Resize.Width)
	}

	src, err := g.source.Read(ctx, imageName)
	if err != nil {
		return Result{}, err
	}

	data, err := g.codec.Encode(ctx, src, opts.Resize, opts.Format, opts.Encode)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		URI:               DataURI(opts.Format, data),
		DecodedByteLength: len(data),
		Hash:              hasher.ContentHash(data, hasher.PayloadHashLen),
	}

	g.log.Debug("generated placeholder",
		zap.String("image", imageName),
		zap.String("format", string(opts.Format)),
		zap.Stringer("resize", opts.Resize),
		zap.Int("bytes", res.DecodedByteLength),
		zap.Int("uri_length", len(res.URI)),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}
