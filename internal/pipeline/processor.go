package pipeline

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/blurtune/internal/catalog"
	"github.com/AnyUserName/blurtune/internal/preview"
	"github.com/AnyUserName/blurtune/internal/report"
)

// processResult holds the outcome of a single source image.
type processResult struct {
	name  string
	entry report.Entry
	err   error
}

// processImage generates the placeholder of one image and fills its entry.
func (p *Pipeline) processImage(ctx context.Context, info catalog.ImageInfo) processResult {
	result := processResult{name: info.Name}

	res, err := p.gen.Generate(ctx, info.Name, p.cfg.Options)
	if err != nil {
		result.err = err
		return result
	}

	result.entry = report.Entry{
		Original: report.OriginalInfo{
			Width:  info.Width,
			Height: info.Height,
			Size:   p.source.size(info.Name),
		},
		AspectRatio:       float64(info.Width) / float64(info.Height),
		Format:            string(p.cfg.Options.Format),
		URI:               res.URI,
		DecodedByteLength: res.DecodedByteLength,
		Hash:              res.Hash,
	}
	if avg, ok := placeholderColor(res); ok {
		result.entry.AvgColor = &avg
	}
	return result
}

// placeholderColor decodes the placeholder payload and averages its pixels.
func placeholderColor(res preview.Result) ([3]uint8, bool) {
	_, payload, err := preview.DecodeURI(res.URI)
	if err != nil {
		return [3]uint8{}, false
	}
	img, err := imaging.Decode(bytes.NewReader(payload))
	if err != nil {
		return [3]uint8{}, false
	}
	return computeAvgColor(img), true
}

// computeAvgColor calculates the average RGB color of an image.
func computeAvgColor(img image.Image) [3]uint8 {
	bounds := img.Bounds()
	count := uint64(bounds.Dx()) * uint64(bounds.Dy())
	if count == 0 {
		return [3]uint8{}
	}
	var rSum, gSum, bSum uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rSum += uint64(r >> 8)
			gSum += uint64(g >> 8)
			bSum += uint64(b >> 8)
		}
	}
	return [3]uint8{uint8(rSum / count), uint8(gSum / count), uint8(bSum / count)}
}
