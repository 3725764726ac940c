package encoder

import (
	"math"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/blurtune/internal/options"
)

// lanczos2 is the two-lobe Lanczos window; imaging only ships the
// three-lobe variant.
var lanczos2 = imaging.ResampleFilter{
	Support: 2.0,
	Kernel: func(x float64) float64 {
		x = math.Abs(x)
		if x < 2.0 {
			return sinc(x) * sinc(x/2.0)
		}
		return 0
	},
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

var filters = map[options.Kernel]imaging.ResampleFilter{
	options.Nearest:  imaging.NearestNeighbor,
	options.Cubic:    imaging.CatmullRom,
	options.Mitchell: imaging.MitchellNetravali,
	options.Lanczos2: lanczos2,
	options.Lanczos3: imaging.Lanczos,
}

// Filter returns the resampling filter for k.
func Filter(k options.Kernel) (imaging.ResampleFilter, bool) {
	f, ok := filters[k]
	return f, ok
}
