package options

// EncodeOptions is the per-format encoder configuration. It is a closed
// union: JPEGOptions, PNGOptions and WebPOptions are the only
// implementations.
type EncodeOptions interface {
	Format() ImageFormat
	sealed()
}

// JPEGOptions configures the JPEG encoder.
type JPEGOptions struct {
	Quality             int  `json:"quality" default:"70"`
	Progressive         bool `json:"progressive"`
	TrellisQuantisation bool `json:"trellisQuantisation"`
	OvershootDeringing  bool `json:"overshootDeringing"`
	OptimiseScans       bool `json:"optimiseScans"`
	OptimiseCoding      bool `json:"optimiseCoding"`
	QuantizationTable   int  `json:"quantizationTable"`
}

// PNGOptions configures the PNG encoder. Quality below 100 or Colours
// below 256 switch to a quantised palette.
type PNGOptions struct {
	Progressive       bool    `json:"progressive"`
	CompressionLevel  int     `json:"compressionLevel" default:"6"`
	AdaptiveFiltering bool    `json:"adaptiveFiltering"`
	Quality           int     `json:"quality" default:"100"`
	Effort            int     `json:"effort" default:"7"`
	Colours           int     `json:"colours" default:"256"`
	Dither            float64 `json:"dither" default:"1"`
}

// WebPOptions configures the WebP encoder.
type WebPOptions struct {
	Quality        int    `json:"quality" default:"80"`
	Lossless       bool   `json:"lossless"`
	NearLossless   bool   `json:"nearLossless"`
	SmartSubsample bool   `json:"smartSubsample"`
	Effort         int    `json:"effort" default:"4"`
	Preset         Preset `json:"preset" default:"default"`
}

func (JPEGOptions) Format() ImageFormat { return JPEG }
func (PNGOptions) Format() ImageFormat  { return PNG }
func (WebPOptions) Format() ImageFormat { return WebP }

func (JPEGOptions) sealed() {}
func (PNGOptions) sealed()  {}
func (WebPOptions) sealed() {}

// Match dispatches on the concrete variant of o. Every caller supplies a
// branch for every format, so adding a format breaks each call site at
// compile time. A nil o yields the zero T.
func Match[T any](o EncodeOptions,
	jpeg func(JPEGOptions) T,
	png func(PNGOptions) T,
	webp func(WebPOptions) T,
) T {
	switch v := o.(type) {
	case JPEGOptions:
		return jpeg(v)
	case *JPEGOptions:
		return jpeg(*v)
	case PNGOptions:
		return png(v)
	case *PNGOptions:
		return png(*v)
	case WebPOptions:
		return webp(v)
	case *WebPOptions:
		return webp(*v)
	}
	var zero T
	return zero
}
